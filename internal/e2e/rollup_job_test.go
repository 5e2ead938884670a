package e2e

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/iradwatkins/taxgeniusprov1-sub000/internal/jobs"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/referrals"
	"github.com/iradwatkins/taxgeniusprov1-sub000/jobs"
)

type stubRollupSource struct {
	summaries []referrals.Summary
	calls     int
	err       error
}

func (s *stubRollupSource) SummarizeAll(_ context.Context) ([]referrals.Summary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]referrals.Summary(nil), s.summaries...), nil
}

func TestCommissionRollupJob(t *testing.T) {
	source := &stubRollupSource{summaries: []referrals.Summary{
		{OwnerID: 11, TotalClicks: 40, PendingCents: 12500},
		{OwnerID: 22, ApprovedCents: 8000},
		{OwnerID: 33, PaidCents: 30000},
	}}
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := jobs.NewCommissionRollupHandler(source, metrics, logger)
	if err := handler(context.Background(), jobs.NewCommissionRollupTask()); err != nil {
		t.Fatalf("job handle: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected 1 rollup call, got %d", source.calls)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if !assertCounter(t, families, "taxgenius_jobs_total", map[string]string{"job": jobs.TaskTypeCommissionRollup, "status": "success"}, 1) {
		t.Fatalf("expected taxgenius_jobs_total increment for commission rollup")
	}
	if !metricExists(families, "taxgenius_job_duration_seconds") {
		t.Fatalf("expected taxgenius_job_duration_seconds to be recorded")
	}
}

func assertCounter(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string, expected float64) bool {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if matchLabels(metric.GetLabel(), labels) {
				if metric.GetCounter() == nil {
					return false
				}
				if metric.GetCounter().GetValue() == expected {
					return true
				}
			}
		}
	}
	return false
}

func metricExists(families []*dto.MetricFamily, name string) bool {
	for _, fam := range families {
		if fam.GetName() == name {
			return true
		}
	}
	return false
}

func matchLabels(pairs []*dto.LabelPair, expected map[string]string) bool {
	if len(expected) == 0 {
		return true
	}
	seen := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		seen[pair.GetName()] = pair.GetValue()
	}
	for k, v := range expected {
		if seen[k] != v {
			return false
		}
	}
	return true
}
