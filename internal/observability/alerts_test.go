package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestPortalAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "portal.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var spec alertSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}

	var portalGroup *alertGroup
	for i := range spec.Groups {
		if spec.Groups[i].Name == "portal" {
			portalGroup = &spec.Groups[i]
			break
		}
	}
	if portalGroup == nil {
		t.Fatal("portal alert group missing")
	}

	expected := map[string]string{
		"HighErrorRate":         "critical",
		"HighLatency":           "warning",
		"PermissionDenialSpike": "warning",
		"JobFailures":           "warning",
	}
	seen := make(map[string]bool)
	for _, rule := range portalGroup.Rules {
		severity, ok := expected[rule.Alert]
		if !ok {
			continue
		}
		seen[rule.Alert] = true
		if rule.Labels["severity"] != severity {
			t.Errorf("%s: expected severity %s, got %s", rule.Alert, severity, rule.Labels["severity"])
		}
		if rule.Expr == "" || rule.For == "" {
			t.Errorf("%s: expr and for must be set", rule.Alert)
		}
		if !strings.HasPrefix(rule.Annotations["runbook"], "docs/runbook-portal.md#") {
			t.Errorf("%s: runbook annotation must point into docs/runbook-portal.md", rule.Alert)
		}
	}
	for alert := range expected {
		if !seen[alert] {
			t.Errorf("missing alert rule %s", alert)
		}
	}
}
