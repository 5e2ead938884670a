package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iradwatkins/taxgeniusprov1-sub000/jobs"
)

func TestTriggerRejectsUnknownJob(t *testing.T) {
	cli, err := NewJobsCLI("127.0.0.1:6379")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })

	_, err = cli.Trigger(context.Background(), "analytics:warmup")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported job")
}

func TestUnconfiguredCLIErrors(t *testing.T) {
	var cli *JobsCLI

	_, err := cli.Trigger(context.Background(), jobs.TaskTypeCommissionRollup)
	require.Error(t, err)

	_, err = cli.InspectQueue(context.Background())
	require.Error(t, err)

	_, err = cli.ListScheduled(context.Background(), 5)
	require.Error(t, err)
}
