package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/notifyhub/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunner_RunsJobsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	job := tasks.Job{
		Name:     "count",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}

	r := NewRunner(zap.NewNop(), time.Second, job)
	r.Start()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()
	r.Stop() // second Stop is a no-op

	got := runs.Load()
	if got < 2 {
		t.Fatalf("expected at least 2 runs, got %d", got)
	}
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != got {
		t.Error("job ran after Stop returned")
	}
}
