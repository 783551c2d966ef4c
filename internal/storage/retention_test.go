package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakePruner struct {
	cutoff time.Time
	calls  int
	n      int64
	err    error
}

func (f *fakePruner) PruneConversations(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.n, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestRetentionJobCutoff verifies the prune cutoff is now minus the retention.
func TestRetentionJobCutoff(t *testing.T) {
	now := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	p := &fakePruner{n: 4}
	job := &RetentionJob{
		Pruner:    p,
		Retention: 30 * 24 * time.Hour,
		Log:       discardLogger(),
		Now:       func() time.Time { return now },
	}
	job.Run()

	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1", p.calls)
	}
	want := time.Date(2026, 2, 13, 3, 0, 0, 0, time.UTC)
	if !p.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", p.cutoff, want)
	}
}

// TestRetentionJobError verifies a failing prune does not panic.
func TestRetentionJobError(t *testing.T) {
	p := &fakePruner{err: errors.New("connection refused")}
	job := &RetentionJob{Pruner: p, Retention: time.Hour, Log: discardLogger()}
	job.Run()
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
}

// TestStartRetentionBadSpec verifies an invalid schedule is rejected.
func TestStartRetentionBadSpec(t *testing.T) {
	job := &RetentionJob{Pruner: &fakePruner{}, Retention: time.Hour, Log: discardLogger()}
	if _, err := StartRetention("not a schedule", job); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

// TestStartRetention verifies a valid schedule starts and stops cleanly.
func TestStartRetention(t *testing.T) {
	job := &RetentionJob{Pruner: &fakePruner{}, Retention: time.Hour, Log: discardLogger()}
	c, err := StartRetention("@daily", job)
	if err != nil {
		t.Fatalf("StartRetention: %v", err)
	}
	c.Stop()
}
