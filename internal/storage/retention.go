package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron"
)

// ConversationPruner deletes stale coach conversations.
type ConversationPruner interface {
	PruneConversations(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob removes conversations idle for longer than Retention.
// It implements cron.Job.
type RetentionJob struct {
	Pruner    ConversationPruner
	Retention time.Duration
	Log       *slog.Logger
	Now       func() time.Time
}

// Run prunes once.
func (j *RetentionJob) Run() {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.Pruner.PruneConversations(ctx, now().Add(-j.Retention))
	if err != nil {
		j.Log.Error("conversation retention failed", "error", err)
		return
	}
	if n > 0 {
		j.Log.Info("pruned stale conversations", "messages", n, "retention", j.Retention.String())
	}
}

// StartRetention schedules job on spec (cron syntax or "@daily") and starts
// the scheduler. Stop the returned scheduler on shutdown.
func StartRetention(spec string, job *RetentionJob) (*cron.Cron, error) {
	c := cron.New()
	if err := c.AddJob(spec, job); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
