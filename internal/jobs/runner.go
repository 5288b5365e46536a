package jobs

import (
	"context"
	"fmt"
	"time"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sweepConcurrency = 4

// Runner triggers compute-features for every profile on a fixed interval.
type Runner struct {
	jobs     *Jobs
	profiles store.ProfileStore
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewRunner(jobs *Jobs, profiles store.ProfileStore, interval time.Duration) *Runner {
	return &Runner{
		jobs:     jobs,
		profiles: profiles,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the sweep loop. With runOnStart the first sweep happens
// immediately instead of after one interval.
func (r *Runner) Start(ctx context.Context, runOnStart bool) {
	zap.L().Info("Starting job runner",
		zap.Duration("sweep_interval", r.interval),
		zap.Bool("run_on_start", runOnStart))
	go r.loop(ctx, runOnStart)
}

// Stop gracefully stops the runner
func (r *Runner) Stop() {
	zap.L().Info("Stopping job runner")
	close(r.stopChan)
	<-r.doneChan
	zap.L().Info("Job runner stopped")
}

func (r *Runner) loop(ctx context.Context, runOnStart bool) {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if runOnStart {
		r.sweepAndLog(ctx)
	}

	for {
		select {
		case <-ticker.C:
			r.sweepAndLog(ctx)
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) sweepAndLog(ctx context.Context) {
	ctx = models.WithJobTrigger(ctx, &models.JobTrigger{
		RunId:       uuid.NewString(),
		Source:      models.TriggerSourceSchedule,
		TriggeredAt: time.Now().UTC(),
	})
	if _, err := r.Sweep(ctx); err != nil {
		zap.L().Error("Job sweep failed", zap.Error(err))
	}
}

// Sweep runs compute-features once per known profile and returns how many
// runs succeeded. A failure for one profile does not stop the others.
func (r *Runner) Sweep(ctx context.Context) (int, error) {
	profiles, err := r.profiles.GetProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	results := make([]bool, len(profiles))
	var g errgroup.Group
	g.SetLimit(sweepConcurrency)
	for i, p := range profiles {
		g.Go(func() error {
			if _, err := r.jobs.ComputeFeatures(ctx, p.UserId); err != nil {
				zap.L().Warn("compute-features failed during sweep", zap.String("user_id", p.UserId), zap.Error(err))
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}

	zap.L().Info("Job sweep complete",
		zap.Int("profiles", len(profiles)),
		zap.Int("succeeded", succeeded))
	return succeeded, nil
}
