package models

import (
	"context"
	"time"
)

type jobTriggerKey struct{}

const (
	TriggerSourceEvent    = "event"
	TriggerSourceSchedule = "schedule"
	TriggerSourceManual   = "manual"
)

// JobTrigger describes what started a background job run so every stage of
// a chain can log the same run id without widening the job signatures.
type JobTrigger struct {
	RunId       string
	Source      string // event, schedule or manual
	TriggeredAt time.Time
}

// WithJobTrigger attaches trigger data to a context.
func WithJobTrigger(ctx context.Context, trigger *JobTrigger) context.Context {
	return context.WithValue(ctx, jobTriggerKey{}, trigger)
}

// GetJobTrigger retrieves trigger data from context, or nil if absent.
func GetJobTrigger(ctx context.Context) *JobTrigger {
	trigger, _ := ctx.Value(jobTriggerKey{}).(*JobTrigger)
	return trigger
}
