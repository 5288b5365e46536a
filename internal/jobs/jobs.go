package jobs

import (
	"context"
	"fmt"
	"time"

	"spendsense-go/internal/events"
	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StageComputeFeatures         = "compute-features"
	StageAssignPersona           = "assign-persona"
	StageGenerateRecommendations = "generate-recommendations"
)

// Result summarizes one stage run.
type Result struct {
	Stage   string
	UserId  string
	Records int
	Emitted bool
}

// Jobs runs the three stages of the background chain. Each stage reads the
// user's persisted records and signals the next stage; the records themselves
// are produced elsewhere.
type Jobs struct {
	records   store.RecordStore
	publisher events.Publisher
}

func New(records store.RecordStore, publisher events.Publisher) *Jobs {
	return &Jobs{records: records, publisher: publisher}
}

// ComputeFeatures emits features.computed when run for a specific user.
// An empty userId is a batch run and emits nothing.
func (j *Jobs) ComputeFeatures(ctx context.Context, userId string) (Result, error) {
	return j.run(ctx, StageComputeFeatures, userId, events.EventFeaturesComputed,
		func(ctx context.Context) (int, error) {
			features, err := j.records.ListComputedFeatures(ctx, userId)
			return len(features), err
		})
}

// AssignPersona emits persona.assigned when run for a specific user.
func (j *Jobs) AssignPersona(ctx context.Context, userId string) (Result, error) {
	return j.run(ctx, StageAssignPersona, userId, events.EventPersonaAssigned,
		func(ctx context.Context) (int, error) {
			assignments, err := j.records.ListPersonaAssignments(ctx, userId)
			if err == nil && len(assignments) > 0 {
				latest := assignments[0]
				zap.L().Info("Current persona",
					zap.String("user_id", userId),
					zap.String("persona", latest.Persona),
					zap.String("time_window", latest.TimeWindow))
			}
			return len(assignments), err
		})
}

// GenerateRecommendations is the last stage and emits nothing.
func (j *Jobs) GenerateRecommendations(ctx context.Context, userId string) (Result, error) {
	return j.run(ctx, StageGenerateRecommendations, userId, "",
		func(ctx context.Context) (int, error) {
			recommendations, err := j.records.ListRecommendations(ctx, userId)
			return len(recommendations), err
		})
}

func (j *Jobs) run(ctx context.Context, stage, userId string, next events.EventType, read func(context.Context) (int, error)) (Result, error) {
	start := time.Now()
	result := Result{Stage: stage, UserId: userId}

	fields := []zap.Field{zap.String("stage", stage), zap.String("user_id", userId)}
	if trigger := models.GetJobTrigger(ctx); trigger != nil {
		fields = append(fields, zap.String("run_id", trigger.RunId), zap.String("trigger", trigger.Source))
	}
	logger := zap.L().With(fields...)

	logger.Info("Starting job")

	if userId != "" {
		count, err := read(ctx)
		if err != nil {
			logger.Error("Job failed", zap.Error(err))
			return result, fmt.Errorf("%s for user %s: %w", stage, userId, err)
		}
		result.Records = count
	}

	logger.Info("Completed job",
		zap.Int("records", result.Records),
		zap.Duration("duration", time.Since(start)))

	if userId == "" || next == "" || j.publisher == nil {
		return result, nil
	}

	if err := j.publisher.Publish(ctx, next, userId); err != nil {
		logger.Error("Failed to emit event", zap.String("event_type", string(next)), zap.Error(err))
		return result, nil
	}
	result.Emitted = true
	logger.Info("Emitted event", zap.String("event_type", string(next)))
	return result, nil
}

// Register wires the chain: features.computed triggers assign-persona and
// persona.assigned triggers generate-recommendations.
func (j *Jobs) Register(m *events.Manager) {
	m.Subscribe(events.EventFeaturesComputed, func(ctx context.Context, e events.Event) error {
		_, err := j.AssignPersona(eventContext(ctx), e.UserId)
		return err
	})
	m.Subscribe(events.EventPersonaAssigned, func(ctx context.Context, e events.Event) error {
		_, err := j.GenerateRecommendations(eventContext(ctx), e.UserId)
		return err
	})
}

// eventContext keeps the run id of the stage that published the event.
func eventContext(ctx context.Context) context.Context {
	runId := uuid.NewString()
	if trigger := models.GetJobTrigger(ctx); trigger != nil {
		runId = trigger.RunId
	}
	return models.WithJobTrigger(ctx, &models.JobTrigger{
		RunId:       runId,
		Source:      models.TriggerSourceEvent,
		TriggeredAt: time.Now().UTC(),
	})
}
