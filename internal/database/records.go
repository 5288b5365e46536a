package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"spendsense-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) SaveComputedFeature(ctx context.Context, feature models.ComputedFeature) error {
	if feature.Id == "" {
		feature.Id = uuid.New().String()
	}
	if feature.ComputedAt.IsZero() {
		feature.ComputedAt = time.Now().UTC()
	}
	value := string(feature.SignalValue)
	if value == "" {
		value = "{}"
	} else if !json.Valid(feature.SignalValue) {
		return fmt.Errorf("signal value for %s is not valid JSON", feature.SignalType)
	}

	_, err := s.db.ExecContext(ctx, queryInsertComputedFeature,
		feature.Id, feature.UserId, feature.TimeWindow, feature.SignalType, value, feature.ComputedAt)
	if err != nil {
		return fmt.Errorf("unable to insert computed feature: %w", err)
	}
	return nil
}

func (s *Service) ListComputedFeatures(ctx context.Context, userId string) ([]models.ComputedFeature, error) {
	rows, err := s.db.QueryContext(ctx, queryGetComputedFeatures, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query computed features: %w", err)
	}
	defer closeRows(rows)

	var features []models.ComputedFeature
	for rows.Next() {
		var f models.ComputedFeature
		var value string
		if err := rows.Scan(&f.Id, &f.UserId, &f.TimeWindow, &f.SignalType, &value, &f.ComputedAt); err != nil {
			return nil, fmt.Errorf("unable to scan computed feature row: %w", err)
		}
		f.SignalValue = json.RawMessage(value)
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating computed feature rows: %w", err)
	}
	return features, nil
}

func (s *Service) SavePersonaAssignment(ctx context.Context, assignment models.PersonaAssignment) error {
	if assignment.Id == "" {
		assignment.Id = uuid.New().String()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, queryInsertPersonaAssignment,
		assignment.Id, assignment.UserId, assignment.TimeWindow, assignment.Persona, assignment.AssignedAt)
	if err != nil {
		return fmt.Errorf("unable to insert persona assignment: %w", err)
	}

	zap.L().Info("Persona assignment saved",
		zap.String("user_id", assignment.UserId),
		zap.String("persona", assignment.Persona),
		zap.String("time_window", assignment.TimeWindow))
	return nil
}

func (s *Service) ListPersonaAssignments(ctx context.Context, userId string) ([]models.PersonaAssignment, error) {
	rows, err := s.db.QueryContext(ctx, queryGetPersonaAssignments, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query persona assignments: %w", err)
	}
	defer closeRows(rows)

	var assignments []models.PersonaAssignment
	for rows.Next() {
		var a models.PersonaAssignment
		if err := rows.Scan(&a.Id, &a.UserId, &a.TimeWindow, &a.Persona, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("unable to scan persona assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persona assignment rows: %w", err)
	}
	return assignments, nil
}

func (s *Service) SaveRecommendation(ctx context.Context, recommendation models.Recommendation) error {
	if recommendation.Id == "" {
		recommendation.Id = uuid.New().String()
	}

	var shownAt any
	if recommendation.ShownAt != nil {
		shownAt = *recommendation.ShownAt
	}

	_, err := s.db.ExecContext(ctx, queryInsertRecommendation,
		recommendation.Id, recommendation.UserId, recommendation.Type, recommendation.Title,
		recommendation.Rationale, shownAt, recommendation.Clicked)
	if err != nil {
		return fmt.Errorf("unable to insert recommendation: %w", err)
	}
	return nil
}

func (s *Service) ListRecommendations(ctx context.Context, userId string) ([]models.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx, queryGetRecommendations, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query recommendations: %w", err)
	}
	defer closeRows(rows)

	var recommendations []models.Recommendation
	for rows.Next() {
		var r models.Recommendation
		var shownAt sql.NullTime
		if err := rows.Scan(&r.Id, &r.UserId, &r.Type, &r.Title, &r.Rationale, &shownAt, &r.Clicked, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan recommendation row: %w", err)
		}
		if shownAt.Valid {
			t := shownAt.Time
			r.ShownAt = &t
		}
		recommendations = append(recommendations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendation rows: %w", err)
	}
	return recommendations, nil
}
