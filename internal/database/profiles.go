/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"go.uber.org/zap"
)

func (s *Service) GetProfiles(ctx context.Context) ([]models.Profile, error) {
	zap.L().Debug("Querying profiles")

	rows, err := s.db.QueryContext(ctx, queryGetProfiles)
	if err != nil {
		zap.L().Error("Failed to query profiles", zap.Error(err))
		return nil, fmt.Errorf("unable to query profiles: %w", err)
	}
	defer closeRows(rows)

	var profiles []models.Profile
	for rows.Next() {
		var profile models.Profile
		if err := rows.Scan(&profile.UserId, &profile.Email, &profile.Name, &profile.Role, &profile.CreatedAt); err != nil {
			zap.L().Error("Failed to scan profile row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan profile row: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during profile row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}

	zap.L().Debug("Retrieved profiles", zap.Int("count", len(profiles)))
	return profiles, nil
}

func (s *Service) GetProfileById(ctx context.Context, userId string) (*models.Profile, error) {
	zap.L().Debug("Querying profile by ID", zap.String("user_id", userId))

	var profile models.Profile
	err := s.db.QueryRowContext(ctx, queryGetProfileById, userId).Scan(
		&profile.UserId, &profile.Email, &profile.Name, &profile.Role, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrProfileNotFound, userId)
		}
		zap.L().Error("Failed to query profile by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query profile by ID: %w", err)
	}

	return &profile, nil
}

func (s *Service) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	zap.L().Debug("Querying profile by email", zap.String("email", email))

	var profile models.Profile
	err := s.db.QueryRowContext(ctx, queryGetProfileByEmail, email).Scan(
		&profile.UserId, &profile.Email, &profile.Name, &profile.Role, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrProfileNotFound, email)
		}
		zap.L().Error("Failed to query profile by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to query profile by email: %w", err)
	}

	return &profile, nil
}

func (s *Service) CreateProfile(ctx context.Context, params store.CreateProfileParams) (*models.Profile, error) {
	role := params.Role
	if role == "" {
		role = models.RoleConsumer
	}

	zap.L().Info("Creating profile",
		zap.String("user_id", params.UserId),
		zap.String("email", params.Email),
		zap.String("role", role))

	result, err := s.db.ExecContext(ctx, queryInsertProfile, params.UserId, params.Email, params.Name, role)
	if err != nil {
		zap.L().Error("Failed to insert profile", zap.String("email", params.Email), zap.Error(err))
		return nil, fmt.Errorf("unable to insert profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrDuplicateProfile, params.Email)
	}

	return s.GetProfileById(ctx, params.UserId)
}
