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

package api

import (
	"context"
	"errors"

	"spendsense-go/internal/insights"
	"spendsense-go/internal/models"

	"go.uber.org/zap"
)

// GetInsights returns the insights payload for a user. An empty period means 30d.
func (s *InsightsService) GetInsights(ctx context.Context, userId, period string) (*models.InsightsResponse, error) {
	userId, err := validateUserId(userId)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = insights.Period30Days
	}

	resp, err := s.engine.GetInsights(ctx, userId, period)
	if err != nil {
		if errors.Is(err, insights.ErrInvalidPeriod) {
			zap.L().Debug("Rejected insights period", zap.String("user_id", userId), zap.String("period", period))
			return nil, err
		}
		zap.L().Error("Failed to compute insights",
			zap.String("user_id", userId),
			zap.String("period", period),
			zap.Error(err))
		return nil, err
	}

	zap.L().Debug("Insights computed",
		zap.String("user_id", userId),
		zap.String("period", period),
		zap.Float64("total_spending", resp.Data.Summary.TotalSpending))
	return resp, nil
}
