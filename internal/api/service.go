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
	"fmt"
	"time"

	"spendsense-go/internal/insights"
	"spendsense-go/internal/store"
)

// InsightsService is the read-side facade used by the HTTP handlers and CLIs.
// It validates input, logs failures with their full cause, and returns errors
// the transport layer can classify.
type InsightsService struct {
	store  store.Store
	engine *insights.Engine
	now    func() time.Time
}

func NewInsightsService(st store.Store, engine *insights.Engine) *InsightsService {
	return &InsightsService{
		store:  st,
		engine: engine,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *InsightsService) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}
	return nil
}
