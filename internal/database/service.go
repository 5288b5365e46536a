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
	"fmt"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time checks: *Service must satisfy the store contracts.
var (
	_ store.Store       = (*Service)(nil)
	_ store.RecordStore = (*Service)(nil)
)

const dateLayout = "2006-01-02"

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after ping failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service, err := NewServiceFromDB(db)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after schema failure", zap.Error(closeErr))
		}
		return nil, err
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

// NewServiceFromDB wraps an already opened handle and creates the schema.
func NewServiceFromDB(db *sql.DB) (*Service, error) {
	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}
	return service, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'consumer' CHECK (role IN ('consumer', 'operator')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		account_type TEXT NOT NULL CHECK (account_type IN ('checking', 'savings', 'high_yield_savings', 'credit_card')),
		last4 TEXT NOT NULL DEFAULT '',
		balance TEXT NOT NULL DEFAULT '0',
		credit_limit TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);

	-- Dates are stored as YYYY-MM-DD text so range filters compare lexically
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		merchant TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);

	CREATE TABLE IF NOT EXISTS computed_features (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		time_window TEXT NOT NULL CHECK (time_window IN ('30d', '90d', '180d')),
		signal_type TEXT NOT NULL,
		signal_value TEXT NOT NULL DEFAULT '{}',
		computed_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_computed_features_user ON computed_features(user_id, time_window);

	CREATE TABLE IF NOT EXISTS persona_assignments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		time_window TEXT NOT NULL CHECK (time_window IN ('30d', '90d', '180d')),
		persona TEXT NOT NULL CHECK (persona IN ('high_utilization', 'subscription_heavy', 'variable_income_budgeter', 'savings_builder', 'general_wellness')),
		assigned_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_persona_assignments_user ON persona_assignments(user_id);

	CREATE TABLE IF NOT EXISTS recommendations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		type TEXT NOT NULL CHECK (type IN ('education', 'offer')),
		title TEXT NOT NULL,
		rationale TEXT NOT NULL,
		shown_at TIMESTAMP,
		clicked BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}
