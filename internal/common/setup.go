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

package common

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"spendsense-go/internal/database"
	"spendsense-go/internal/formance"
	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Stores groups the configured backend with the job record store. Job records
// always live in SQLite; with the Formance backend a second handle is opened.
type Stores struct {
	Store   store.Store
	Records store.RecordStore

	recordsDb *database.Service
}

func (s *Stores) Close() {
	if s.Store != nil {
		s.Store.Close()
	}
	if s.recordsDb != nil {
		s.recordsDb.Close()
	}
}

// InitializeLogger installs a global zap logger. LOG_LEVEL=debug switches to
// the development config.
func InitializeLogger() (*zap.Logger, func()) {
	var (
		logger *zap.Logger
		err    error
	)
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeStores opens the backend selected by cfg.Store.Backend.
func InitializeStores(ctx context.Context, cfg *models.Config) (*Stores, error) {
	switch cfg.Store.Backend {
	case models.StoreBackendFormance:
		zap.L().Info("Using Formance backend", zap.String("ledger", cfg.Formance.LedgerName))
		svc, err := formance.NewService(ctx, cfg.Formance)
		if err != nil {
			return nil, err
		}
		records, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open job record store: %w", err)
		}
		return &Stores{Store: svc, Records: records, recordsDb: records}, nil
	case models.StoreBackendSqlite, "":
		zap.L().Info("Using SQLite backend", zap.String("path", cfg.Database.Path))
		svc, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &Stores{Store: svc, Records: svc}, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
