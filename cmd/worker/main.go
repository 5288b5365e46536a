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

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spendsense-go/internal/common"
	"spendsense-go/internal/config"
	"spendsense-go/internal/events"
	"spendsense-go/internal/jobs"
	"spendsense-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	userFlag := flag.String("user", "", "Run the chain once for this user id and exit")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting SpendSense job worker")

	stores, err := common.InitializeStores(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize store", zap.Error(err))
	}
	defer stores.Close()

	manager := events.NewManager()
	j := jobs.New(stores.Records, manager)
	j.Register(manager)

	if *userFlag != "" {
		runCtx := models.WithJobTrigger(ctx, &models.JobTrigger{
			RunId:       uuid.NewString(),
			Source:      models.TriggerSourceManual,
			TriggeredAt: time.Now().UTC(),
		})
		if _, err := j.ComputeFeatures(runCtx, *userFlag); err != nil {
			zap.L().Error("Job chain failed", zap.String("user_id", *userFlag), zap.Error(err))
		}
		manager.Wait()
		manager.Shutdown()
		return
	}

	runner := jobs.NewRunner(j, stores.Store, cfg.Jobs.SweepInterval)
	runner.Start(ctx, cfg.Jobs.RunOnStart)

	zap.L().Info("Worker running", zap.Duration("sweep_interval", cfg.Jobs.SweepInterval))
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		runner.Stop()
		manager.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
