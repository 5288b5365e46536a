package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"spendsense-go/internal/common"
	"spendsense-go/internal/config"
	"spendsense-go/internal/seed"

	"go.uber.org/zap"
)

func loadDemoProfiles(path string, explicit bool) ([]seed.DemoProfile, error) {
	profiles, err := seed.LoadProfiles(path)
	if err == nil {
		return profiles, nil
	}
	// A missing default file falls back to the built-in profiles.
	if !explicit && errors.Is(err, os.ErrNotExist) {
		zap.L().Info("Profiles file not found, using built-in demo profiles", zap.String("file", path))
		return seed.DefaultProfiles(), nil
	}
	return nil, err
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	profilesFlag := flag.String("profiles", "", "Path to a demo profiles YAML file (default: SEED_PROFILES_FILE)")
	seedFlag := flag.Int64("seed", 0, "Random seed (default: SEED_RANDOM_SEED)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	profilesFile := cfg.Seed.ProfilesFile
	if *profilesFlag != "" {
		profilesFile = *profilesFlag
	}
	randomSeed := cfg.Seed.RandomSeed
	if *seedFlag != 0 {
		randomSeed = *seedFlag
	}

	profiles, err := loadDemoProfiles(profilesFile, *profilesFlag != "")
	if err != nil {
		logger.Fatal("Failed to load demo profiles", zap.Error(err))
	}

	stores, err := common.InitializeStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer stores.Close()

	logger.Info("Seeding demo data",
		zap.Int("profiles", len(profiles)),
		zap.Int64("seed", randomSeed))

	seeder := seed.NewSeeder(stores.Store, stores.Records, seed.NewGenerator(randomSeed, time.Now()))
	results, err := seeder.Seed(ctx, profiles)

	common.PrintHeader("DEMO DATA", common.DefaultWidth)
	for _, r := range results {
		status := "seeded"
		if r.Skipped {
			status = "already seeded"
		}
		fmt.Printf("✓ %-22s %-14s accounts +%d, transactions +%d\n",
			r.Email, status, r.AccountsCreated, r.TransactionsCreated)
		fmt.Printf("  user_id: %s\n", r.UserId)
	}
	common.PrintSeparator("=", common.DefaultWidth)

	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
	logger.Info("Seeding completed", zap.Int("profiles", len(results)))
}
