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
	"errors"
	"flag"
	"fmt"
	"regexp"

	"spendsense-go/internal/common"
	"spendsense-go/internal/config"
	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func validateRole(role string) error {
	if role != models.RoleConsumer && role != models.RoleOperator {
		return fmt.Errorf("role must be %q or %q, got %q", models.RoleConsumer, models.RoleOperator, role)
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	nameFlag := flag.String("name", "", "Profile's full name (required)")
	emailFlag := flag.String("email", "", "Profile's email address (required)")
	roleFlag := flag.String("role", models.RoleConsumer, "Profile role: consumer or operator")
	idFlag := flag.String("id", "", "Explicit user id (default: random UUID)")
	flag.Parse()

	if *nameFlag == "" || *emailFlag == "" {
		zap.L().Fatal("Both flags are required: --name and --email")
	}
	if err := validateName(*nameFlag); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}
	if err := validateRole(*roleFlag); err != nil {
		zap.L().Fatal("Invalid role", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	stores, err := common.InitializeStores(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize store", zap.Error(err))
	}
	defer stores.Close()

	userId := *idFlag
	if userId == "" {
		userId = uuid.New().String()
	}

	zap.L().Info("Creating profile",
		zap.String("id", userId),
		zap.String("name", *nameFlag),
		zap.String("email", *emailFlag),
		zap.String("role", *roleFlag))

	profile, err := stores.Store.CreateProfile(ctx, store.CreateProfileParams{
		UserId: userId,
		Email:  *emailFlag,
		Name:   *nameFlag,
		Role:   *roleFlag,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateProfile) {
			zap.L().Fatal("Profile already exists with this email or id", zap.String("email", *emailFlag))
		}
		zap.L().Fatal("Failed to create profile", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("PROFILE CREATED", common.DefaultWidth)
	fmt.Printf("ID:    %s\n", profile.UserId)
	fmt.Printf("Name:  %s\n", profile.Name)
	fmt.Printf("Email: %s\n", profile.Email)
	fmt.Printf("Role:  %s\n", profile.Role)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("Profile created successfully", zap.String("id", profile.UserId))
}
