package common

import (
	"context"
	"fmt"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"go.uber.org/zap"
)

// LoadProfiles returns the profile with the given email, or every profile when
// emailFilter is empty.
func LoadProfiles(ctx context.Context, profiles store.ProfileStore, emailFilter string) ([]models.Profile, error) {
	if emailFilter != "" {
		zap.L().Info("Looking up profile by email", zap.String("email", emailFilter))
		profile, err := profiles.GetProfileByEmail(ctx, emailFilter)
		if err != nil {
			return nil, fmt.Errorf("profile not found: %w", err)
		}
		return []models.Profile{*profile}, nil
	}

	all, err := profiles.GetProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}

	zap.L().Info("Retrieved profiles", zap.Int("count", len(all)))
	return all, nil
}
