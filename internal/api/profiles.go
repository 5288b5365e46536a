package api

import (
	"context"
	"errors"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"go.uber.org/zap"
)

func (s *InsightsService) GetProfile(ctx context.Context, userId string) (*models.ProfileResponse, error) {
	userId, err := validateUserId(userId)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfileById(ctx, userId)
	if err != nil {
		if !errors.Is(err, store.ErrProfileNotFound) {
			zap.L().Error("Failed to get profile", zap.String("user_id", userId), zap.Error(err))
		}
		return nil, err
	}

	return &models.ProfileResponse{
		UserId: profile.UserId,
		Email:  profile.Email,
		Name:   profile.Name,
		Role:   profile.Role,
	}, nil
}
