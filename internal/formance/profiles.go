package formance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

func (s *Service) CreateProfile(ctx context.Context, params store.CreateProfileParams) (*models.Profile, error) {
	if existing, err := s.GetProfileById(ctx, params.UserId); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", store.ErrDuplicateProfile, params.UserId)
	} else if err != nil && !errors.Is(err, store.ErrProfileNotFound) {
		return nil, err
	}

	if existing, err := s.GetProfileByEmail(ctx, params.Email); err == nil && existing != nil {
		zap.L().Info("Profile with this email already exists in Formance",
			zap.String("existing_id", existing.UserId),
			zap.String("email", params.Email))
		return nil, fmt.Errorf("%w: %s", store.ErrDuplicateProfile, params.Email)
	} else if err != nil && !errors.Is(err, store.ErrProfileNotFound) {
		return nil, err
	}

	role := params.Role
	if role == "" {
		role = models.RoleConsumer
	}

	addr := profileAddress(params.UserId)
	zap.L().Info("Creating profile in Formance", zap.String("address", addr), zap.String("email", params.Email))

	_, err := s.client.Ledger.V2.AddMetadataToAccount(ctx, operations.V2AddMetadataToAccountRequest{
		Ledger:  s.ledger,
		Address: addr,
		RequestBody: map[string]string{
			"entity_type": entityProfile,
			"user_id":     params.UserId,
			"email":       params.Email,
			"name":        params.Name,
			"role":        role,
			"created_at":  time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile account: %w", err)
	}

	return s.GetProfileById(ctx, params.UserId)
}

func (s *Service) GetProfileById(ctx context.Context, userId string) (*models.Profile, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: profileAddress(userId),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrProfileNotFound, userId)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	acct := resp.V2AccountResponse.Data
	if acct.Metadata["entity_type"] != entityProfile || acct.Metadata["user_id"] != userId {
		return nil, fmt.Errorf("%w: %s", store.ErrProfileNotFound, userId)
	}

	return accountToProfile(&acct), nil
}

func (s *Service) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	accounts, err := s.listAccounts(ctx, map[string]string{
		"entity_type": entityProfile,
		"email":       email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search profile by email: %w", err)
	}

	for i := range accounts {
		if isProfileAddress(accounts[i].Address) {
			return accountToProfile(&accounts[i]), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrProfileNotFound, email)
}

func (s *Service) GetProfiles(ctx context.Context) ([]models.Profile, error) {
	accounts, err := s.listAccounts(ctx, map[string]string{"entity_type": entityProfile})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var profiles []models.Profile
	for i := range accounts {
		if isProfileAddress(accounts[i].Address) {
			profiles = append(profiles, *accountToProfile(&accounts[i]))
		}
	}
	slices.SortStableFunc(profiles, func(a, b models.Profile) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return profiles, nil
}

// listAccounts follows the cursor until every account matching the metadata is read.
func (s *Service) listAccounts(ctx context.Context, metadata map[string]string) ([]shared.V2Account, error) {
	var (
		all    []shared.V2Account
		cursor *string
	)
	for {
		resp, err := s.client.Ledger.V2.ListAccounts(ctx, operations.V2ListAccountsRequest{
			Ledger:      s.ledger,
			PageSize:    ptrInt64(listPageSize),
			Cursor:      cursor,
			RequestBody: matchAll(metadata),
		})
		if err != nil {
			return nil, err
		}

		page := resp.V2AccountsCursorResponse.Cursor
		all = append(all, page.Data...)
		if !page.HasMore || page.Next == nil {
			return all, nil
		}
		cursor = page.Next
	}
}

// isProfileAddress accepts users:{id} but not the nested users:{id}:accounts:{id}.
func isProfileAddress(address string) bool {
	parts := strings.Split(address, ":")
	return len(parts) == 2 && parts[0] == "users"
}

func accountToProfile(acct *shared.V2Account) *models.Profile {
	meta := acct.Metadata
	return &models.Profile{
		UserId:    meta["user_id"],
		Email:     meta["email"],
		Name:      meta["name"],
		Role:      meta["role"],
		CreatedAt: metadataTime(meta["created_at"], acct.FirstUsage),
	}
}

// metadataTime parses an RFC3339 metadata value, falling back to the ledger's
// first-usage time and then to now.
func metadataTime(value string, fallback *time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if fallback != nil {
		return *fallback
	}
	return time.Now()
}
