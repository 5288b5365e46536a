package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Target is the store surface the seeder writes through.
type Target interface {
	store.ProfileStore
	store.AccountStore
	store.TransactionStore
	store.Ingestor
}

// Result reports what one profile's seeding changed.
type Result struct {
	UserId              string
	Email               string
	ProfileCreated      bool
	AccountsCreated     int
	TransactionsCreated int
	Skipped             bool
}

// Seeder writes demo profiles and their generated history. Re-running it is
// safe: existing profiles, account types and complete histories are kept.
type Seeder struct {
	target    Target
	records   store.RecordStore
	generator *Generator
}

// NewSeeder creates a seeder. records may be nil when the backend does not
// keep job records; persona assignments are then not written.
func NewSeeder(target Target, records store.RecordStore, generator *Generator) *Seeder {
	return &Seeder{target: target, records: records, generator: generator}
}

func (s *Seeder) Seed(ctx context.Context, profiles []DemoProfile) ([]Result, error) {
	results := make([]Result, 0, len(profiles))
	for _, p := range profiles {
		result, err := s.seedProfile(ctx, p)
		if err != nil {
			return results, fmt.Errorf("failed to seed %s: %w", p.Email, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Seeder) seedProfile(ctx context.Context, p DemoProfile) (Result, error) {
	logger := zap.L().With(zap.String("email", p.Email))
	result := Result{Email: p.Email}

	profile, created, err := s.ensureProfile(ctx, p)
	if err != nil {
		return result, err
	}
	result.UserId = profile.UserId
	result.ProfileCreated = created

	accounts, createdAccounts, err := s.ensureAccounts(ctx, p, profile.UserId)
	if err != nil {
		return result, err
	}
	result.AccountsCreated = createdAccounts

	existing, err := s.target.ListTransactionsForUser(ctx, profile.UserId, nil)
	if err != nil {
		return result, fmt.Errorf("failed to count existing transactions: %w", err)
	}
	if len(existing) >= p.TransactionCount {
		logger.Info("Transactions already exist",
			zap.Int("existing", len(existing)),
			zap.Int("expected", p.TransactionCount))
		result.Skipped = true
		return result, nil
	}

	txs := s.generator.Transactions(p, profile.UserId, accounts)
	inserted, err := s.target.RecordTransactions(ctx, txs)
	if err != nil {
		return result, fmt.Errorf("failed to record transactions: %w", err)
	}
	result.TransactionsCreated = inserted

	if created && s.records != nil && p.Persona != "" {
		if err := s.records.SavePersonaAssignment(ctx, models.PersonaAssignment{
			Id:         uuid.NewString(),
			UserId:     profile.UserId,
			TimeWindow: models.TimeWindow30d,
			Persona:    p.Persona,
			AssignedAt: time.Now().UTC(),
		}); err != nil {
			return result, fmt.Errorf("failed to save persona assignment: %w", err)
		}
	}

	logger.Info("Seeded profile",
		zap.String("user_id", profile.UserId),
		zap.Int("accounts_created", result.AccountsCreated),
		zap.Int("transactions_created", inserted))
	return result, nil
}

func (s *Seeder) ensureProfile(ctx context.Context, p DemoProfile) (*models.Profile, bool, error) {
	userId := p.ResolvedUserId()

	profile, err := s.target.GetProfileById(ctx, userId)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, store.ErrProfileNotFound) {
		return nil, false, err
	}

	profile, err = s.target.CreateProfile(ctx, store.CreateProfileParams{
		UserId: userId,
		Email:  p.Email,
		Name:   p.Name,
		Role:   p.Role,
	})
	if errors.Is(err, store.ErrDuplicateProfile) {
		// Same email under another id.
		existing, lookupErr := s.target.GetProfileByEmail(ctx, p.Email)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return profile, true, nil
}

func (s *Seeder) ensureAccounts(ctx context.Context, p DemoProfile, userId string) ([]models.Account, int, error) {
	existing, err := s.target.ListAccountsForUser(ctx, userId)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	have := make(map[models.AccountType]bool, len(existing))
	for _, a := range existing {
		have[a.AccountType] = true
	}

	planned, err := s.generator.Accounts(p, userId)
	if err != nil {
		return nil, 0, err
	}

	created := 0
	for _, account := range planned {
		if have[account.AccountType] {
			continue
		}
		if err := s.target.CreateAccount(ctx, account); err != nil {
			return nil, created, err
		}
		existing = append(existing, account)
		have[account.AccountType] = true
		created++
	}

	return existing, created, nil
}
