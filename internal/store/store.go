package store

import (
	"context"
	"errors"
	"time"

	"spendsense-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrDuplicateProfile = errors.New("profile already exists")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrAccountNotFound  = errors.New("account not found")
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// DateRange is an inclusive range of civil dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// TransactionFilter narrows a paginated transaction listing. Zero values mean "no filter".
type TransactionFilter struct {
	UserId    string
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
	Merchant  string // case-insensitive substring
	Page      int    // 1-based
	Limit     int
}

// Offset returns the number of rows skipped before the requested page.
func (f TransactionFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// TransactionPage is one page of a filtered listing plus the unpaged total.
type TransactionPage struct {
	Transactions []models.Transaction
	Total        int
}

// CreateProfileParams contains the parameters for creating a profile.
type CreateProfileParams struct {
	UserId string
	Email  string
	Name   string
	Role   string
}

// TransactionStore reads a user's transactions.
type TransactionStore interface {
	// ListTransactionsForUser returns the user's transactions ordered by date ascending.
	// A nil window returns the full history.
	ListTransactionsForUser(ctx context.Context, userId string, window *DateRange) ([]models.Transaction, error)
	// QueryTransactions returns one page ordered by date descending.
	QueryTransactions(ctx context.Context, filter TransactionFilter) (*TransactionPage, error)
}

// AccountStore reads a user's accounts in the order they were created.
type AccountStore interface {
	ListAccountsForUser(ctx context.Context, userId string) ([]models.Account, error)
}

type ProfileStore interface {
	GetProfiles(ctx context.Context) ([]models.Profile, error)
	GetProfileById(ctx context.Context, userId string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	CreateProfile(ctx context.Context, params CreateProfileParams) (*models.Profile, error)
}

// Ingestor writes accounts and transactions. Used by seeding and imports; the
// insights path never writes.
type Ingestor interface {
	CreateAccount(ctx context.Context, account models.Account) error
	// RecordTransactions stores the batch and returns how many were new.
	// Transactions whose id already exists are skipped.
	RecordTransactions(ctx context.Context, transactions []models.Transaction) (int, error)
}

// RecordStore holds the outputs of the background jobs. List methods return
// records newest first.
type RecordStore interface {
	ListComputedFeatures(ctx context.Context, userId string) ([]models.ComputedFeature, error)
	ListPersonaAssignments(ctx context.Context, userId string) ([]models.PersonaAssignment, error)
	ListRecommendations(ctx context.Context, userId string) ([]models.Recommendation, error)
	SaveComputedFeature(ctx context.Context, feature models.ComputedFeature) error
	SavePersonaAssignment(ctx context.Context, assignment models.PersonaAssignment) error
	SaveRecommendation(ctx context.Context, recommendation models.Recommendation) error
}

// Store is the contract that every backend (SQLite, Formance, ...) must satisfy.
type Store interface {
	ProfileStore
	AccountStore
	TransactionStore
	Ingestor

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
