package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every pooled connection would otherwise get its own empty in-memory database
	db.SetMaxOpenConns(1)

	service, err := NewServiceFromDB(db)
	if err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func strPtr(s string) *string { return &s }

func date(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedProfileWithAccount(t *testing.T, service *Service, userId string) {
	t.Helper()
	ctx := context.Background()
	if _, err := service.CreateProfile(ctx, store.CreateProfileParams{
		UserId: userId, Email: userId + "@example.com", Name: "Test " + userId,
	}); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if err := service.CreateAccount(ctx, models.Account{
		Id: userId + "-checking", UserId: userId, AccountType: models.AccountTypeChecking,
		Last4: "1111", Balance: decimal.NewFromInt(850),
	}); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
}

func TestCreateProfile(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	profile, err := service.CreateProfile(ctx, store.CreateProfileParams{
		UserId: "user1", Email: "hannah@example.com", Name: "Hannah Martinez",
	})
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	if profile.Role != models.RoleConsumer {
		t.Errorf("Expected default role %s, got %s", models.RoleConsumer, profile.Role)
	}

	byEmail, err := service.GetProfileByEmail(ctx, "hannah@example.com")
	if err != nil {
		t.Fatalf("GetProfileByEmail failed: %v", err)
	}
	if byEmail.UserId != "user1" {
		t.Errorf("Expected user1, got %s", byEmail.UserId)
	}

	_, err = service.CreateProfile(ctx, store.CreateProfileParams{
		UserId: "user2", Email: "hannah@example.com", Name: "Duplicate",
	})
	if !errors.Is(err, store.ErrDuplicateProfile) {
		t.Errorf("Expected ErrDuplicateProfile, got %v", err)
	}

	_, err = service.GetProfileById(ctx, "missing")
	if !errors.Is(err, store.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}

func TestListAccountsPreservesOrderAndLimit(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	seedProfileWithAccount(t, service, "user1")

	err := service.CreateAccount(ctx, models.Account{
		Id: "user1-credit", UserId: "user1", AccountType: models.AccountTypeCreditCard,
		Last4: "4444", Balance: decimal.NewFromInt(-3400), Limit: decimal.NewNullDecimal(decimal.NewFromInt(5000)),
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	accounts, err := service.ListAccountsForUser(ctx, "user1")
	if err != nil {
		t.Fatalf("ListAccountsForUser failed: %v", err)
	}

	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Id != "user1-checking" || accounts[1].Id != "user1-credit" {
		t.Errorf("Expected creation order, got %s, %s", accounts[0].Id, accounts[1].Id)
	}
	if accounts[0].Limit.Valid {
		t.Error("Checking account should have no limit")
	}
	if !accounts[1].Limit.Valid || !accounts[1].Limit.Decimal.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected credit limit 5000, got %v", accounts[1].Limit)
	}
	if !accounts[1].Balance.Equal(decimal.NewFromInt(-3400)) {
		t.Errorf("Expected balance -3400, got %s", accounts[1].Balance)
	}
}

func TestCreateAccount_InvalidType(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	err := service.CreateAccount(context.Background(), models.Account{
		Id: "a1", UserId: "user1", AccountType: "brokerage", Balance: decimal.Zero,
	})
	if err == nil {
		t.Fatal("Expected error for invalid account type")
	}
}

func TestRecordTransactions_SkipsDuplicates(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	seedProfileWithAccount(t, service, "user1")

	txs := []models.Transaction{
		{Id: "tx1", UserId: "user1", AccountId: "user1-checking", Date: date("2026-09-01"), Merchant: "Netflix", Amount: decimal.RequireFromString("-15.99"), Category: strPtr("Subscriptions")},
		{Id: "tx2", UserId: "user1", AccountId: "user1-checking", Date: date("2026-09-02"), Merchant: "Payroll", Amount: decimal.NewFromInt(2000)},
	}

	inserted, err := service.RecordTransactions(ctx, txs)
	if err != nil {
		t.Fatalf("RecordTransactions failed: %v", err)
	}
	if inserted != 2 {
		t.Errorf("Expected 2 inserted, got %d", inserted)
	}

	inserted, err = service.RecordTransactions(ctx, txs)
	if err != nil {
		t.Fatalf("RecordTransactions (repeat) failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("Expected 0 inserted on repeat, got %d", inserted)
	}

	all, err := service.ListTransactionsForUser(ctx, "user1", nil)
	if err != nil {
		t.Fatalf("ListTransactionsForUser failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(all))
	}
	if all[0].Category == nil || *all[0].Category != "Subscriptions" {
		t.Errorf("Expected Subscriptions category, got %v", all[0].Category)
	}
	if all[1].Category != nil {
		t.Errorf("Expected nil category, got %v", *all[1].Category)
	}
	if !all[0].Amount.Equal(decimal.RequireFromString("-15.99")) {
		t.Errorf("Expected -15.99, got %s", all[0].Amount)
	}
	if !all[0].Date.Equal(date("2026-09-01")) {
		t.Errorf("Expected 2026-09-01, got %s", all[0].Date)
	}
}

func TestRecordTransactions_UnknownAccount(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	seedProfileWithAccount(t, service, "user1")
	seedProfileWithAccount(t, service, "user2")

	tests := []struct {
		name      string
		accountId string
	}{
		{"missing account", "no-such-account"},
		{"account of another user", "user2-checking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []models.Transaction{
				{Id: "ok-" + tt.accountId, UserId: "user1", AccountId: "user1-checking", Date: date("2026-09-01"), Merchant: "Cafe", Amount: decimal.NewFromInt(-4)},
				{Id: "bad-" + tt.accountId, UserId: "user1", AccountId: tt.accountId, Date: date("2026-09-02"), Merchant: "Cafe", Amount: decimal.NewFromInt(-4)},
			}

			inserted, err := service.RecordTransactions(ctx, txs)
			if !errors.Is(err, store.ErrAccountNotFound) {
				t.Fatalf("Expected ErrAccountNotFound, got %v", err)
			}
			if inserted != 0 {
				t.Errorf("Expected 0 inserted, got %d", inserted)
			}

			all, err := service.ListTransactionsForUser(ctx, "user1", nil)
			if err != nil {
				t.Fatalf("ListTransactionsForUser failed: %v", err)
			}
			if len(all) != 0 {
				t.Errorf("Expected the batch to be rolled back, found %d transactions", len(all))
			}
		})
	}
}

func TestListTransactionsForUser_Window(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	seedProfileWithAccount(t, service, "user1")

	var txs []models.Transaction
	for i, d := range []string{"2026-08-01", "2026-08-15", "2026-09-14", "2026-09-15", "2026-10-15", "2026-10-16"} {
		txs = append(txs, models.Transaction{
			Id: "tx" + d, UserId: "user1", AccountId: "user1-checking", Date: date(d),
			Merchant: "Store", Amount: decimal.NewFromInt(int64(-10 - i)),
		})
	}
	if _, err := service.RecordTransactions(ctx, txs); err != nil {
		t.Fatalf("RecordTransactions failed: %v", err)
	}

	window := &store.DateRange{Start: date("2026-09-15"), End: date("2026-10-15")}
	got, err := service.ListTransactionsForUser(ctx, "user1", window)
	if err != nil {
		t.Fatalf("ListTransactionsForUser failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 transactions within inclusive window, got %d", len(got))
	}
	if got[0].Date.Format(dateLayout) != "2026-09-15" || got[1].Date.Format(dateLayout) != "2026-10-15" {
		t.Errorf("Unexpected dates: %s, %s", got[0].Date.Format(dateLayout), got[1].Date.Format(dateLayout))
	}
}

func TestQueryTransactions_FiltersAndPagination(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	seedProfileWithAccount(t, service, "user1")
	seedProfileWithAccount(t, service, "user2")

	var txs []models.Transaction
	start := date("2026-09-01")
	for i := 0; i < 7; i++ {
		txs = append(txs, models.Transaction{
			Id: "coffee-" + string(rune('a'+i)), UserId: "user1", AccountId: "user1-checking",
			Date: start.AddDate(0, 0, i), Merchant: "Blue Bottle Coffee",
			Amount: decimal.NewFromInt(-5), Category: strPtr("Food & Drink"),
		})
	}
	txs = append(txs,
		models.Transaction{Id: "grocer", UserId: "user1", AccountId: "user1-checking", Date: start, Merchant: "Whole Foods", Amount: decimal.NewFromInt(-80), Category: strPtr("Shopping")},
		models.Transaction{Id: "other-user", UserId: "user2", AccountId: "user2-checking", Date: start, Merchant: "Blue Bottle Coffee", Amount: decimal.NewFromInt(-5), Category: strPtr("Food & Drink")},
		models.Transaction{Id: "percent", UserId: "user1", AccountId: "user1-checking", Date: start, Merchant: "100% Juice", Amount: decimal.NewFromInt(-4)},
	)
	if _, err := service.RecordTransactions(ctx, txs); err != nil {
		t.Fatalf("RecordTransactions failed: %v", err)
	}

	tests := []struct {
		name          string
		filter        store.TransactionFilter
		expectedTotal int
		expectedPage  int
		expectedFirst string
	}{
		{
			name:          "all for user",
			filter:        store.TransactionFilter{UserId: "user1", Page: 1, Limit: 50},
			expectedTotal: 9,
			expectedPage:  9,
			expectedFirst: "coffee-g",
		},
		{
			name:          "merchant case insensitive",
			filter:        store.TransactionFilter{UserId: "user1", Merchant: "BOTTLE", Page: 1, Limit: 3},
			expectedTotal: 7,
			expectedPage:  3,
			expectedFirst: "coffee-g",
		},
		{
			name:          "second page",
			filter:        store.TransactionFilter{UserId: "user1", Merchant: "bottle", Page: 3, Limit: 3},
			expectedTotal: 7,
			expectedPage:  1,
			expectedFirst: "coffee-a",
		},
		{
			name:          "category",
			filter:        store.TransactionFilter{UserId: "user1", Category: "Shopping", Page: 1, Limit: 50},
			expectedTotal: 1,
			expectedPage:  1,
			expectedFirst: "grocer",
		},
		{
			name: "date range",
			filter: store.TransactionFilter{UserId: "user1", Page: 1, Limit: 50,
				StartDate: timePtr(date("2026-09-03")), EndDate: timePtr(date("2026-09-04"))},
			expectedTotal: 2,
			expectedPage:  2,
			expectedFirst: "coffee-d",
		},
		{
			name:          "like wildcard is literal",
			filter:        store.TransactionFilter{UserId: "user1", Merchant: "%", Page: 1, Limit: 50},
			expectedTotal: 1,
			expectedPage:  1,
			expectedFirst: "percent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := service.QueryTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("QueryTransactions failed: %v", err)
			}
			if page.Total != tt.expectedTotal {
				t.Errorf("Expected total %d, got %d", tt.expectedTotal, page.Total)
			}
			if len(page.Transactions) != tt.expectedPage {
				t.Fatalf("Expected %d on page, got %d", tt.expectedPage, len(page.Transactions))
			}
			if page.Transactions[0].Id != tt.expectedFirst {
				t.Errorf("Expected first %s, got %s", tt.expectedFirst, page.Transactions[0].Id)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestJobRecords(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	seedProfileWithAccount(t, service, "user1")

	err := service.SaveComputedFeature(ctx, models.ComputedFeature{
		UserId: "user1", TimeWindow: models.TimeWindow30d, SignalType: "credit_utilization",
		SignalValue: json.RawMessage(`{"max_utilization":68.0}`),
	})
	if err != nil {
		t.Fatalf("SaveComputedFeature failed: %v", err)
	}

	err = service.SaveComputedFeature(ctx, models.ComputedFeature{
		UserId: "user1", TimeWindow: models.TimeWindow30d, SignalType: "broken",
		SignalValue: json.RawMessage(`{not json`),
	})
	if err == nil {
		t.Error("Expected error for invalid JSON signal value")
	}

	if err := service.SavePersonaAssignment(ctx, models.PersonaAssignment{
		UserId: "user1", TimeWindow: models.TimeWindow30d, Persona: models.PersonaHighUtilization,
	}); err != nil {
		t.Fatalf("SavePersonaAssignment failed: %v", err)
	}

	shown := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := service.SaveRecommendation(ctx, models.Recommendation{
		UserId: "user1", Type: models.RecommendationTypeEducation, Title: "Lower your utilization",
		Rationale: "Your card is at 68% of its limit", ShownAt: &shown,
	}); err != nil {
		t.Fatalf("SaveRecommendation failed: %v", err)
	}

	features, err := service.ListComputedFeatures(ctx, "user1")
	if err != nil {
		t.Fatalf("ListComputedFeatures failed: %v", err)
	}
	if len(features) != 1 || string(features[0].SignalValue) != `{"max_utilization":68.0}` {
		t.Errorf("Unexpected features: %+v", features)
	}

	personas, err := service.ListPersonaAssignments(ctx, "user1")
	if err != nil {
		t.Fatalf("ListPersonaAssignments failed: %v", err)
	}
	if len(personas) != 1 || personas[0].Persona != models.PersonaHighUtilization {
		t.Errorf("Unexpected personas: %+v", personas)
	}

	recs, err := service.ListRecommendations(ctx, "user1")
	if err != nil {
		t.Fatalf("ListRecommendations failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ShownAt == nil || !recs[0].ShownAt.Equal(shown) {
		t.Errorf("Unexpected recommendations: %+v", recs)
	}
}
