package api

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"
	"time"

	"spendsense-go/internal/database"
	"spendsense-go/internal/insights"
	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func setupTestService(t *testing.T) (*InsightsService, *database.Service) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st, err := database.NewServiceFromDB(db)
	if err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	engine := insights.NewEngine(st, st, insights.WithClock(func() time.Time { return testNow }))
	svc := NewInsightsService(st, engine)
	svc.now = func() time.Time { return testNow }
	return svc, st
}

func seedTransactions(t *testing.T, st *database.Service, userId string, n int) {
	t.Helper()
	ctx := context.Background()

	if _, err := st.CreateProfile(ctx, store.CreateProfileParams{
		UserId: userId, Email: userId + "@example.com", Name: "Test User",
	}); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if err := st.CreateAccount(ctx, models.Account{
		Id: userId + "-chk", UserId: userId, AccountType: models.AccountTypeChecking,
		Last4: "1234", Balance: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	category := "Food & Drink"
	txs := make([]models.Transaction, n)
	for i := range txs {
		txs[i] = models.Transaction{
			Id:        userId + "-tx-" + string(rune('a'+i)),
			UserId:    userId,
			AccountId: userId + "-chk",
			Date:      time.Date(2026, 10, 1+i, 0, 0, 0, 0, time.UTC),
			Merchant:  "Cafe",
			Amount:    decimal.RequireFromString("-4.50"),
			Category:  &category,
		}
	}
	if _, err := st.RecordTransactions(ctx, txs); err != nil {
		t.Fatalf("RecordTransactions failed: %v", err)
	}
}

func TestParseTransactionFilter(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantField string
		check     func(t *testing.T, f store.TransactionFilter)
	}{
		{
			name:  "defaults",
			query: "",
			check: func(t *testing.T, f store.TransactionFilter) {
				if f.Page != 1 || f.Limit != store.DefaultPageSize {
					t.Errorf("expected page 1 limit 50, got %d/%d", f.Page, f.Limit)
				}
				if f.StartDate != nil || f.EndDate != nil || f.Category != "" || f.Merchant != "" {
					t.Errorf("expected no filters, got %+v", f)
				}
			},
		},
		{
			name:  "all parameters",
			query: "start_date=2026-09-01&end_date=2026-09-30&category=Shopping&merchant=%20amazon%20&page=3&limit=100",
			check: func(t *testing.T, f store.TransactionFilter) {
				if f.StartDate.Format(insights.DateLayout) != "2026-09-01" || f.EndDate.Format(insights.DateLayout) != "2026-09-30" {
					t.Errorf("unexpected dates: %v %v", f.StartDate, f.EndDate)
				}
				if f.Category != "Shopping" || f.Merchant != "amazon" {
					t.Errorf("unexpected text filters: %q %q", f.Category, f.Merchant)
				}
				if f.Page != 3 || f.Limit != 100 {
					t.Errorf("unexpected paging: %d/%d", f.Page, f.Limit)
				}
			},
		},
		{name: "bad start date", query: "start_date=09/01/2026", wantField: "start_date"},
		{name: "bad end date", query: "end_date=yesterday", wantField: "end_date"},
		{name: "inverted range", query: "start_date=2026-10-01&end_date=2026-09-01", wantField: "start_date"},
		{name: "page zero", query: "page=0", wantField: "page"},
		{name: "page not a number", query: "page=two", wantField: "page"},
		{name: "limit too large", query: "limit=101", wantField: "limit"},
		{name: "limit zero", query: "limit=0", wantField: "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad test query: %v", err)
			}

			filter, err := ParseTransactionFilter("user1", query)
			if tt.wantField != "" {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if vErr.Field != tt.wantField {
					t.Errorf("expected field %s, got %s", tt.wantField, vErr.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filter.UserId != "user1" {
				t.Errorf("expected user1, got %s", filter.UserId)
			}
			tt.check(t, filter)
		})
	}
}

func TestListTransactions_Pagination(t *testing.T) {
	svc, st := setupTestService(t)
	seedTransactions(t, st, "user1", 5)

	resp, err := svc.ListTransactions(context.Background(), "user1", url.Values{"limit": {"2"}, "page": {"3"}})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}

	p := resp.Data.Pagination
	if p.Page != 3 || p.Limit != 2 || p.Total != 5 || p.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", p)
	}
	if len(resp.Data.Transactions) != 1 {
		t.Fatalf("expected 1 transaction on last page, got %d", len(resp.Data.Transactions))
	}

	entry := resp.Data.Transactions[0]
	if entry.Date != "2026-10-01" || entry.Amount != -4.5 || entry.UserId != "user1" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if resp.Meta.Timestamp != "2026-10-15T12:00:00Z" {
		t.Errorf("unexpected timestamp: %s", resp.Meta.Timestamp)
	}
}

func TestListTransactions_Empty(t *testing.T) {
	svc, _ := setupTestService(t)

	resp, err := svc.ListTransactions(context.Background(), "nobody", url.Values{})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if resp.Data.Transactions == nil || len(resp.Data.Transactions) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", resp.Data.Transactions)
	}
	if resp.Data.Pagination.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", resp.Data.Pagination.TotalPages)
	}
}

func TestGetInsights_DefaultPeriod(t *testing.T) {
	svc, st := setupTestService(t)
	seedTransactions(t, st, "user1", 2)

	resp, err := svc.GetInsights(context.Background(), "user1", "")
	if err != nil {
		t.Fatalf("GetInsights failed: %v", err)
	}
	if resp.Meta.Period != insights.Period30Days {
		t.Errorf("expected default period 30d, got %s", resp.Meta.Period)
	}
	if resp.Data.Summary.TotalSpending != 9 {
		t.Errorf("expected total_spending 9, got %v", resp.Data.Summary.TotalSpending)
	}
	if resp.Data.Summary.TopCategory == nil || *resp.Data.Summary.TopCategory != "Food & Drink" {
		t.Errorf("unexpected top category: %v", resp.Data.Summary.TopCategory)
	}
}

func TestGetInsights_Errors(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.GetInsights(ctx, "user1", "7d"); !errors.Is(err, insights.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}

	var vErr *ValidationError
	if _, err := svc.GetInsights(ctx, "  ", "30d"); !errors.As(err, &vErr) || vErr.Field != "user_id" {
		t.Errorf("expected user_id ValidationError, got %v", err)
	}
}

func TestGetProfile(t *testing.T) {
	svc, st := setupTestService(t)
	seedTransactions(t, st, "user1", 0)

	profile, err := svc.GetProfile(context.Background(), "user1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.UserId != "user1" || profile.Email != "user1@example.com" || profile.Role != models.RoleConsumer {
		t.Errorf("unexpected profile: %+v", profile)
	}

	if _, err := svc.GetProfile(context.Background(), "missing"); !errors.Is(err, store.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	svc, _ := setupTestService(t)
	if err := svc.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy store, got %v", err)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{5, 2, 3},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
