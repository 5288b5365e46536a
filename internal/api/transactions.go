package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"spendsense-go/internal/insights"
	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"go.uber.org/zap"
)

// ParseTransactionFilter reads the listing query parameters. Absent
// parameters keep their defaults: page 1, limit 50, no filters.
func ParseTransactionFilter(userId string, query url.Values) (store.TransactionFilter, error) {
	filter := store.TransactionFilter{
		UserId: userId,
		Page:   1,
		Limit:  store.DefaultPageSize,
	}

	var err error
	if filter.StartDate, err = parseDateParam(query, "start_date"); err != nil {
		return store.TransactionFilter{}, err
	}
	if filter.EndDate, err = parseDateParam(query, "end_date"); err != nil {
		return store.TransactionFilter{}, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return store.TransactionFilter{}, &ValidationError{Field: "start_date", Message: "must not be after end_date"}
	}

	filter.Category = SanitizeString(query.Get("category"))
	filter.Merchant = SanitizeString(query.Get("merchant"))

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return store.TransactionFilter{}, &ValidationError{Field: "page", Message: "must be an integer >= 1"}
		}
		filter.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > store.MaxPageSize {
			return store.TransactionFilter{}, &ValidationError{Field: "limit", Message: "must be an integer between 1 and 100"}
		}
		filter.Limit = limit
	}

	return filter, nil
}

func parseDateParam(query url.Values, field string) (*time.Time, error) {
	raw := SanitizeString(query.Get(field))
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(insights.DateLayout, raw)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return &d, nil
}

// ListTransactions returns one filtered page of the user's transactions, newest first.
func (s *InsightsService) ListTransactions(ctx context.Context, userId string, query url.Values) (*models.TransactionsResponse, error) {
	userId, err := validateUserId(userId)
	if err != nil {
		return nil, err
	}

	filter, err := ParseTransactionFilter(userId, query)
	if err != nil {
		return nil, err
	}

	page, err := s.store.QueryTransactions(ctx, filter)
	if err != nil {
		zap.L().Error("Failed to query transactions", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("%w: transactions: %w", insights.ErrDataFetch, err)
	}

	entries := make([]models.TransactionEntry, len(page.Transactions))
	for i, t := range page.Transactions {
		entries[i] = models.TransactionEntry{
			Id:        t.Id,
			UserId:    t.UserId,
			AccountId: t.AccountId,
			Date:      t.Date.Format(insights.DateLayout),
			Merchant:  t.Merchant,
			Amount:    t.Amount.InexactFloat64(),
			Category:  t.Category,
		}
	}

	return &models.TransactionsResponse{
		Data: models.TransactionsData{
			Transactions: entries,
			Pagination: models.Pagination{
				Page:       filter.Page,
				Limit:      filter.Limit,
				Total:      page.Total,
				TotalPages: totalPages(page.Total, filter.Limit),
			},
		},
		Meta: models.ResponseMeta{Timestamp: s.now().Format(time.RFC3339Nano)},
	}, nil
}

func totalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
