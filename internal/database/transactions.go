package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordTransactions inserts the batch atomically. Ids that already exist are skipped.
// A transaction whose account is unknown, or owned by another user, fails the
// whole batch with store.ErrAccountNotFound.
func (s *Service) RecordTransactions(ctx context.Context, transactions []models.Transaction) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, queryInsertTransaction)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	owners := make(map[string]string)
	inserted := 0
	for _, t := range transactions {
		owner, ok := owners[t.AccountId]
		if !ok {
			err := tx.QueryRowContext(ctx, queryGetAccountOwner, t.AccountId).Scan(&owner)
			if errors.Is(err, sql.ErrNoRows) {
				return 0, fmt.Errorf("%w: %s (transaction %s)", store.ErrAccountNotFound, t.AccountId, t.Id)
			}
			if err != nil {
				return 0, fmt.Errorf("failed to look up account %s: %w", t.AccountId, err)
			}
			owners[t.AccountId] = owner
		}
		if owner != t.UserId {
			return 0, fmt.Errorf("%w: %s for user %s (transaction %s)", store.ErrAccountNotFound, t.AccountId, t.UserId, t.Id)
		}

		var category any
		if t.Category != nil {
			category = *t.Category
		}

		result, err := stmt.ExecContext(ctx, t.Id, t.UserId, t.AccountId,
			t.Date.Format(dateLayout), t.Merchant, t.Amount.String(), category)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", t.Id, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to check rows affected: %w", err)
		}
		if rowsAffected == 0 {
			zap.L().Debug("Duplicate transaction skipped", zap.String("transaction_id", t.Id))
			continue
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transactions recorded",
		zap.Int("submitted", len(transactions)),
		zap.Int("inserted", inserted))
	return inserted, nil
}

func (s *Service) ListTransactionsForUser(ctx context.Context, userId string, window *store.DateRange) ([]models.Transaction, error) {
	var rows *sql.Rows
	var err error
	if window == nil {
		rows, err = s.db.QueryContext(ctx, queryGetTransactionsForUser, userId)
	} else {
		rows, err = s.db.QueryContext(ctx, queryGetTransactionsForUserInRange, userId,
			window.Start.Format(dateLayout), window.End.Format(dateLayout))
	}
	if err != nil {
		zap.L().Error("Failed to query transactions", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query transactions: %w", err)
	}
	defer closeRows(rows)

	return scanTransactions(rows)
}

func (s *Service) QueryTransactions(ctx context.Context, filter store.TransactionFilter) (*store.TransactionPage, error) {
	where, args := buildTransactionFilter(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, queryCountTransactions+where, args...).Scan(&total); err != nil {
		zap.L().Error("Failed to count transactions", zap.String("user_id", filter.UserId), zap.Error(err))
		return nil, fmt.Errorf("unable to count transactions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	pageArgs := append(args, limit, filter.Offset())

	rows, err := s.db.QueryContext(ctx, querySelectTransactions+where+queryOrderTransactionsPage, pageArgs...)
	if err != nil {
		zap.L().Error("Failed to query transaction page", zap.String("user_id", filter.UserId), zap.Error(err))
		return nil, fmt.Errorf("unable to query transactions: %w", err)
	}
	defer closeRows(rows)

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	return &store.TransactionPage{Transactions: transactions, Total: total}, nil
}

func buildTransactionFilter(filter store.TransactionFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{filter.UserId}

	if filter.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.StartDate.Format(dateLayout))
	}
	if filter.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.EndDate.Format(dateLayout))
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Merchant != "" {
		clauses = append(clauses, `LOWER(merchant) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Merchant))+"%")
	}

	return "\n\t\tWHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		var dateStr, amountStr string
		var category sql.NullString

		err := rows.Scan(&t.Id, &t.UserId, &t.AccountId, &dateStr, &t.Merchant, &amountStr, &category, &t.CreatedAt)
		if err != nil {
			zap.L().Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan transaction row: %w", err)
		}

		t.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date '%s' for transaction %s: %w", dateStr, t.Id, err)
		}

		t.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s' for transaction %s: %w", amountStr, t.Id, err)
		}

		if category.Valid && category.String != "" {
			c := category.String
			t.Category = &c
		}

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
