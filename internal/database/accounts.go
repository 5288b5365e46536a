package database

import (
	"context"
	"database/sql"
	"fmt"

	"spendsense-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) CreateAccount(ctx context.Context, account models.Account) error {
	if !account.AccountType.Valid() {
		return fmt.Errorf("invalid account type %q", account.AccountType)
	}

	var limit any
	if account.Limit.Valid {
		limit = account.Limit.Decimal.String()
	}

	_, err := s.db.ExecContext(ctx, queryInsertAccount,
		account.Id, account.UserId, string(account.AccountType), account.Last4, account.Balance.String(), limit)
	if err != nil {
		zap.L().Error("Failed to insert account",
			zap.String("account_id", account.Id),
			zap.String("user_id", account.UserId),
			zap.Error(err))
		return fmt.Errorf("unable to insert account: %w", err)
	}

	zap.L().Info("Account created",
		zap.String("account_id", account.Id),
		zap.String("user_id", account.UserId),
		zap.String("type", string(account.AccountType)),
		zap.String("balance", account.Balance.String()))
	return nil
}

// ListAccountsForUser returns accounts in creation order.
func (s *Service) ListAccountsForUser(ctx context.Context, userId string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAccountsForUser, userId)
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer closeRows(rows)

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

func scanAccount(rows *sql.Rows) (models.Account, error) {
	var account models.Account
	var accountType, balanceStr string
	var limitStr sql.NullString

	err := rows.Scan(&account.Id, &account.UserId, &accountType, &account.Last4,
		&balanceStr, &limitStr, &account.CreatedAt)
	if err != nil {
		return account, fmt.Errorf("unable to scan account row: %w", err)
	}
	account.AccountType = models.AccountType(accountType)

	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return account, fmt.Errorf("failed to parse balance '%s' for account %s: %w", balanceStr, account.Id, err)
	}

	if limitStr.Valid && limitStr.String != "" {
		limit, err := decimal.NewFromString(limitStr.String)
		if err != nil {
			return account, fmt.Errorf("failed to parse credit limit '%s' for account %s: %w", limitStr.String, account.Id, err)
		}
		account.Limit = decimal.NewNullDecimal(limit)
	}

	return account, nil
}
