package formance

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"spendsense-go/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateAccount stores the account as metadata on users:{user}:accounts:{id}.
// Balances are snapshots; they are not derived from ledger volumes.
func (s *Service) CreateAccount(ctx context.Context, account models.Account) error {
	if !account.AccountType.Valid() {
		return fmt.Errorf("invalid account type %q", account.AccountType)
	}

	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	creditLimit := ""
	if account.Limit.Valid {
		creditLimit = account.Limit.Decimal.String()
	}

	addr := bankAccountAddress(account.UserId, account.Id)
	_, err := s.client.Ledger.V2.AddMetadataToAccount(ctx, operations.V2AddMetadataToAccountRequest{
		Ledger:  s.ledger,
		Address: addr,
		RequestBody: map[string]string{
			"entity_type":  entityBankAccount,
			"account_id":   account.Id,
			"user_id":      account.UserId,
			"account_type": string(account.AccountType),
			"last4":        account.Last4,
			"balance":      account.Balance.String(),
			"credit_limit": creditLimit,
			"created_at":   createdAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", account.Id, err)
	}

	zap.L().Info("Account created in Formance",
		zap.String("address", addr),
		zap.String("account_type", string(account.AccountType)))
	return nil
}

// accountExists reports whether the bank account is registered under the user.
func (s *Service) accountExists(ctx context.Context, userId, accountId string) (bool, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: bankAccountAddress(userId, accountId),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get account %s: %w", accountId, err)
	}
	return resp.V2AccountResponse.Data.Metadata["entity_type"] == entityBankAccount, nil
}

func (s *Service) ListAccountsForUser(ctx context.Context, userId string) ([]models.Account, error) {
	ledgerAccounts, err := s.listAccounts(ctx, map[string]string{
		"entity_type": entityBankAccount,
		"user_id":     userId,
	})
	if err != nil {
		zap.L().Error("Failed to list accounts", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to list accounts: %w", err)
	}

	accounts := make([]models.Account, 0, len(ledgerAccounts))
	for i := range ledgerAccounts {
		account, err := ledgerAccountToAccount(&ledgerAccounts[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	slices.SortStableFunc(accounts, func(a, b models.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Id, b.Id)
	})
	return accounts, nil
}

func ledgerAccountToAccount(acct *shared.V2Account) (models.Account, error) {
	meta := acct.Metadata
	account := models.Account{
		Id:          meta["account_id"],
		UserId:      meta["user_id"],
		AccountType: models.AccountType(meta["account_type"]),
		Last4:       meta["last4"],
		CreatedAt:   metadataTime(meta["created_at"], acct.FirstUsage),
	}

	balance, err := decimal.NewFromString(meta["balance"])
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to parse balance for account %s: %w", acct.Address, err)
	}
	account.Balance = balance

	if raw := meta["credit_limit"]; raw != "" {
		limit, err := decimal.NewFromString(raw)
		if err != nil {
			return models.Account{}, fmt.Errorf("failed to parse credit limit for account %s: %w", acct.Address, err)
		}
		account.Limit = decimal.NewNullDecimal(limit)
	}

	return account, nil
}
