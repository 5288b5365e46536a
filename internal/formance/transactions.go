package formance

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"spendsense-go/internal/models"
	"spendsense-go/internal/store"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Numscript templates. Metadata is set inside the script via set_tx_meta() so
// each ledger transaction carries the signed amount, merchant and category as recorded.

const numscriptDebit = `vars {
  asset $asset
  number $amount
  account $account
  account $merchant
  string $transaction_id
  string $user_id
  string $account_id
  string $merchant_name
  string $category
  string $date
  string $amount_signed
}

send [$asset $amount] (
  source = $account allowing unbounded overdraft
  destination = @merchants:$merchant
)

set_tx_meta("entity_type", "bank_transaction")
set_tx_meta("transaction_id", $transaction_id)
set_tx_meta("user_id", $user_id)
set_tx_meta("account_id", $account_id)
set_tx_meta("merchant", $merchant_name)
set_tx_meta("category", $category)
set_tx_meta("date", $date)
set_tx_meta("amount", $amount_signed)
`

const numscriptCredit = `vars {
  asset $asset
  number $amount
  account $account
  account $merchant
  string $transaction_id
  string $user_id
  string $account_id
  string $merchant_name
  string $category
  string $date
  string $amount_signed
}

send [$asset $amount] (
  source = @merchants:$merchant allowing unbounded overdraft
  destination = $account
)

set_tx_meta("entity_type", "bank_transaction")
set_tx_meta("transaction_id", $transaction_id)
set_tx_meta("user_id", $user_id)
set_tx_meta("account_id", $account_id)
set_tx_meta("merchant", $merchant_name)
set_tx_meta("category", $category)
set_tx_meta("date", $date)
set_tx_meta("amount", $amount_signed)
`

// RecordTransactions posts each transaction with its id as the ledger reference.
// A CONFLICT on the reference means the transaction was already recorded and it is skipped.
// A bank account missing from the ledger fails with store.ErrAccountNotFound.
// Unlike the SQLite backend, a failure part-way leaves earlier postings in place.
func (s *Service) RecordTransactions(ctx context.Context, transactions []models.Transaction) (int, error) {
	inserted := 0
	known := make(map[string]bool)
	for _, t := range transactions {
		key := t.UserId + "/" + t.AccountId
		if _, checked := known[key]; !checked {
			ok, err := s.accountExists(ctx, t.UserId, t.AccountId)
			if err != nil {
				return inserted, err
			}
			known[key] = ok
		}
		if !known[key] {
			return inserted, fmt.Errorf("%w: %s for user %s (transaction %s)", store.ErrAccountNotFound, t.AccountId, t.UserId, t.Id)
		}

		if t.Amount.IsZero() {
			zap.L().Debug("Zero amount transaction skipped", zap.String("transaction_id", t.Id))
			continue
		}

		script := numscriptDebit
		if !t.IsDebit() {
			script = numscriptCredit
		}

		category := ""
		if t.Category != nil {
			category = *t.Category
		}

		date := t.Date.UTC()
		postTx := shared.V2PostTransaction{
			Reference: strPtr(t.Id),
			Timestamp: &date,
			Script: &shared.V2PostTransactionScript{
				Plain: script,
				Vars: map[string]string{
					"asset":          formanceAsset(),
					"amount":         toMinorUnits(t.Amount),
					"account":        bankAccountAddress(t.UserId, t.AccountId),
					"merchant":       merchantSegment(t.Merchant),
					"transaction_id": t.Id,
					"user_id":        t.UserId,
					"account_id":     t.AccountId,
					"merchant_name":  t.Merchant,
					"category":       category,
					"date":           date.Format(dateLayout),
					"amount_signed":  t.Amount.String(),
				},
			},
		}

		_, err := s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
			Ledger:            s.ledger,
			V2PostTransaction: postTx,
		})
		if err != nil {
			if isConflictError(err) {
				zap.L().Debug("Duplicate transaction skipped", zap.String("transaction_id", t.Id))
				continue
			}
			return inserted, fmt.Errorf("failed to post transaction %s: %w", t.Id, err)
		}
		inserted++
	}

	zap.L().Info("Transactions recorded in Formance",
		zap.Int("submitted", len(transactions)),
		zap.Int("inserted", inserted))
	return inserted, nil
}

func (s *Service) ListTransactionsForUser(ctx context.Context, userId string, window *store.DateRange) ([]models.Transaction, error) {
	transactions, err := s.userTransactions(ctx, userId)
	if err != nil {
		return nil, err
	}

	filter := store.TransactionFilter{UserId: userId}
	if window != nil {
		filter.StartDate = &window.Start
		filter.EndDate = &window.End
	}
	matched := filterTransactions(transactions, filter)

	slices.SortStableFunc(matched, func(a, b models.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return matched, nil
}

// QueryTransactions filters and pages in memory; the ledger has no substring match on metadata.
func (s *Service) QueryTransactions(ctx context.Context, filter store.TransactionFilter) (*store.TransactionPage, error) {
	transactions, err := s.userTransactions(ctx, filter.UserId)
	if err != nil {
		return nil, err
	}

	matched := filterTransactions(transactions, filter)
	slices.SortStableFunc(matched, func(a, b models.Transaction) int {
		return b.Date.Compare(a.Date)
	})

	return &store.TransactionPage{
		Transactions: pageOf(matched, filter),
		Total:        len(matched),
	}, nil
}

// userTransactions returns every transaction recorded for the user in
// insertion order.
func (s *Service) userTransactions(ctx context.Context, userId string) ([]models.Transaction, error) {
	var (
		ledgerTxs []shared.V2Transaction
		cursor    *string
	)
	for {
		resp, err := s.client.Ledger.V2.ListTransactions(ctx, operations.V2ListTransactionsRequest{
			Ledger:   s.ledger,
			PageSize: ptrInt64(listPageSize),
			Cursor:   cursor,
			RequestBody: matchAll(map[string]string{
				"entity_type": entityTransaction,
				"user_id":     userId,
			}),
		})
		if err != nil {
			zap.L().Error("Failed to list transactions", zap.String("user_id", userId), zap.Error(err))
			return nil, fmt.Errorf("unable to list transactions: %w", err)
		}

		page := resp.V2TransactionsCursorResponse.Cursor
		ledgerTxs = append(ledgerTxs, page.Data...)
		if !page.HasMore || page.Next == nil {
			break
		}
		cursor = page.Next
	}

	// The ledger lists newest first.
	slices.Reverse(ledgerTxs)

	transactions := make([]models.Transaction, 0, len(ledgerTxs))
	for i := range ledgerTxs {
		if ledgerTxs[i].Reverted {
			continue
		}
		t, err := ledgerTxToTransaction(&ledgerTxs[i], userId)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

func ledgerTxToTransaction(tx *shared.V2Transaction, userId string) (models.Transaction, error) {
	meta := tx.Metadata

	id := meta["transaction_id"]
	if id == "" && tx.Reference != nil {
		id = *tx.Reference
	}

	t := models.Transaction{
		Id:        id,
		UserId:    userId,
		AccountId: meta["account_id"],
		Merchant:  meta["merchant"],
		CreatedAt: tx.Timestamp,
	}

	date, err := time.Parse(dateLayout, meta["date"])
	if err != nil {
		date = tx.Timestamp.UTC().Truncate(24 * time.Hour)
	}
	t.Date = date

	if raw := meta["amount"]; raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to parse amount '%s' for transaction %s: %w", raw, id, err)
		}
		t.Amount = amount
	} else {
		t.Amount = amountFromPostings(tx.Postings, bankAccountAddress(userId, t.AccountId))
	}

	if category := meta["category"]; category != "" {
		t.Category = &category
	}

	return t, nil
}

// amountFromPostings derives the signed amount seen by address.
func amountFromPostings(postings []shared.V2Posting, address string) decimal.Decimal {
	amount := decimal.Zero
	for _, p := range postings {
		if p.Asset != formanceAsset() {
			continue
		}
		switch address {
		case p.Source:
			amount = amount.Sub(bigIntToDecimal(p.Amount))
		case p.Destination:
			amount = amount.Add(bigIntToDecimal(p.Amount))
		}
	}
	return amount
}

// filterTransactions applies every set field of filter, keeping input order.
func filterTransactions(transactions []models.Transaction, filter store.TransactionFilter) []models.Transaction {
	merchant := strings.ToLower(filter.Merchant)

	matched := make([]models.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if filter.UserId != "" && t.UserId != filter.UserId {
			continue
		}
		if filter.StartDate != nil && t.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && t.Date.After(*filter.EndDate) {
			continue
		}
		if filter.Category != "" && (t.Category == nil || *t.Category != filter.Category) {
			continue
		}
		if merchant != "" && !strings.Contains(strings.ToLower(t.Merchant), merchant) {
			continue
		}
		matched = append(matched, t)
	}
	return matched
}

func pageOf(transactions []models.Transaction, filter store.TransactionFilter) []models.Transaction {
	limit := filter.Limit
	if limit <= 0 {
		limit = store.DefaultPageSize
		filter.Limit = limit
	}

	start := filter.Offset()
	if start >= len(transactions) {
		return []models.Transaction{}
	}
	end := min(start+limit, len(transactions))
	return transactions[start:end]
}
