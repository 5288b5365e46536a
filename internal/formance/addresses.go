package formance

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Every amount is posted in USD cents.
const (
	currencySymbol    = "USD"
	currencyPrecision = 2
)

const (
	entityProfile     = "profile"
	entityBankAccount = "bank_account"
	entityTransaction = "bank_transaction"
)

// formanceAsset returns the Formance UMN notation, e.g. "USD/2".
func formanceAsset() string {
	return fmt.Sprintf("%s/%d", currencySymbol, currencyPrecision)
}

// toMinorUnits converts a decimal amount to the ledger's smallest unit.
// The sign is dropped; direction is carried by the posting.
func toMinorUnits(amount decimal.Decimal) string {
	return amount.Abs().Shift(currencyPrecision).BigInt().String()
}

// bigIntToDecimal converts a smallest-unit amount back to a decimal.
func bigIntToDecimal(raw *big.Int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -currencyPrecision)
}

// addressSegment maps an arbitrary id onto the characters Formance accepts in
// an account address segment ([a-zA-Z0-9_]). The raw id is kept in metadata.
func addressSegment(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func profileAddress(userId string) string {
	return "users:" + addressSegment(userId)
}

func bankAccountAddress(userId, accountId string) string {
	return profileAddress(userId) + ":accounts:" + addressSegment(accountId)
}

// merchantSegment lowercases the merchant name so "Netflix" and "NETFLIX"
// settle into the same ledger account.
func merchantSegment(merchant string) string {
	return addressSegment(strings.ToLower(strings.TrimSpace(merchant)))
}

// matchAll builds a ledger query requiring every metadata key to equal its value.
func matchAll(metadata map[string]string) map[string]any {
	clauses := make([]any, 0, len(metadata))
	for key, value := range metadata {
		clauses = append(clauses, map[string]any{
			"$match": map[string]any{"metadata[" + key + "]": value},
		})
	}
	if len(clauses) == 1 {
		return clauses[0].(map[string]any)
	}
	return map[string]any{"$and": clauses}
}
