package insights

import (
	"slices"
	"strings"

	"spendsense-go/internal/models"

	"github.com/shopspring/decimal"
)

const minSubscriptionOccurrences = 3

var amountTolerance = decimal.RequireFromString("0.10")

type Subscription struct {
	Merchant string
	Amount   decimal.Decimal // mean charge, unrounded
}

type SubscriptionSummary struct {
	TotalMonthly  decimal.Decimal
	Subscriptions []Subscription
}

// DetectSubscriptions finds merchants charged at least three times in w where
// every charge is within 10% of the merchant's mean charge. Merchants are
// matched by exact name. Results are ordered by amount descending, ties by
// merchant ascending.
func DetectSubscriptions(transactions []models.Transaction, w Window) SubscriptionSummary {
	charges := make(map[string][]decimal.Decimal)
	for _, tx := range transactions {
		if !tx.IsDebit() || !w.Contains(tx.Date) {
			continue
		}
		charges[tx.Merchant] = append(charges[tx.Merchant], tx.Amount.Abs())
	}

	total := decimal.Zero
	subscriptions := make([]Subscription, 0)
	for merchant, amounts := range charges {
		if len(amounts) < minSubscriptionOccurrences {
			continue
		}

		avg := decimal.Sum(amounts[0], amounts[1:]...).Div(decimal.NewFromInt(int64(len(amounts))))
		if !isConsistent(amounts, avg) {
			continue
		}

		subscriptions = append(subscriptions, Subscription{Merchant: merchant, Amount: avg})
		total = total.Add(avg)
	}

	slices.SortFunc(subscriptions, func(a, b Subscription) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Merchant, b.Merchant)
	})

	return SubscriptionSummary{TotalMonthly: total, Subscriptions: subscriptions}
}

// isConsistent rejects a zero mean outright.
func isConsistent(amounts []decimal.Decimal, avg decimal.Decimal) bool {
	if avg.IsZero() {
		return false
	}
	for _, amount := range amounts {
		if amount.Sub(avg).Abs().Div(avg).GreaterThan(amountTolerance) {
			return false
		}
	}
	return true
}
