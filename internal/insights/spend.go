package insights

import (
	"slices"
	"strings"

	"spendsense-go/internal/models"

	"github.com/shopspring/decimal"
)

type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// SpendSummary aggregates debits inside a window. Amounts are unrounded.
type SpendSummary struct {
	TotalSpend        decimal.Decimal
	AverageDailySpend decimal.Decimal
	TopCategory       *string
	CategoryBreakdown []CategoryAmount
	// SavingsRate is never populated: there is no income detection.
	SavingsRate *decimal.Decimal
}

// Summarize totals debits within w and breaks them down by category.
// Transactions without a category count toward the total only. Categories are
// ordered by amount descending, ties by name ascending, and the first one is
// the top category.
func Summarize(transactions []models.Transaction, w Window) SpendSummary {
	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)

	for _, tx := range transactions {
		if !tx.IsDebit() || !w.Contains(tx.Date) {
			continue
		}
		spend := tx.Amount.Abs()
		total = total.Add(spend)

		if tx.Category == nil || *tx.Category == "" {
			continue
		}
		byCategory[*tx.Category] = byCategory[*tx.Category].Add(spend)
	}

	breakdown := make([]CategoryAmount, 0, len(byCategory))
	for category, amount := range byCategory {
		breakdown = append(breakdown, CategoryAmount{Category: category, Amount: amount})
	}
	slices.SortFunc(breakdown, func(a, b CategoryAmount) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})

	summary := SpendSummary{
		TotalSpend:        total,
		AverageDailySpend: decimal.Zero,
		CategoryBreakdown: breakdown,
	}
	if days := w.Days(); days > 0 {
		summary.AverageDailySpend = total.Div(decimal.NewFromInt(int64(days)))
	}
	if len(breakdown) > 0 {
		top := breakdown[0].Category
		summary.TopCategory = &top
	}

	return summary
}
