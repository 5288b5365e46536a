package insights

import (
	"time"

	"spendsense-go/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// UtilizationPoint is one card's utilization for one weekly bucket.
type UtilizationPoint struct {
	WeekEnd        time.Time
	AccountId      string
	UtilizationPct decimal.Decimal // rounded to 1 decimal
	Balance        decimal.Decimal // magnitude of the card balance
	Limit          decimal.Decimal
}

// TrackUtilization emits one point per weekly bucket per credit card, ordered
// by bucket and then by account input order. There are no balance snapshots,
// so each card's current balance and limit are reused for every bucket.
// Cards without a positive limit are skipped.
func TrackUtilization(accounts []models.Account, w Window) []UtilizationPoint {
	var cards []models.Account
	for _, account := range accounts {
		if account.AccountType != models.AccountTypeCreditCard {
			continue
		}
		if !account.Limit.Valid || !account.Limit.Decimal.IsPositive() {
			continue
		}
		cards = append(cards, account)
	}

	points := make([]UtilizationPoint, 0)
	if len(cards) == 0 {
		return points
	}

	for _, bucket := range w.Buckets() {
		for _, card := range cards {
			balance := card.Balance.Abs()
			points = append(points, UtilizationPoint{
				WeekEnd:        bucket.End,
				AccountId:      card.Id,
				UtilizationPct: balance.Mul(hundred).Div(card.Limit.Decimal).Round(1),
				Balance:        balance,
				Limit:          card.Limit.Decimal,
			})
		}
	}

	return points
}
