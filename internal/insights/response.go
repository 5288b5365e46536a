package insights

import (
	"time"

	"spendsense-go/internal/models"

	"github.com/shopspring/decimal"
)

// Response rounds money to 2 decimals and shapes the report for serialization.
// Slices are always non-nil so they encode as [] rather than null.
func (r *Report) Response() *models.InsightsResponse {
	byCategory := make([]models.CategorySpendEntry, 0, len(r.Summary.CategoryBreakdown))
	for _, c := range r.Summary.CategoryBreakdown {
		byCategory = append(byCategory, models.CategorySpendEntry{
			Category: c.Category,
			Amount:   money(c.Amount),
		})
	}

	utilization := make([]models.UtilizationEntry, 0, len(r.Utilization))
	for _, p := range r.Utilization {
		utilization = append(utilization, models.UtilizationEntry{
			Date:        p.WeekEnd.Format(DateLayout),
			Utilization: p.UtilizationPct.InexactFloat64(),
			Balance:     money(p.Balance),
			Limit:       money(p.Limit),
		})
	}

	subscriptions := make([]models.SubscriptionEntry, 0, len(r.Subscriptions.Subscriptions))
	for _, s := range r.Subscriptions.Subscriptions {
		subscriptions = append(subscriptions, models.SubscriptionEntry{
			Merchant: s.Merchant,
			Amount:   money(s.Amount),
		})
	}

	var topCategory *string
	if r.Summary.TopCategory != nil {
		top := *r.Summary.TopCategory
		topCategory = &top
	}

	return &models.InsightsResponse{
		Data: models.InsightsData{
			Summary: models.SpendSummaryEntry{
				TotalSpending:     money(r.Summary.TotalSpend),
				AverageDailySpend: money(r.Summary.AverageDailySpend),
				TopCategory:       topCategory,
				SavingsRate:       nil,
			},
			Charts: models.InsightsCharts{
				SpendingByCategory: byCategory,
				CreditUtilization:  utilization,
				Subscriptions: models.SubscriptionsEntry{
					TotalMonthly:  money(r.Subscriptions.TotalMonthly),
					Subscriptions: subscriptions,
				},
			},
		},
		Meta: models.InsightsMeta{
			Timestamp: r.GeneratedAt.UTC().Format(time.RFC3339Nano),
			Period:    r.Window.Period,
			StartDate: r.Window.Start.Format(DateLayout),
			EndDate:   r.Window.End.Format(DateLayout),
		},
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
