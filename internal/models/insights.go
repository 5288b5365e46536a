package models

// InsightsResponse is the payload returned by the insights query.
// Money is rounded to 2 decimals and utilization to 1 before it lands here.
type InsightsResponse struct {
	Data InsightsData `json:"data"`
	Meta InsightsMeta `json:"meta"`
}

type InsightsData struct {
	Summary SpendSummaryEntry `json:"summary"`
	Charts  InsightsCharts    `json:"charts"`
}

type SpendSummaryEntry struct {
	TotalSpending     float64  `json:"total_spending"`
	AverageDailySpend float64  `json:"average_daily_spend"`
	TopCategory       *string  `json:"top_category"`
	SavingsRate       *float64 `json:"savings_rate"`
}

type InsightsCharts struct {
	SpendingByCategory []CategorySpendEntry `json:"spending_by_category"`
	CreditUtilization  []UtilizationEntry   `json:"credit_utilization"`
	Subscriptions      SubscriptionsEntry   `json:"subscriptions"`
}

type CategorySpendEntry struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// UtilizationEntry is one (week, card) point. Date is the bucket end date.
type UtilizationEntry struct {
	Date        string  `json:"date"`
	Utilization float64 `json:"utilization"`
	Balance     float64 `json:"balance"`
	Limit       float64 `json:"limit"`
}

type SubscriptionsEntry struct {
	TotalMonthly  float64             `json:"total_monthly"`
	Subscriptions []SubscriptionEntry `json:"subscriptions"`
}

type SubscriptionEntry struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
}

type InsightsMeta struct {
	Timestamp string `json:"timestamp"`
	Period    string `json:"period"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
