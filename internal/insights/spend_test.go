package insights

import (
	"reflect"
	"testing"

	"spendsense-go/internal/models"

	"github.com/shopspring/decimal"
)

func category(s string) *string { return &s }

func tx(date, merchant, amount string, cat *string) models.Transaction {
	return models.Transaction{
		Id:       date + merchant + amount,
		UserId:   "user1",
		Date:     day(date),
		Merchant: merchant,
		Amount:   decimal.RequireFromString(amount),
		Category: cat,
	}
}

func TestSummarize(t *testing.T) {
	w, _ := ResolveWindow(Period30Days, today)

	txs := []models.Transaction{
		tx("2026-09-20", "Whole Foods", "-120.50", category("Food & Drink")),
		tx("2026-09-22", "Chipotle", "-14.50", category("Food & Drink")),
		tx("2026-10-01", "Amazon", "-90.00", category("Shopping")),
		tx("2026-10-02", "ATM", "-40.00", nil),
		tx("2026-10-03", "Payroll", "2500.00", category("Income")),
		tx("2026-08-01", "Old Purchase", "-999.00", category("Shopping")),
		tx("2026-10-16", "Future Purchase", "-999.00", category("Shopping")),
	}

	summary := Summarize(txs, w)

	if !summary.TotalSpend.Equal(decimal.RequireFromString("265.00")) {
		t.Errorf("Expected total 265.00, got %s", summary.TotalSpend)
	}
	expectedAvg := decimal.RequireFromString("265").Div(decimal.NewFromInt(30))
	if !summary.AverageDailySpend.Equal(expectedAvg) {
		t.Errorf("Expected average %s, got %s", expectedAvg, summary.AverageDailySpend)
	}
	if summary.TopCategory == nil || *summary.TopCategory != "Food & Drink" {
		t.Errorf("Expected top category Food & Drink, got %v", summary.TopCategory)
	}
	if summary.SavingsRate != nil {
		t.Error("Savings rate must never be populated")
	}

	if len(summary.CategoryBreakdown) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(summary.CategoryBreakdown))
	}
	if summary.CategoryBreakdown[0].Category != "Food & Drink" || !summary.CategoryBreakdown[0].Amount.Equal(decimal.NewFromInt(135)) {
		t.Errorf("Unexpected first category: %+v", summary.CategoryBreakdown[0])
	}
	if summary.CategoryBreakdown[1].Category != "Shopping" || !summary.CategoryBreakdown[1].Amount.Equal(decimal.NewFromInt(90)) {
		t.Errorf("Unexpected second category: %+v", summary.CategoryBreakdown[1])
	}
}

func TestSummarize_Empty(t *testing.T) {
	w, _ := ResolveWindow(Period30Days, today)
	summary := Summarize(nil, w)

	if !summary.TotalSpend.IsZero() || !summary.AverageDailySpend.IsZero() {
		t.Errorf("Expected zero totals, got %s / %s", summary.TotalSpend, summary.AverageDailySpend)
	}
	if summary.TopCategory != nil {
		t.Errorf("Expected nil top category, got %s", *summary.TopCategory)
	}
	if summary.CategoryBreakdown == nil || len(summary.CategoryBreakdown) != 0 {
		t.Errorf("Expected empty non-nil breakdown, got %v", summary.CategoryBreakdown)
	}
}

func TestSummarize_ZeroDayWindow(t *testing.T) {
	w := Window{Period: "custom", Start: today, End: today}
	summary := Summarize([]models.Transaction{tx("2026-10-15", "Cafe", "-4.50", nil)}, w)

	if !summary.TotalSpend.Equal(decimal.RequireFromString("4.50")) {
		t.Errorf("Expected total 4.50, got %s", summary.TotalSpend)
	}
	if !summary.AverageDailySpend.IsZero() {
		t.Errorf("Expected zero average for zero-day window, got %s", summary.AverageDailySpend)
	}
}

func TestSummarize_CreditsNeverReduceSpend(t *testing.T) {
	w, _ := ResolveWindow(Period30Days, today)
	debits := []models.Transaction{
		tx("2026-10-01", "Store", "-50.00", category("Shopping")),
		tx("2026-10-02", "Store", "-25.00", category("Shopping")),
	}
	withCredits := append(append([]models.Transaction{}, debits...),
		tx("2026-10-03", "Refund", "75.00", category("Shopping")),
		tx("2026-10-04", "Payroll", "1000.00", nil),
		tx("2026-10-05", "Zero", "0", category("Shopping")),
	)

	base := Summarize(debits, w)
	got := Summarize(withCredits, w)

	if got.TotalSpend.IsNegative() {
		t.Fatalf("Total spend must be non-negative, got %s", got.TotalSpend)
	}
	if !got.TotalSpend.Equal(base.TotalSpend) {
		t.Errorf("Credits changed total spend: %s vs %s", got.TotalSpend, base.TotalSpend)
	}
}

func TestSummarize_CategoryPartition(t *testing.T) {
	w, _ := ResolveWindow(Period30Days, today)

	sumBreakdown := func(s SpendSummary) decimal.Decimal {
		total := decimal.Zero
		for _, c := range s.CategoryBreakdown {
			total = total.Add(c.Amount)
		}
		return total
	}

	allCategorized := []models.Transaction{
		tx("2026-10-01", "A", "-10.00", category("Bills")),
		tx("2026-10-02", "B", "-20.00", category("Shopping")),
	}
	s := Summarize(allCategorized, w)
	if !sumBreakdown(s).Equal(s.TotalSpend) {
		t.Errorf("Expected breakdown sum == total when every debit is categorized")
	}

	someUncategorized := append(allCategorized, tx("2026-10-03", "C", "-5.00", nil))
	s = Summarize(someUncategorized, w)
	if !sumBreakdown(s).LessThan(s.TotalSpend) {
		t.Errorf("Expected breakdown sum < total when a debit has no category")
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	w, _ := ResolveWindow(Period90Days, today)
	txs := []models.Transaction{
		tx("2026-08-01", "A", "-10.00", category("Bills")),
		tx("2026-09-02", "B", "-20.00", category("Shopping")),
		tx("2026-10-03", "C", "-20.00", category("Entertainment")),
		tx("2026-10-04", "D", "-7.25", nil),
	}

	first := Summarize(txs, w)
	second := Summarize(txs, w)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Summarize is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestSummarize_TieBreakByCategoryName(t *testing.T) {
	w, _ := ResolveWindow(Period30Days, today)
	txs := []models.Transaction{
		tx("2026-10-01", "Gym", "-30.00", category("Health")),
		tx("2026-10-02", "Cinema", "-30.00", category("Entertainment")),
		tx("2026-10-03", "Bus", "-30.00", category("Transportation")),
	}

	for i := 0; i < 20; i++ {
		summary := Summarize(txs, w)
		if *summary.TopCategory != "Entertainment" {
			t.Fatalf("Expected Entertainment on tie, got %s", *summary.TopCategory)
		}
		names := []string{
			summary.CategoryBreakdown[0].Category,
			summary.CategoryBreakdown[1].Category,
			summary.CategoryBreakdown[2].Category,
		}
		if !reflect.DeepEqual(names, []string{"Entertainment", "Health", "Transportation"}) {
			t.Fatalf("Unexpected tie order: %v", names)
		}
	}
}

func TestSummarize_EmptyCategoryCountsTowardTotalOnly(t *testing.T) {
	w, _ := ResolveWindow(Period30Days, today)

	txs := []models.Transaction{
		tx("2026-10-01", "Corner Store", "-500.00", category("")),
		tx("2026-10-02", "Cafe", "-12.00", category("Dining")),
	}

	summary := Summarize(txs, w)

	if !summary.TotalSpend.Equal(decimal.RequireFromString("512.00")) {
		t.Errorf("Expected total 512.00, got %s", summary.TotalSpend)
	}
	if len(summary.CategoryBreakdown) != 1 || summary.CategoryBreakdown[0].Category != "Dining" {
		t.Fatalf("Expected only Dining in breakdown, got %+v", summary.CategoryBreakdown)
	}
	if summary.TopCategory == nil || *summary.TopCategory != "Dining" {
		t.Errorf("Expected top category Dining, got %v", summary.TopCategory)
	}
}
