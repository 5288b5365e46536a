/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"spendsense-go/internal/common"
	"spendsense-go/internal/config"
	"spendsense-go/internal/insights"
	"spendsense-go/internal/models"

	"go.uber.org/zap"
)

type reportStats struct {
	totalProfiles  int
	reported       int
	withSpending   int
	subscriptions  int
	failedProfiles int
}

func printProfileHeader(profile models.Profile, resp *models.InsightsResponse) {
	fmt.Printf("\n┌─ Profile: %s (%s)\n", profile.Name, profile.Email)
	fmt.Printf("│  ID: %s\n", profile.UserId)
	fmt.Printf("│  Window: %s (%s → %s)\n", resp.Meta.Period, resp.Meta.StartDate, resp.Meta.EndDate)
	common.PrintBoxSeparator(78)
}

func printSummary(summary models.SpendSummaryEntry) {
	top := "none"
	if summary.TopCategory != nil {
		top = *summary.TopCategory
	}
	fmt.Printf("│  Total spending:   %s\n", common.FormatMoney(summary.TotalSpending))
	fmt.Printf("│  Daily average:    %s\n", common.FormatMoney(summary.AverageDailySpend))
	fmt.Printf("│  Top category:     %s\n", top)
}

func printCategories(categories []models.CategorySpendEntry) {
	if len(categories) == 0 {
		return
	}
	common.PrintBoxSeparator(78)
	for _, c := range categories {
		fmt.Printf("│  %-18s %12s\n", c.Category, common.FormatMoney(c.Amount))
	}
}

// printUtilization shows the most recent point of each card.
func printUtilization(points []models.UtilizationEntry, endDate string) {
	var latest []models.UtilizationEntry
	for _, p := range points {
		if p.Date == endDate {
			latest = append(latest, p)
		}
	}
	if len(latest) == 0 {
		return
	}
	common.PrintBoxSeparator(78)
	for _, p := range latest {
		fmt.Printf("│  Card utilization %s %5.1f%% (%s of %s)\n",
			common.Bar(p.Utilization, 20),
			p.Utilization,
			common.FormatMoney(p.Balance),
			common.FormatMoney(p.Limit))
	}
}

func printSubscriptions(subs models.SubscriptionsEntry) {
	common.PrintBoxSeparator(78)
	if len(subs.Subscriptions) == 0 {
		fmt.Printf("%s No recurring charges detected\n", common.BoxPrefix(true))
		return
	}
	fmt.Printf("│  Subscriptions: %s / month\n", common.FormatMoney(subs.TotalMonthly))
	for i, s := range subs.Subscriptions {
		isLast := i == len(subs.Subscriptions)-1
		fmt.Printf("%s %-18s %12s\n", common.BoxPrefix(isLast), s.Merchant, common.FormatMoney(s.Amount))
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific profile email (optional)")
	periodFlag := flag.String("period", insights.Period30Days, "Analysis window: 30d or 90d")
	jsonFlag := flag.Bool("json", false, "Print raw JSON payloads instead of the report")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	stores, err := common.InitializeStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer stores.Close()

	profiles, err := common.LoadProfiles(ctx, stores.Store, *emailFlag)
	if err != nil {
		logger.Fatal("Failed to load profiles", zap.Error(err))
	}

	engine := insights.NewEngine(stores.Store, stores.Store)
	stats := reportStats{}

	if !*jsonFlag {
		common.PrintHeader(fmt.Sprintf("SPENDING INSIGHTS (%s)", *periodFlag), common.DefaultWidth)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	for _, profile := range profiles {
		stats.totalProfiles++

		resp, err := engine.GetInsights(ctx, profile.UserId, *periodFlag)
		if err != nil {
			logger.Error("Failed to compute insights",
				zap.String("user_id", profile.UserId),
				zap.Error(err))
			stats.failedProfiles++
			continue
		}
		stats.reported++
		if resp.Data.Summary.TotalSpending > 0 {
			stats.withSpending++
		}
		stats.subscriptions += len(resp.Data.Charts.Subscriptions.Subscriptions)

		if *jsonFlag {
			if err := encoder.Encode(resp); err != nil {
				logger.Error("Failed to encode insights", zap.Error(err))
			}
			continue
		}

		printProfileHeader(profile, resp)
		printSummary(resp.Data.Summary)
		printCategories(resp.Data.Charts.SpendingByCategory)
		printUtilization(resp.Data.Charts.CreditUtilization, resp.Meta.EndDate)
		printSubscriptions(resp.Data.Charts.Subscriptions)
	}

	if !*jsonFlag {
		summary := fmt.Sprintf("SUMMARY: %d of %d profiles reported, %d with spending, %d subscriptions detected",
			stats.reported, stats.totalProfiles, stats.withSpending, stats.subscriptions)
		common.PrintFooter(summary, common.DefaultWidth)
	}

	logger.Info("Insights report completed",
		zap.Int("profiles", stats.totalProfiles),
		zap.Int("reported", stats.reported),
		zap.Int("failed", stats.failedProfiles))
}
