package services

import (
	"fmt"
	"sort"
	"strings"

	"customer-analytics/models"
	"customer-analytics/utils"
)

type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate computes dataset-wide metrics over the per-customer
// summaries produced by the batch run.
func (s *ReportService) Generate(summaries []*models.CustomerSummary) *models.AnalyticsReport {
	report := &models.AnalyticsReport{
		TierCounts: make(map[models.LoyaltyStatus]int),
	}

	if len(summaries) == 0 {
		return report
	}

	report.TotalCustomers = len(summaries)

	byItem := make(map[string]*models.FavoriteItem)
	var engagementTotal float64

	for _, sum := range summaries {
		report.TotalOrders += sum.TotalVisits
		report.TotalRevenue += sum.TotalSpend
		report.TierCounts[sum.LoyaltyStatus]++
		engagementTotal += float64(sum.EngagementScore)

		for _, item := range sum.FavoriteItems {
			agg, ok := byItem[item.Name]
			if !ok {
				agg = &models.FavoriteItem{Name: item.Name}
				byItem[item.Name] = agg
			}
			agg.Count += item.Count
			agg.Spend += item.Spend
		}
	}
	report.AvgEngagement = round2(engagementTotal / float64(len(summaries)))

	// Top 5 spenders
	spenders := make([]*models.CustomerSummary, len(summaries))
	copy(spenders, summaries)
	sort.Slice(spenders, func(i, j int) bool {
		return spenders[i].TotalSpend > spenders[j].TotalSpend
	})
	if len(spenders) > 5 {
		spenders = spenders[:5]
	}
	report.TopSpenders = spenders

	// Top 5 items across all customers
	items := make([]models.FavoriteItem, 0, len(byItem))
	for _, agg := range byItem {
		items = append(items, *agg)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > 5 {
		items = items[:5]
	}
	report.TopItems = items

	return report
}

// PrintSummary writes one customer's analytics to the terminal.
func (s *ReportService) PrintSummary(sum *models.CustomerSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 CUSTOMER ANALYTICS — %s\033[0m\n", sum.CustomerID)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if sum.CustomerName != "" {
		fmt.Printf("  Name            : \033[1m%s\033[0m\n", sum.CustomerName)
	}
	fmt.Printf("  Total visits    : \033[1m%d\033[0m\n", sum.TotalVisits)
	fmt.Printf("  Total spend     : \033[1;32m$%.2f\033[0m\n", sum.TotalSpend)
	fmt.Printf("  Avg spend/visit : \033[1;32m$%.2f\033[0m\n", sum.AvgSpendPerVisit)
	fmt.Printf("  Items ordered   : \033[1m%.0f\033[0m\n", sum.TotalItemsOrdered)
	if sum.LastVisit != nil {
		fmt.Printf("  Last visit      : %s\n", sum.LastVisit.Format("2006-01-02"))
	} else {
		fmt.Printf("  Last visit      : unknown\n")
	}
	fmt.Printf("  Loyalty tier    : \033[1m%s\033[0m\n", sum.LoyaltyStatus)
	fmt.Printf("  Lifetime value  : \033[1;32m$%.2f\033[0m\n", sum.CLV)
	fmt.Printf("  Engagement      : \033[1m%d/100\033[0m\n", sum.EngagementScore)
	fmt.Println()

	fmt.Printf("\033[1;33m  Favorite Items\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(sum.FavoriteItems) == 0 {
		fmt.Printf("  No item data\n")
	} else {
		for i, item := range sum.FavoriteItems {
			fmt.Printf("  \033[1m%2d.\033[0m %-32s ×%-5.0f $%-8.2f %4.0f%%\n",
				i+1, truncate(item.Name, 30), item.Count, item.Spend, item.Share*100)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Order History (newest first)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(sum.OrderHistory) == 0 {
		fmt.Printf("  No orders\n")
	} else {
		for _, o := range sum.OrderHistory {
			date := "unknown"
			if !o.Date.IsZero() {
				date = o.Date.Format("2006-01-02")
			}
			fmt.Printf("  %s  %-14s %-28s ×%-4.0f $%.2f\n",
				date, truncate(o.OrderID, 14), truncate(o.ItemName, 26), o.Qty, o.Amount)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

// Print writes the dataset-wide batch report to the terminal.
func (s *ReportService) Print(r *models.AnalyticsReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 POS CUSTOMER INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Customers       : \033[1m%d\033[0m\n", r.TotalCustomers)
	fmt.Printf("  Orders          : \033[1m%d\033[0m\n", r.TotalOrders)
	fmt.Printf("  Revenue         : \033[1;32m$%.2f\033[0m\n", r.TotalRevenue)
	fmt.Printf("  Avg engagement  : \033[1m%.2f/100\033[0m\n", r.AvgEngagement)
	fmt.Println()

	fmt.Printf("\033[1;33m  Loyalty Tiers\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, tier := range []models.LoyaltyStatus{models.LoyaltyVIP, models.LoyaltyRegular, models.LoyaltyNew} {
		count := r.TierCounts[tier]
		bar := strings.Repeat("█", count)
		fmt.Printf("  %-8s %s (%d)\n", tier, bar, count)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Top Spenders\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopSpenders) == 0 {
		fmt.Printf("  No customers\n")
	} else {
		for i, c := range r.TopSpenders {
			label := c.CustomerID
			if c.CustomerName != "" {
				label = fmt.Sprintf("%s (%s)", c.CustomerID, truncate(c.CustomerName, 20))
			}
			fmt.Printf("  \033[1m%d.\033[0m %-36s \033[1;32m$%.2f\033[0m\n",
				i+1, truncate(label, 34), c.TotalSpend)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Most Ordered Items\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopItems) == 0 {
		fmt.Printf("  No item data\n")
	} else {
		for i, item := range r.TopItems {
			fmt.Printf("  \033[1m%d.\033[0m %-36s ×%-6.0f $%.2f\n",
				i+1, truncate(item.Name, 34), item.Count, item.Spend)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
