package models

// AnalyticsReport holds dataset-wide metrics computed over every
// customer's summary — the batch-report CLI output.
type AnalyticsReport struct {
	TotalCustomers int
	TotalOrders    int
	TotalRevenue   float64
	AvgEngagement  float64
	TierCounts     map[LoyaltyStatus]int
	TopSpenders    []*CustomerSummary
	TopItems       []FavoriteItem
}
