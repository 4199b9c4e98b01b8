package models

import "time"

// LoyaltyStatus is the customer's loyalty tier.
type LoyaltyStatus string

const (
	LoyaltyNew     LoyaltyStatus = "NEW"
	LoyaltyRegular LoyaltyStatus = "REGULAR"
	// LoyaltyVIP is a declared tier that no current rule assigns.
	// Kept so downstream consumers can rely on the full value set.
	LoyaltyVIP LoyaltyStatus = "VIP"
)

// OrderLineRecord is one row of the source table, all fields kept as
// sourced. Numeric and date fields are parsed lazily by the summary
// engine; a record is never mutated after parsing.
type OrderLineRecord struct {
	CustomerID      string
	CustomerName    string
	OrderID         string
	OrderNumber     string
	BusinessDate    string
	ItemName        string
	ItemUnitAmount  string
	ItemAmountTotal string
	ItemQuantity    string
	TransactionID   string
}

// OrderKey returns the record's order identity: ORDER_ID when present,
// otherwise ORDER_NUMBER.
func (r *OrderLineRecord) OrderKey() string {
	if r.OrderID != "" {
		return r.OrderID
	}
	return r.OrderNumber
}

// FavoriteItem is one entry of a summary's item ranking.
type FavoriteItem struct {
	Name  string
	Count float64
	Spend float64
	Share float64
}

// OrderEntry is one order in a summary's history, built from a
// representative line of that order. A zero Date means the business
// date did not parse.
type OrderEntry struct {
	Date     time.Time
	OrderID  string
	ItemName string
	Qty      float64
	Amount   float64
}

// CustomerSummary is the derived, immutable analytics snapshot for one
// customer. It is recomputed from scratch on every query.
type CustomerSummary struct {
	CustomerID        string
	CustomerName      string
	TotalVisits       int
	TotalSpend        float64
	LastVisit         *time.Time
	AvgSpendPerVisit  float64
	TotalItemsOrdered float64
	LoyaltyStatus     LoyaltyStatus
	CLV               float64
	EngagementScore   int
	FavoriteItems     []FavoriteItem
	OrderHistory      []OrderEntry
}
