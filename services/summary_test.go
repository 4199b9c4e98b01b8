package services

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"customer-analytics/models"
)

// fixedNow keeps engagement deterministic across test runs.
var fixedNow = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestSummarizer() *Summarizer {
	return NewSummarizer(Options{Now: func() time.Time { return fixedNow }})
}

func orderRow(orderID, date, item, amount, qty string) models.OrderLineRecord {
	return models.OrderLineRecord{
		CustomerID:      "C1",
		CustomerName:    "Alice",
		OrderID:         orderID,
		BusinessDate:    date,
		ItemName:        item,
		ItemAmountTotal: amount,
		ItemQuantity:    qty,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarizeEndToEnd(t *testing.T) {
	s := newTestSummarizer()
	records := []models.OrderLineRecord{
		orderRow("O1", "2024-01-01", "Coffee", "5", "1"),
		orderRow("O2", "2024-01-08", "Coffee", "5", "1"),
	}

	sum := s.Summarize("C1", records)

	if sum.TotalVisits != 2 {
		t.Errorf("TotalVisits: got %d, want 2", sum.TotalVisits)
	}
	if !almostEqual(sum.TotalSpend, 10) {
		t.Errorf("TotalSpend: got %v, want 10", sum.TotalSpend)
	}
	if !almostEqual(sum.AvgSpendPerVisit, 5) {
		t.Errorf("AvgSpendPerVisit: got %v, want 5", sum.AvgSpendPerVisit)
	}
	if sum.TotalItemsOrdered != 2 {
		t.Errorf("TotalItemsOrdered: got %v, want 2", sum.TotalItemsOrdered)
	}
	if len(sum.FavoriteItems) != 1 {
		t.Fatalf("FavoriteItems: got %d entries, want 1", len(sum.FavoriteItems))
	}
	fav := sum.FavoriteItems[0]
	if fav.Name != "Coffee" || fav.Count != 2 || !almostEqual(fav.Spend, 10) || !almostEqual(fav.Share, 1) {
		t.Errorf("FavoriteItems[0]: got %+v", fav)
	}
	if sum.LoyaltyStatus != models.LoyaltyNew {
		t.Errorf("LoyaltyStatus: got %s, want NEW", sum.LoyaltyStatus)
	}
	if !almostEqual(sum.CLV, 12) {
		t.Errorf("CLV: got %v, want 12", sum.CLV)
	}
	if sum.CustomerName != "Alice" {
		t.Errorf("CustomerName: got %q, want Alice", sum.CustomerName)
	}
	if sum.LastVisit == nil || !sum.LastVisit.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LastVisit: got %v, want 2024-01-08", sum.LastVisit)
	}
	// Two visits over a 7-day span, last visit more than 30 days
	// before the clock: 2/7×120 rounds to 34.
	if sum.EngagementScore != 34 {
		t.Errorf("EngagementScore: got %d, want 34", sum.EngagementScore)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	s := newTestSummarizer()
	records := []models.OrderLineRecord{
		orderRow("O1", "2024-01-01", "Coffee", "5", "1"),
		orderRow("O2", "2024-01-08", "Tea", "3", "2"),
		orderRow("O2", "2024-01-08", "Muffin", "4", "1"),
	}

	first := s.Summarize("C1", records)
	second := s.Summarize("C1", records)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("summaries differ:\n first: %+v\nsecond: %+v", first, second)
	}
}

func TestSummarizeNoOrders(t *testing.T) {
	s := newTestSummarizer()
	sum := s.Summarize("C1", nil)

	if sum.TotalVisits != 0 {
		t.Errorf("TotalVisits: got %d, want 0", sum.TotalVisits)
	}
	if sum.AvgSpendPerVisit != 0 {
		t.Errorf("AvgSpendPerVisit: got %v, want 0", sum.AvgSpendPerVisit)
	}
	if sum.EngagementScore != 0 {
		t.Errorf("EngagementScore: got %d, want 0", sum.EngagementScore)
	}
	if sum.LastVisit != nil {
		t.Errorf("LastVisit: got %v, want nil", sum.LastVisit)
	}
	if sum.CustomerName != "" {
		t.Errorf("CustomerName: got %q, want empty", sum.CustomerName)
	}
}

func TestFavoriteItemsRanking(t *testing.T) {
	s := newTestSummarizer()
	var records []models.OrderLineRecord
	add := func(item string, times int) {
		for i := 0; i < times; i++ {
			records = append(records, orderRow("O1", "2024-01-01", item, "2", "1"))
		}
	}
	add("A", 5)
	add("B", 5)
	add("C", 3)

	sum := s.Summarize("C1", records)
	if len(sum.FavoriteItems) != 3 {
		t.Fatalf("FavoriteItems: got %d entries, want 3", len(sum.FavoriteItems))
	}
	// A and B tie at 5; A was encountered first and must rank above B.
	want := []string{"A", "B", "C"}
	for i, name := range want {
		if sum.FavoriteItems[i].Name != name {
			t.Errorf("FavoriteItems[%d]: got %s, want %s", i, sum.FavoriteItems[i].Name, name)
		}
	}
	if !almostEqual(sum.FavoriteItems[2].Share, 3.0/13.0) {
		t.Errorf("C share: got %v, want %v", sum.FavoriteItems[2].Share, 3.0/13.0)
	}
}

func TestFavoriteItemsTopTenCutoff(t *testing.T) {
	s := newTestSummarizer()
	var records []models.OrderLineRecord
	for _, item := range []string{"I1", "I2", "I3", "I4", "I5", "I6", "I7", "I8", "I9", "I10", "I11"} {
		records = append(records, orderRow("O1", "2024-01-01", item, "1", "1"))
	}

	sum := s.Summarize("C1", records)
	if len(sum.FavoriteItems) != 10 {
		t.Fatalf("FavoriteItems: got %d entries, want 10", len(sum.FavoriteItems))
	}
	for _, item := range sum.FavoriteItems {
		if item.Name == "I11" {
			t.Error("I11 must be cut off by the top-10 limit")
		}
	}
}

func TestBlankItemNameBecomesUnknown(t *testing.T) {
	s := newTestSummarizer()
	records := []models.OrderLineRecord{
		orderRow("O1", "2024-01-01", "   ", "2", "1"),
	}
	sum := s.Summarize("C1", records)
	if len(sum.FavoriteItems) != 1 || sum.FavoriteItems[0].Name != "Unknown" {
		t.Errorf("FavoriteItems: got %+v, want one Unknown entry", sum.FavoriteItems)
	}
}

func TestSpendAndQuantityFallbacks(t *testing.T) {
	s := newTestSummarizer()
	tests := []struct {
		name      string
		rec       models.OrderLineRecord
		wantSpend float64
		wantItems float64
	}{
		{
			"total amount wins",
			models.OrderLineRecord{OrderID: "O1", ItemAmountTotal: "9.50", ItemUnitAmount: "5", ItemQuantity: "2"},
			9.50, 2,
		},
		{
			"unit amount fallback",
			models.OrderLineRecord{OrderID: "O1", ItemAmountTotal: "n/a", ItemUnitAmount: "4.25", ItemQuantity: "1"},
			4.25, 1,
		},
		{
			"neither parses",
			models.OrderLineRecord{OrderID: "O1", ItemAmountTotal: "abc", ItemUnitAmount: ""},
			0, 1,
		},
		{
			"quantity defaults to one",
			models.OrderLineRecord{OrderID: "O1", ItemAmountTotal: "3", ItemQuantity: "many"},
			3, 1,
		},
	}

	for _, tt := range tests {
		sum := s.Summarize("C1", []models.OrderLineRecord{tt.rec})
		if !almostEqual(sum.TotalSpend, tt.wantSpend) {
			t.Errorf("%s: TotalSpend got %v, want %v", tt.name, sum.TotalSpend, tt.wantSpend)
		}
		if !almostEqual(sum.TotalItemsOrdered, tt.wantItems) {
			t.Errorf("%s: TotalItemsOrdered got %v, want %v", tt.name, sum.TotalItemsOrdered, tt.wantItems)
		}
	}
}

func TestMultiLineOrdersCountOneVisit(t *testing.T) {
	s := newTestSummarizer()
	records := []models.OrderLineRecord{
		orderRow("O1", "2024-01-01", "Coffee", "5", "1"),
		orderRow("O1", "2024-01-01", "Muffin", "4", "1"),
		{OrderNumber: "N2", BusinessDate: "2024-01-02", ItemName: "Tea", ItemAmountTotal: "3", ItemQuantity: "1"},
	}

	sum := s.Summarize("C1", records)
	if sum.TotalVisits != 2 {
		t.Errorf("TotalVisits: got %d, want 2 (order number is the fallback identity)", sum.TotalVisits)
	}
}

func TestLoyaltyThreshold(t *testing.T) {
	records := []models.OrderLineRecord{
		orderRow("O1", "2024-01-01", "Coffee", "5", "1"),
		orderRow("O2", "2024-01-02", "Coffee", "5", "1"),
		orderRow("O3", "2024-01-03", "Coffee", "5", "1"),
	}

	def := newTestSummarizer().Summarize("C1", records)
	if def.LoyaltyStatus != models.LoyaltyRegular {
		t.Errorf("default threshold: got %s, want REGULAR", def.LoyaltyStatus)
	}

	strict := NewSummarizer(Options{
		RegularVisitThreshold: 5,
		Now:                   func() time.Time { return fixedNow },
	}).Summarize("C1", records)
	if strict.LoyaltyStatus != models.LoyaltyNew {
		t.Errorf("threshold 5: got %s, want NEW", strict.LoyaltyStatus)
	}
}

// VIP is declared but no rule assigns it; even heavy activity stays
// REGULAR.
func TestVIPNeverAssigned(t *testing.T) {
	s := newTestSummarizer()
	var records []models.OrderLineRecord
	for i := 0; i < 50; i++ {
		records = append(records, orderRow(fmt.Sprintf("O%d", i), "2024-01-01", "Coffee", "100", "1"))
	}

	sum := s.Summarize("C1", records)
	if sum.LoyaltyStatus == models.LoyaltyVIP {
		t.Error("no rule may assign VIP")
	}
}

func TestOrderHistoryNewestFirst(t *testing.T) {
	s := newTestSummarizer()
	records := []models.OrderLineRecord{
		orderRow("O1", "2024-01-01", "Coffee", "5", "1"),
		orderRow("O3", "not a date", "Scone", "2", "1"),
		orderRow("O2", "2024-01-08", "Tea", "3", "1"),
		orderRow("O2", "2024-01-08", "Muffin", "4", "1"),
	}

	sum := s.Summarize("C1", records)
	if len(sum.OrderHistory) != 3 {
		t.Fatalf("OrderHistory: got %d entries, want 3", len(sum.OrderHistory))
	}
	if sum.OrderHistory[0].OrderID != "O2" || sum.OrderHistory[1].OrderID != "O1" {
		t.Errorf("order wrong: %s then %s", sum.OrderHistory[0].OrderID, sum.OrderHistory[1].OrderID)
	}
	// The representative line of O2 is its first, Tea.
	if sum.OrderHistory[0].ItemName != "Tea" {
		t.Errorf("representative item: got %s, want Tea", sum.OrderHistory[0].ItemName)
	}
	// Unparseable date sorts to the tail with a zero Date.
	last := sum.OrderHistory[2]
	if last.OrderID != "O3" || !last.Date.IsZero() {
		t.Errorf("tail entry: got %+v", last)
	}
}

func TestEngagementSingleVisitToday(t *testing.T) {
	s := NewSummarizer(Options{
		Now: func() time.Time { return time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC) },
	})
	records := []models.OrderLineRecord{
		orderRow("O1", "2024-01-08", "Coffee", "5", "1"),
	}

	sum := s.Summarize("C1", records)
	// frequency = 1/1 and recencyFactor = 1: the blend saturates the cap.
	if sum.EngagementScore != 100 {
		t.Errorf("EngagementScore: got %d, want 100", sum.EngagementScore)
	}
}

func TestEngagementBounds(t *testing.T) {
	s := newTestSummarizer()
	inputs := [][]models.OrderLineRecord{
		nil,
		{orderRow("O1", "garbage", "Coffee", "5", "1")},
		{orderRow("O1", "2010-06-01", "Coffee", "5", "1")},
		{
			orderRow("O1", "2024-02-29", "Coffee", "5", "1"),
			orderRow("O2", "2024-02-29", "Tea", "3", "1"),
			orderRow("O3", "2024-03-01", "Latte", "4", "1"),
		},
	}

	for i, records := range inputs {
		score := s.Summarize("C1", records).EngagementScore
		if score < 0 || score > 100 {
			t.Errorf("input %d: score %d out of [0,100]", i, score)
		}
	}
}

func TestEngagementNoParseableDates(t *testing.T) {
	s := newTestSummarizer()
	records := []models.OrderLineRecord{
		orderRow("O1", "soon", "Coffee", "5", "1"),
		orderRow("O2", "", "Tea", "3", "1"),
	}
	if score := s.Summarize("C1", records).EngagementScore; score != 0 {
		t.Errorf("EngagementScore: got %d, want 0", score)
	}
}
