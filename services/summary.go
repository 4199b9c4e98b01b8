package services

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"customer-analytics/models"
)

const (
	// DefaultRegularVisitThreshold is the visit count at which a
	// customer moves from NEW to REGULAR.
	DefaultRegularVisitThreshold = 3
	// DefaultRetentionFactor scales total spend into lifetime value.
	DefaultRetentionFactor = 1.2

	unknownItemName  = "Unknown"
	maxFavoriteItems = 10
)

// Options configures a Summarizer. Zero values fall back to the
// defaults above; Now defaults to time.Now.
type Options struct {
	RegularVisitThreshold int
	RetentionFactor       float64
	Now                   func() time.Time
}

// Summarizer computes customer summaries from grouped order-line
// records. Summarize is a pure function of its input and the clock;
// the same records always produce the same summary.
type Summarizer struct {
	opts Options
}

// NewSummarizer creates a Summarizer, filling in default options.
func NewSummarizer(opts Options) *Summarizer {
	if opts.RegularVisitThreshold <= 0 {
		opts.RegularVisitThreshold = DefaultRegularVisitThreshold
	}
	if opts.RetentionFactor == 0 {
		opts.RetentionFactor = DefaultRetentionFactor
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Summarizer{opts: opts}
}

// Summarize derives the full analytics snapshot for one customer from
// that customer's order-line records.
func (s *Summarizer) Summarize(customerID string, records []models.OrderLineRecord) *models.CustomerSummary {
	byOrder := make(map[string][]models.OrderLineRecord)
	var orderKeys []string

	type itemStats struct {
		count float64
		spend float64
	}
	byItem := make(map[string]*itemStats)
	var itemNames []string

	var totalSpend, totalItems float64
	var lastVisit *time.Time

	for _, r := range records {
		key := r.OrderKey()
		if _, ok := byOrder[key]; !ok {
			orderKeys = append(orderKeys, key)
		}
		byOrder[key] = append(byOrder[key], r)

		spend := lineSpend(&r)
		qty := lineQty(&r)
		totalSpend += spend
		totalItems += qty

		if date, ok := ParseBusinessDate(r.BusinessDate); ok {
			if lastVisit == nil || date.After(*lastVisit) {
				d := date
				lastVisit = &d
			}
		}

		name := strings.TrimSpace(r.ItemName)
		if name == "" {
			name = unknownItemName
		}
		st, ok := byItem[name]
		if !ok {
			st = &itemStats{}
			byItem[name] = st
			itemNames = append(itemNames, name)
		}
		st.count += qty
		st.spend += spend
	}

	totalVisits := len(byOrder)
	avgSpend := 0.0
	if totalVisits > 0 {
		avgSpend = totalSpend / float64(totalVisits)
	}

	// Rank favorites by count descending; ties keep first-encountered
	// order (stable sort over the encounter-ordered name list).
	favorites := make([]models.FavoriteItem, 0, len(itemNames))
	for _, name := range itemNames {
		st := byItem[name]
		share := 0.0
		if totalItems > 0 {
			share = st.count / totalItems
		}
		favorites = append(favorites, models.FavoriteItem{
			Name:  name,
			Count: st.count,
			Spend: st.spend,
			Share: share,
		})
	}
	sort.SliceStable(favorites, func(i, j int) bool {
		return favorites[i].Count > favorites[j].Count
	})
	if len(favorites) > maxFavoriteItems {
		favorites = favorites[:maxFavoriteItems]
	}

	loyalty := models.LoyaltyNew
	if totalVisits >= s.opts.RegularVisitThreshold {
		loyalty = models.LoyaltyRegular
	}

	history := make([]models.OrderEntry, 0, len(orderKeys))
	for _, key := range orderKeys {
		r0 := byOrder[key][0]
		entry := models.OrderEntry{
			OrderID:  key,
			ItemName: r0.ItemName,
			Qty:      lineQty(&r0),
			Amount:   lineSpend(&r0),
		}
		if date, ok := ParseBusinessDate(r0.BusinessDate); ok {
			entry.Date = date
		}
		history = append(history, entry)
	}
	// Newest first; orders without a parseable date keep a zero Date
	// and end up at the tail.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})

	name := ""
	if len(records) > 0 {
		name = strings.TrimSpace(records[0].CustomerName)
	}

	return &models.CustomerSummary{
		CustomerID:        customerID,
		CustomerName:      name,
		TotalVisits:       totalVisits,
		TotalSpend:        totalSpend,
		LastVisit:         lastVisit,
		AvgSpendPerVisit:  avgSpend,
		TotalItemsOrdered: totalItems,
		LoyaltyStatus:     loyalty,
		CLV:               totalSpend * s.opts.RetentionFactor,
		EngagementScore:   s.engagementScore(records, totalVisits),
		FavoriteItems:     favorites,
		OrderHistory:      history,
	}
}

// engagementScore blends visit frequency with recency into a 0–100
// score. Frequency is distinct visits per day over the active span;
// recency decays linearly to zero across a 30-day window.
func (s *Summarizer) engagementScore(records []models.OrderLineRecord, visits int) int {
	var dates []time.Time
	for _, r := range records {
		if d, ok := ParseBusinessDate(r.BusinessDate); ok {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return 0
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	first := dates[0]
	last := dates[len(dates)-1]
	daysSpan := math.Max(1, last.Sub(first).Hours()/24)
	freq := float64(visits) / daysSpan

	recencyDays := math.Max(0, s.opts.Now().Sub(last).Hours()/24)
	recencyFactor := math.Max(0, 1-math.Min(recencyDays/30, 1))

	return int(math.Round(math.Min(100, freq*120+recencyFactor*80)))
}

// lineSpend reads the line's monetary value: the total amount, falling
// back to the unit amount, falling back to zero.
func lineSpend(r *models.OrderLineRecord) float64 {
	if v, ok := parseAmount(r.ItemAmountTotal); ok {
		return v
	}
	if v, ok := parseAmount(r.ItemUnitAmount); ok {
		return v
	}
	return 0
}

// lineQty reads the line's quantity, defaulting to 1 when the field is
// absent or unparsable.
func lineQty(r *models.OrderLineRecord) float64 {
	if v, ok := parseAmount(r.ItemQuantity); ok {
		return v
	}
	return 1
}

func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
