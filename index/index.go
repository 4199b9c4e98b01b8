package index

import (
	"sort"
	"strings"

	"customer-analytics/models"
)

// unknownCustomerID groups records whose transaction id is empty and
// that carry no explicit customer id.
const unknownCustomerID = "UNKNOWN"

// Index groups order-line records by resolved customer identity. It is
// built once per table load and treated as immutable until the next
// load replaces it wholesale.
type Index struct {
	groups map[string][]models.OrderLineRecord
	ids    []string
}

// Build groups records under their normalized customer key. Records
// whose identity resolves to an empty string are dropped, never grouped
// under a catch-all key.
func Build(records []models.OrderLineRecord) *Index {
	groups := make(map[string][]models.OrderLineRecord)
	for _, r := range records {
		key := ResolveCustomerID(&r)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], r)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &Index{groups: groups, ids: ids}
}

// ResolveCustomerID returns the normalized (upper-cased) customer key
// for one record. Priority: the explicit CUSTOMER_ID field, then a key
// derived from TRANSACTION_ID — the prefix before the first hyphen, or
// "CUST" plus the last four characters, or "UNKNOWN" when the
// transaction id is empty too.
func ResolveCustomerID(r *models.OrderLineRecord) string {
	if id := strings.TrimSpace(r.CustomerID); id != "" {
		return strings.ToUpper(id)
	}
	tx := strings.TrimSpace(r.TransactionID)
	if i := strings.Index(tx, "-"); i >= 0 {
		return strings.ToUpper(tx[:i])
	}
	if tx != "" {
		tail := tx
		if len(tail) > 4 {
			tail = tail[len(tail)-4:]
		}
		return strings.ToUpper("CUST" + tail)
	}
	return unknownCustomerID
}

// Records returns the insertion-ordered records grouped under id.
func (ix *Index) Records(id string) ([]models.OrderLineRecord, bool) {
	recs, ok := ix.groups[id]
	return recs, ok
}

// Has reports whether the id exists in the index.
func (ix *Index) Has(id string) bool {
	_, ok := ix.groups[id]
	return ok
}

// IDs returns the distinct customer ids sorted ascending. Callers must
// not mutate the returned slice.
func (ix *Index) IDs() []string {
	return ix.ids
}

// Size returns the number of distinct customers.
func (ix *Index) Size() int {
	return len(ix.groups)
}
