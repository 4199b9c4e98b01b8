package parser

import (
	"fmt"
	"strings"

	"customer-analytics/models"
)

// Parse turns raw delimited table text into ordered order-line records.
// The first non-empty line is the header; blank lines are skipped.
// Fields may be double-quoted, with "" inside quotes meaning a literal
// quote and commas inside quotes not acting as separators. Every value
// is trimmed. Rows shorter than the header are padded with empty
// strings; extra cells beyond the header are discarded.
func Parse(text string) ([]models.OrderLineRecord, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) {
		return nil, fmt.Errorf("parser: no header row found")
	}

	header := splitLine(lines[start])
	records := make([]models.OrderLineRecord, 0, len(lines)-start-1)

	for _, line := range lines[start+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := splitLine(line)
		var rec models.OrderLineRecord
		for i, name := range header {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			setField(&rec, name, val)
		}
		records = append(records, rec)
	}
	return records, nil
}

// splitLine splits one line on commas, honoring double-quoted fields.
// An unterminated quote consumes the rest of the line; that is a known
// edge case, not an error.
func splitLine(line string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				cur.WriteByte(ch)
			}
			continue
		}
		switch ch {
		case ',':
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		case '"':
			inQuotes = true
		default:
			cur.WriteByte(ch)
		}
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out
}

// setField assigns a cell value to the record field named by the
// header. Columns the analytics never reads are ignored.
func setField(r *models.OrderLineRecord, name, val string) {
	switch name {
	case "CUSTOMER_ID":
		r.CustomerID = val
	case "CUSTOMER_NAME":
		r.CustomerName = val
	case "ORDER_ID":
		r.OrderID = val
	case "ORDER_NUMBER":
		r.OrderNumber = val
	case "BUSINESS_DATE":
		r.BusinessDate = val
	case "ITEM_NAME":
		r.ItemName = val
	case "ITEM_UNIT_AMOUNT":
		r.ItemUnitAmount = val
	case "ITEM_AMOUNT_TOTAL":
		r.ItemAmountTotal = val
	case "ITEM_QUANTITY":
		r.ItemQuantity = val
	case "TRANSACTION_ID":
		r.TransactionID = val
	}
}
