package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"customer-analytics/models"
)

// CSVWriter exports computed customer summaries to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"customer_id", "customer_name", "total_visits", "total_spend",
		"avg_spend_per_visit", "total_items", "last_visit",
		"loyalty_status", "clv", "engagement_score", "top_item",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per summary.
func (c *CSVWriter) Write(summaries []*models.CustomerSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range summaries {
		lastVisit := ""
		if s.LastVisit != nil {
			lastVisit = s.LastVisit.Format("2006-01-02")
		}
		topItem := ""
		if len(s.FavoriteItems) > 0 {
			topItem = s.FavoriteItems[0].Name
		}
		row := []string{
			s.CustomerID,
			s.CustomerName,
			strconv.Itoa(s.TotalVisits),
			strconv.FormatFloat(s.TotalSpend, 'f', 2, 64),
			strconv.FormatFloat(s.AvgSpendPerVisit, 'f', 2, 64),
			strconv.FormatFloat(s.TotalItemsOrdered, 'f', -1, 64),
			lastVisit,
			string(s.LoyaltyStatus),
			strconv.FormatFloat(s.CLV, 'f', 2, 64),
			strconv.Itoa(s.EngagementScore),
			topItem,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
