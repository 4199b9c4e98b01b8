package storage

import "customer-analytics/models"

// SummaryWriter is the interface any summary export backend must satisfy.
type SummaryWriter interface {
	Write(summaries []*models.CustomerSummary) error
	Close() error
}
