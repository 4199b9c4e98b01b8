package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"customer-analytics/utils"
)

// Source supplies raw table text on demand. Fetch reports either the
// text or a failure; it never returns a partial table.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// Options carries the shared fetch settings.
type Options struct {
	MaxRetries int
	RetryBase  time.Duration
	TableName  string
	Logger     *utils.Logger
}

// ForTarget picks a source implementation from the target's scheme:
// http(s) URLs fetch over the network, database DSNs read the order
// table, anything else is a file path.
func ForTarget(target string, opts Options) (Source, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("source: empty target")
	}
	switch {
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return NewHTTP(target, opts), nil
	case strings.HasPrefix(target, "postgres://"), strings.HasPrefix(target, "postgresql://"),
		strings.HasPrefix(target, "mysql://"), strings.HasPrefix(target, "mariadb://"):
		return NewDatabase(target, opts)
	default:
		return NewFile(target, opts), nil
	}
}
