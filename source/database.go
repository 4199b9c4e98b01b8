package source

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"customer-analytics/utils"
)

// tableColumns are the order-line columns read from the database, in
// the header order the parser expects.
var tableColumns = []string{
	"CUSTOMER_ID", "CUSTOMER_NAME", "ORDER_ID", "ORDER_NUMBER",
	"BUSINESS_DATE", "ITEM_NAME", "ITEM_UNIT_AMOUNT",
	"ITEM_AMOUNT_TOTAL", "ITEM_QUANTITY", "TRANSACTION_ID",
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Database reads the order-line table from PostgreSQL, MySQL or
// MariaDB and renders it as delimited text, so the parser sees the
// same input regardless of where the table came from.
type Database struct {
	driver string
	dsn    string
	table  string
	retry  *utils.RetryConfig
	logger *utils.Logger
}

// NewDatabase creates a database source. The DSN scheme picks the
// driver: postgres:// stays as-is for lib/pq, mysql:// and mariadb://
// URLs are rewritten to the MySQL driver's tcp format.
func NewDatabase(dsn string, opts Options) (*Database, error) {
	driver, driverDSN, err := resolveDriver(dsn)
	if err != nil {
		return nil, err
	}
	table := opts.TableName
	if table == "" {
		table = "order_lines"
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("source: invalid table name %q", table)
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	base := opts.RetryBase
	if base <= 0 {
		base = time.Second
	}
	return &Database{
		driver: driver,
		dsn:    driverDSN,
		table:  table,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   base,
			Logger:      opts.Logger,
		},
		logger: opts.Logger,
	}, nil
}

// resolveDriver maps a DSN to a registered sql driver and its native
// DSN format.
func resolveDriver(dsn string) (driver, driverDSN string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "mysql://"), strings.HasPrefix(dsn, "mariadb://"):
		native, err := toMySQLDSN(dsn)
		if err != nil {
			return "", "", err
		}
		return "mysql", native, nil
	default:
		return "", "", fmt.Errorf("source: unsupported DSN scheme in %q", dsn)
	}
}

func toMySQLDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("source: parse dsn: %w", err)
	}
	user := ""
	pass := ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || u.Host == "" || db == "" {
		return "", fmt.Errorf("source: incomplete dsn (user/host/db required)")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=false", user, pass, u.Host, db), nil
}

// Fetch queries the order-line table and renders it as CSV text.
func (d *Database) Fetch(ctx context.Context) (string, error) {
	var text string
	err := d.retry.Do("query "+d.table, func() error {
		db, err := sql.Open(d.driver, d.dsn)
		if err != nil {
			return fmt.Errorf("source: open %s: %w", d.driver, err)
		}
		defer db.Close()
		db.SetMaxOpenConns(4)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("source: ping %s: %w", d.driver, err)
		}
		text, err = d.readTable(ctx, db)
		return err
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (d *Database) readTable(ctx context.Context, db *sql.DB) (string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(tableColumns, ", "), d.table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("source: query %s: %w", d.table, err)
	}
	defer rows.Close()

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(tableColumns); err != nil {
		return "", fmt.Errorf("source: write header: %w", err)
	}

	count := 0
	values := make([]sql.NullString, len(tableColumns))
	scanArgs := make([]any, len(values))
	for i := range values {
		scanArgs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return "", fmt.Errorf("source: scan row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("source: write row: %w", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("source: iterate rows: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("source: flush: %w", err)
	}
	d.logger.Debug("[source] read %d rows from %s.%s", count, d.driver, d.table)
	return sb.String(), nil
}
