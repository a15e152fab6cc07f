package feed

import (
	"context"
	"fmt"
	"io"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/yanun0323/errors"
)

// ClickHouseConfig locates a candles table with ascending (ts, ohlcv) rows.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Table    string
	Symbol   string
	Interval string // candle interval label stored in the table, e.g. "1m"
	From     time.Time
	To       time.Time
}

// Validate checks required fields.
func (c ClickHouseConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("clickhouse addr is empty")
	}
	if c.Table == "" {
		return errors.New("clickhouse table is empty")
	}
	if c.Symbol == "" {
		return errors.New("clickhouse symbol is empty")
	}
	return nil
}

// ClickHouse streams historical candles as a finite feed.
type ClickHouse struct {
	conn driver.Conn
	rows driver.Rows
}

// OpenClickHouse connects, verifies the server, and opens the candle cursor.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": uint64(0),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "clickhouse open")
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "clickhouse ping")
	}

	query := fmt.Sprintf(
		"SELECT ts, open, high, low, close, volume FROM %s WHERE symbol = ?", cfg.Table)
	args := []any{cfg.Symbol}
	if cfg.Interval != "" {
		query += " AND interval = ?"
		args = append(args, cfg.Interval)
	}
	if !cfg.From.IsZero() {
		query += " AND ts >= ?"
		args = append(args, cfg.From)
	}
	if !cfg.To.IsZero() {
		query += " AND ts < ?"
		args = append(args, cfg.To)
	}
	query += " ORDER BY ts ASC"

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "clickhouse query")
	}
	return &ClickHouse{conn: conn, rows: rows}, nil
}

// Next scans one candle row.
func (c *ClickHouse) Next(ctx context.Context) (Bar, error) {
	if err := ctx.Err(); err != nil {
		return Bar{}, err
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return Bar{}, errors.Wrap(err, "clickhouse rows")
		}
		return Bar{}, io.EOF
	}
	var (
		ts                             time.Time
		open, high, low, close, volume float64
	)
	if err := c.rows.Scan(&ts, &open, &high, &low, &close, &volume); err != nil {
		return Bar{}, errors.Wrap(err, "clickhouse scan")
	}
	return Bar{Time: ts, Open: open, High: high, Low: low, Close: close, Volume: volume}, nil
}

// Close releases the cursor and connection.
func (c *ClickHouse) Close() error {
	_ = c.rows.Close()
	return c.conn.Close()
}
