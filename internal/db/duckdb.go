// Package db keeps the most recently loaded earthquakes in an in-memory
// DuckDB database for bucket statistics and ad-hoc operator queries.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/joeblew999/plat-quake/internal/quake"
)

// ErrReadOnly is returned by Query for statements that could modify data.
var ErrReadOnly = errors.New("only read-only statements are allowed")

const schema = `CREATE TABLE IF NOT EXISTS quakes (
	id              VARCHAR,
	place           VARCHAR,
	mag             DOUBLE,
	magnitude_known BOOLEAN,
	event_time      TIMESTAMP,
	lon             DOUBLE,
	lat             DOUBLE,
	bucket          INTEGER
)`

// Store wraps the DuckDB connection.
type Store struct {
	db *sql.DB
}

// Open creates an in-memory database with the quakes table.
func Open() (*Store, error) {
	conn, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create quakes table: %w", err)
	}
	return &Store{db: conn}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the table contents for the markers of a freshly composed view.
func (s *Store) Replace(ctx context.Context, markers []quake.Marker) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM quakes"); err != nil {
		return fmt.Errorf("clear quakes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO quakes (id, place, mag, magnitude_known, event_time, lon, lat, bucket) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range markers {
		var ts any
		if !m.Time.IsZero() {
			ts = m.Time.UTC()
		}
		if _, err := stmt.ExecContext(ctx, m.ID, m.Place, m.Magnitude, m.MagnitudeKnown, ts, m.Lon, m.Lat, quake.Bucket(m.Magnitude)); err != nil {
			return fmt.Errorf("insert %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// BucketCount is the number of loaded events in one legend bucket.
type BucketCount struct {
	Bucket int    `json:"bucket" doc:"Lower magnitude bound"`
	Label  string `json:"label" doc:"Legend label" example:"2-3"`
	Color  string `json:"color" doc:"Legend colour"`
	Count  int64  `json:"count" doc:"Number of events"`
}

// BucketCounts returns one entry per legend row, including empty buckets.
func (s *Store) BucketCounts(ctx context.Context) ([]BucketCount, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT bucket, count(*) FROM quakes GROUP BY bucket")
	if err != nil {
		return nil, fmt.Errorf("count buckets: %w", err)
	}
	defer rows.Close()

	counts := map[int]int64{}
	for rows.Next() {
		var bucket int
		var n int64
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, err
		}
		counts[bucket] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	legend := quake.Legend()
	result := make([]BucketCount, len(legend))
	for i, row := range legend {
		result[i] = BucketCount{Bucket: row.Bucket, Label: row.Label, Color: row.Color, Count: counts[row.Bucket]}
	}
	return result, nil
}

// Tables lists the tables in the database.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Result is the generic shape of an ad-hoc query.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

var readOnlyPrefixes = []string{"select", "with", "show", "describe", "summarize", "pragma"}

// Query runs a read-only statement and returns its rows as maps.
func (s *Store) Query(ctx context.Context, query string) (Result, error) {
	if !isReadOnly(query) {
		return Result{}, ErrReadOnly
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return Result{}, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	return Result{Columns: columns, Rows: results}, rows.Err()
}

func isReadOnly(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(strings.TrimSuffix(q, ";"), ";") {
		return false
	}
	for _, p := range readOnlyPrefixes {
		if strings.HasPrefix(q, p) {
			return true
		}
	}
	return false
}
