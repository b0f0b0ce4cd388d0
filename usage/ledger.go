// Package usage provides the SQLite-backed usage accounting ledger.
//
// Information Hiding:
// - SQLite connection management and schema encapsulated
// - Aggregation queries hidden behind Stats
// - Thread-safe via sql.DB's built-in connection pooling

package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Record is a single accounting entry. Exactly one record exists per
// dispatched generation request, successful or not.
type Record struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	Tool           string    `json:"tool,omitempty"`
	InputTokens    int64     `json:"input_tokens"`
	OutputTokens   int64     `json:"output_tokens"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	ResponseTimeMs int64     `json:"response_time_ms"`
}

// TotalTokens returns input plus output tokens for the record.
func (r Record) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// ProviderStats aggregates usage for a single provider and model.
type ProviderStats struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Requests     int64  `json:"requests"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// ToolStats aggregates usage for a single tool.
type ToolStats struct {
	Tool         string `json:"tool"`
	Requests     int64  `json:"requests"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// Stats summarizes usage over a time window.
type Stats struct {
	PeriodDays         int             `json:"period_days"`
	TotalRequests      int64           `json:"total_requests"`
	SuccessfulRequests int64           `json:"successful_requests"`
	FailedRequests     int64           `json:"failed_requests"`
	TotalInputTokens   int64           `json:"total_input_tokens"`
	TotalOutputTokens  int64           `json:"total_output_tokens"`
	TotalTokens        int64           `json:"total_tokens"`
	AvgResponseTimeMs  float64         `json:"avg_response_time_ms"`
	ByProvider         []ProviderStats `json:"by_provider"`
	ByTool             []ToolStats     `json:"by_tool"`
}

// Export is the portable snapshot format produced by Snapshot.
type Export struct {
	ExportID   string   `json:"export_id"`
	ExportDate string   `json:"export_date"`
	Statistics Stats    `json:"statistics"`
	Records    []Record `json:"records"`
}

// Ledger stores usage records in a SQLite database file.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenLedger(path string) (*Ledger, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	ledger := &Ledger{db: db}
	if err := ledger.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return ledger, nil
}

// OpenInMemory creates an in-memory ledger (useful for testing).
func OpenInMemory() (*Ledger, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Each pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	ledger := &Ledger{db: db}
	if err := ledger.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return ledger, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS usage_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			tool TEXT NOT NULL DEFAULT '',
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL DEFAULT 1,
			error_message TEXT NOT NULL DEFAULT '',
			response_time_ms INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_usage_timestamp
		ON usage_records(timestamp);

		CREATE INDEX IF NOT EXISTS idx_usage_provider
		ON usage_records(provider);

		CREATE INDEX IF NOT EXISTS idx_usage_tool
		ON usage_records(tool);
	`

	_, err := l.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Add inserts a usage record. A zero Timestamp is replaced with now.
func (l *Ledger) Add(ctx context.Context, rec Record) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO usage_records
			(timestamp, provider, model, tool, input_tokens, output_tokens,
			 success, error_message, response_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339), rec.Provider, rec.Model, rec.Tool,
		rec.InputTokens, rec.OutputTokens, boolToInt(rec.Success),
		rec.ErrorMessage, rec.ResponseTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

// Stats aggregates usage over the last N days. A non-positive days value
// aggregates all history. Records exactly at the window boundary are
// included.
func (l *Ledger) Stats(ctx context.Context, days int) (Stats, error) {
	stats := Stats{PeriodDays: days}
	where, args := windowFilter(days)

	row := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0),
		       COALESCE(AVG(response_time_ms), 0)
		FROM usage_records`+where, args...)

	if err := row.Scan(
		&stats.TotalRequests,
		&stats.SuccessfulRequests,
		&stats.TotalInputTokens,
		&stats.TotalOutputTokens,
		&stats.AvgResponseTimeMs,
	); err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	stats.FailedRequests = stats.TotalRequests - stats.SuccessfulRequests
	stats.TotalTokens = stats.TotalInputTokens + stats.TotalOutputTokens

	byProvider, err := l.statsByProvider(ctx, where, args)
	if err != nil {
		return Stats{}, err
	}
	stats.ByProvider = byProvider

	byTool, err := l.statsByTool(ctx, days)
	if err != nil {
		return Stats{}, err
	}
	stats.ByTool = byTool

	return stats, nil
}

func (l *Ledger) statsByProvider(ctx context.Context, where string, args []any) ([]ProviderStats, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT provider, model, COUNT(*),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0)
		FROM usage_records`+where+`
		GROUP BY provider, model
		ORDER BY provider, model`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by provider: %w", err)
	}
	defer rows.Close()

	var result []ProviderStats
	for rows.Next() {
		var ps ProviderStats
		if err := rows.Scan(&ps.Provider, &ps.Model, &ps.Requests,
			&ps.InputTokens, &ps.OutputTokens); err != nil {
			return nil, fmt.Errorf("failed to scan provider stats: %w", err)
		}
		result = append(result, ps)
	}
	return result, rows.Err()
}

func (l *Ledger) statsByTool(ctx context.Context, days int) ([]ToolStats, error) {
	where := " WHERE tool != ''"
	args := []any{}
	if filter, filterArgs := windowFilter(days); filter != "" {
		where = filter + " AND tool != ''"
		args = filterArgs
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT tool, COUNT(*),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0)
		FROM usage_records`+where+`
		GROUP BY tool
		ORDER BY tool`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by tool: %w", err)
	}
	defer rows.Close()

	var result []ToolStats
	for rows.Next() {
		var ts ToolStats
		if err := rows.Scan(&ts.Tool, &ts.Requests, &ts.InputTokens, &ts.OutputTokens); err != nil {
			return nil, fmt.Errorf("failed to scan tool stats: %w", err)
		}
		result = append(result, ts)
	}
	return result, rows.Err()
}

// History returns records most recent first.
func (l *Ledger) History(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, timestamp, provider, model, tool, input_tokens,
		       output_tokens, success, error_message, response_time_ms
		FROM usage_records
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all usage records and returns the number removed.
func (l *Ledger) Clear(ctx context.Context) (int64, error) {
	result, err := l.db.ExecContext(ctx, `DELETE FROM usage_records`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear usage records: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared records: %w", err)
	}
	return n, nil
}

// Snapshot builds a portable export of all records plus all-history
// statistics.
func (l *Ledger) Snapshot(ctx context.Context) (Export, error) {
	stats, err := l.Stats(ctx, 0)
	if err != nil {
		return Export{}, err
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, timestamp, provider, model, tool, input_tokens,
		       output_tokens, success, error_message, response_time_ms
		FROM usage_records
		ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return Export{}, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return Export{}, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return Export{}, err
	}

	return Export{
		ExportID:   uuid.NewString(),
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Statistics: stats,
		Records:    records,
	}, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var ts string
	var success int
	if err := rows.Scan(&rec.ID, &ts, &rec.Provider, &rec.Model, &rec.Tool,
		&rec.InputTokens, &rec.OutputTokens, &success,
		&rec.ErrorMessage, &rec.ResponseTimeMs); err != nil {
		return Record{}, fmt.Errorf("failed to scan usage record: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Record{}, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
	}
	rec.Timestamp = parsed
	rec.Success = success != 0
	return rec, nil
}

// windowFilter returns the WHERE clause for a trailing window, or empty
// strings when days is non-positive (all history).
func windowFilter(days int) (string, []any) {
	if days <= 0 {
		return "", nil
	}
	cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour).Format(time.RFC3339)
	return " WHERE timestamp >= ?", []any{cutoff}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
