package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veilcheck/veilcheck/internal/model"
)

// VerifyDB provides SQLite-based storage for verification history.
// It manages connection pooling and provides the upsert/read pair the
// compare workflow needs.
//
// Design decision: We keep a single row per document rather than a full
// history. The adversarial loop only ever needs the previous confidence to
// show the delta; a growing history table would be unbounded PII-adjacent
// state with no consumer.
type VerifyDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures VerifyDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a VerifyDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*VerifyDB, error) {
	dbPath := filepath.Join(dbDir, "veilcheck.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY churn for our small write volume.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	vdb := &VerifyDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := vdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return vdb, nil
}

// Close closes the database connection.
func (vdb *VerifyDB) Close() error {
	return vdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (vdb *VerifyDB) createTables() error {
	schema := `
	-- Verification records hold the latest adversarial pass per document.
	-- document_path is unique: each run overwrites the previous row.
	CREATE TABLE IF NOT EXISTS verifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_path TEXT NOT NULL UNIQUE,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		iteration INTEGER NOT NULL,
		confidence REAL NOT NULL,
		risk_level TEXT NOT NULL,
		passes INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_verifications_timestamp ON verifications(timestamp);
	`

	_, err := vdb.db.ExecContext(context.Background(), schema)
	return err
}

// VerificationRecord is a stored verification pass for one document.
type VerificationRecord struct {
	ID           int64
	DocumentPath string
	Timestamp    time.Time
	Iteration    int
	Confidence   float64
	RiskLevel    string
	Passes       bool
	Result       model.VerificationResult
}

// SaveVerification inserts or replaces the verification row for a document.
// Uses UPSERT so each document keeps exactly one row.
func (vdb *VerifyDB) SaveVerification(ctx context.Context, documentPath string, result model.VerificationResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize verification result: %w", err)
	}

	query := `
	INSERT INTO verifications (document_path, iteration, confidence, risk_level, passes, result_json)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(document_path) DO UPDATE SET
		iteration = excluded.iteration,
		confidence = excluded.confidence,
		risk_level = excluded.risk_level,
		passes = excluded.passes,
		result_json = excluded.result_json,
		timestamp = CURRENT_TIMESTAMP
	`

	passes := 0
	if result.PassesThreshold {
		passes = 1
	}

	_, err = vdb.db.ExecContext(ctx, query,
		documentPath,
		result.Iteration,
		result.Analysis.ReidentificationConfidence,
		result.Analysis.RiskLevel.String(),
		passes,
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save verification: %w", err)
	}

	return nil
}

// GetVerification retrieves the stored verification for a document.
// Returns (nil, nil) when the document has never been verified.
func (vdb *VerifyDB) GetVerification(ctx context.Context, documentPath string) (*VerificationRecord, error) {
	query := `
	SELECT id, document_path, timestamp, iteration, confidence, risk_level, passes, result_json
	FROM verifications
	WHERE document_path = ?
	`

	var record VerificationRecord
	var timestamp string
	var passes int
	var resultJSON string

	err := vdb.db.QueryRowContext(ctx, query, documentPath).Scan(
		&record.ID,
		&record.DocumentPath,
		&timestamp,
		&record.Iteration,
		&record.Confidence,
		&record.RiskLevel,
		&passes,
		&resultJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)
	record.Passes = passes != 0

	if err := json.Unmarshal([]byte(resultJSON), &record.Result); err != nil {
		return nil, fmt.Errorf("failed to parse verification result: %w", err)
	}

	return &record, nil
}

// PreviousConfidence returns a pointer to the stored confidence for a
// document, or nil when no prior pass exists. The pointer form feeds
// straight into the verifier's caller-threaded previous-confidence input.
func (vdb *VerifyDB) PreviousConfidence(ctx context.Context, documentPath string) (*float64, error) {
	record, err := vdb.GetVerification(ctx, documentPath)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	confidence := record.Confidence
	return &confidence, nil
}

// ListDocuments returns the paths of all documents with a stored
// verification pass, sorted alphabetically.
func (vdb *VerifyDB) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := vdb.db.QueryContext(ctx,
		"SELECT document_path FROM verifications ORDER BY document_path")
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan document path: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return paths, nil
}

// DeleteVerification removes the stored row for a document.
// Deleting a row that does not exist is not an error.
func (vdb *VerifyDB) DeleteVerification(ctx context.Context, documentPath string) error {
	_, err := vdb.db.ExecContext(ctx, "DELETE FROM verifications WHERE document_path = ?", documentPath)
	if err != nil {
		return fmt.Errorf("failed to delete verification: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
