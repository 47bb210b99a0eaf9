// fapiao/pkg/database/database.go

package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fapiao/pkg/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Database represents our SQLite connection and operations
type Database struct {
	*sql.DB
}

// InitDB initializes the database and creates tables if they don't exist
func InitDB(dbPath string) (*Database, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{db}, nil
}

func createTables(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			filename TEXT PRIMARY KEY,
			mtime REAL NOT NULL,
			size INTEGER NOT NULL,
			invoice_no TEXT,
			date TEXT,
			purchaser TEXT,
			seller TEXT,
			total_amount TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS processing_errors (
			id TEXT PRIMARY KEY,
			scan_id TEXT,
			source TEXT NOT NULL,
			error_type TEXT NOT NULL,
			message TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_entries_invoice_no ON cache_entries(invoice_no)`,
		`CREATE INDEX IF NOT EXISTS idx_processing_errors_scan ON processing_errors(scan_id)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	return nil
}

// LogError records a processing error. Missing IDs and timestamps are filled in.
func (db *Database) LogError(e *models.ProcessingError) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO processing_errors (id, scan_id, source, error_type, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		e.ID,
		e.ScanID,
		e.Source,
		e.ErrorType,
		e.Message,
		e.CreatedAt,
	)
	return err
}

// RecentErrors returns the latest journal rows, newest first
func (db *Database) RecentErrors(limit int) ([]models.ProcessingError, error) {
	query := `
		SELECT id, scan_id, source, error_type, message, created_at
		FROM processing_errors
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProcessingError
	for rows.Next() {
		var (
			e       models.ProcessingError
			scanID  sql.NullString
			message sql.NullString
		)
		if err := rows.Scan(&e.ID, &scanID, &e.Source, &e.ErrorType, &message, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ScanID = scanID.String
		e.Message = message.String
		out = append(out, e)
	}
	return out, rows.Err()
}
