// fapiao/pkg/database/cache_store.go

package database

import (
	"database/sql"
	"fmt"

	"fapiao/pkg/cache"
	"fapiao/pkg/models"

	"github.com/shopspring/decimal"
)

// CacheStore is a cache.Store kept in the cache_entries table
type CacheStore struct {
	*cache.Index
	db *Database
}

// NewCacheStore creates a cache store on an initialized database
func NewCacheStore(db *Database) *CacheStore {
	return &CacheStore{
		Index: cache.NewIndex(),
		db:    db,
	}
}

// Load reads every cached row into memory
func (s *CacheStore) Load() error {
	s.Reset(nil)

	query := `
		SELECT filename, mtime, size, invoice_no, date, purchaser, seller, total_amount
		FROM cache_entries
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return fmt.Errorf("querying cache entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]models.CacheEntry)
	for rows.Next() {
		var (
			filename string
			entry    models.CacheEntry
			invoice  sql.NullString
			date     sql.NullString
			buyer    sql.NullString
			seller   sql.NullString
			amount   sql.NullString
		)
		if err := rows.Scan(&filename, &entry.MTime, &entry.Size, &invoice, &date, &buyer, &seller, &amount); err != nil {
			return fmt.Errorf("scanning cache entry: %w", err)
		}

		entry.Data = models.InvoiceRecord{
			InvoiceNo: nullString(invoice),
			Date:      nullString(date),
			Purchaser: nullString(buyer),
			Seller:    nullString(seller),
			Filename:  filename,
		}
		if amount.Valid {
			d, err := decimal.NewFromString(amount.String)
			if err != nil {
				return fmt.Errorf("cache entry %s has bad amount %q: %w", filename, amount.String, err)
			}
			entry.Data.TotalAmount = &d
		}
		entries[filename] = entry
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading cache entries: %w", err)
	}

	s.Reset(entries)
	return nil
}

// Flush writes changed rows and deletes purged ones in a single transaction
func (s *CacheStore) Flush() error {
	if !s.Changed() {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting cache transaction: %w", err)
	}
	defer tx.Rollback()

	upsert, err := tx.Prepare(`
		INSERT INTO cache_entries (filename, mtime, size, invoice_no, date, purchaser, seller, total_amount, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(filename) DO UPDATE SET
			mtime = excluded.mtime,
			size = excluded.size,
			invoice_no = excluded.invoice_no,
			date = excluded.date,
			purchaser = excluded.purchaser,
			seller = excluded.seller,
			total_amount = excluded.total_amount,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing cache upsert: %w", err)
	}
	defer upsert.Close()

	for _, name := range s.Dirty() {
		entry, ok := s.Entry(name)
		if !ok {
			continue
		}
		rec := entry.Data
		var amount any
		if rec.TotalAmount != nil {
			amount = rec.TotalAmount.String()
		}
		if _, err := upsert.Exec(name, entry.MTime, entry.Size,
			rec.InvoiceNo, rec.Date, rec.Purchaser, rec.Seller, amount,
		); err != nil {
			return fmt.Errorf("writing cache entry %s: %w", name, err)
		}
	}

	for _, name := range s.Removed() {
		if _, err := tx.Exec(`DELETE FROM cache_entries WHERE filename = ?`, name); err != nil {
			return fmt.Errorf("deleting cache entry %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache: %w", err)
	}
	s.MarkClean()
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return models.StringPtr(ns.String)
}
