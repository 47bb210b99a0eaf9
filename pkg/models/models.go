// fapiao/pkg/models/models.go

package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration settings
type Config struct {
	Input struct {
		Dir string `yaml:"dir"`
	} `yaml:"input"`

	Cache struct {
		Backend string `yaml:"backend"` // json or sqlite
		Path    string `yaml:"path"`
	} `yaml:"cache"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	PDF struct {
		MaxSizeMB      int `yaml:"max_size_mb"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"pdf"`

	Logging struct {
		Path  string `yaml:"path"`
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Processing struct {
		Workers             int `yaml:"workers"`
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	} `yaml:"processing"`

	Overrides struct {
		Dates map[string]string `yaml:"dates"`
	} `yaml:"overrides"`
}

// Cache backends
const (
	CacheBackendJSON   = "json"
	CacheBackendSQLite = "sqlite"
)

// ApplyDefaults fills zero values with working defaults
func (c *Config) ApplyDefaults() {
	if c.Input.Dir == "" {
		c.Input.Dir = "fp"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendJSON
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "invoice_cache.json"
	}
	if c.PDF.MaxSizeMB <= 0 {
		c.PDF.MaxSizeMB = 50
	}
	if c.PDF.TimeoutSeconds <= 0 {
		c.PDF.TimeoutSeconds = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 1
	}
	if c.Processing.PollIntervalSeconds <= 0 {
		c.Processing.PollIntervalSeconds = 60
	}
	if c.Cache.Backend == CacheBackendSQLite && c.Database.Path == "" {
		c.Database.Path = "fapiao.db"
	}
}

// Validate rejects settings that cannot work
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendJSON, CacheBackendSQLite:
	default:
		return fmt.Errorf("unknown cache backend %q (want %s or %s)", c.Cache.Backend, CacheBackendJSON, CacheBackendSQLite)
	}
	if c.Input.Dir == "" {
		return fmt.Errorf("input directory is not set")
	}
	return nil
}

// InvoiceRecord is the extraction result for a single PDF.
// Unknown fields are nil, never empty strings.
type InvoiceRecord struct {
	InvoiceNo   *string          `json:"invoice_no"`
	Date        *string          `json:"date"`
	Purchaser   *string          `json:"purchaser"`
	Seller      *string          `json:"seller"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	Filename    string           `json:"filename"`
}

// CacheEntry is the persisted state for one file
type CacheEntry struct {
	MTime float64       `json:"mtime"`
	Size  int64         `json:"size"`
	Data  InvoiceRecord `json:"data"`
}

// Matches reports whether the entry is still valid for the given file metadata
func (e CacheEntry) Matches(mtime float64, size int64) bool {
	return e.MTime == mtime && e.Size == size
}

// AggregatedRecord is one output row: a merged invoice-number group or a
// single file without an invoice number.
type AggregatedRecord struct {
	InvoiceNo   *string          `json:"invoice_no"`
	Purchaser   *string          `json:"purchaser"`
	Seller      *string          `json:"seller"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	Date        *string          `json:"date"`
	Quarter     string           `json:"quarter"`
	Count       int              `json:"count"`
	Filename    string           `json:"filename"`
	Conflict    bool             `json:"conflict"`
}

// ProcessingError represents a row in the processing_errors table
type ProcessingError struct {
	ID        string    `json:"id"`
	ScanID    string    `json:"scan_id"`
	Source    string    `json:"source"`
	ErrorType string    `json:"error_type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorType represents types of processing errors
const (
	ErrorTypeExtractionMiss = "extraction_miss"
	ErrorTypeUnreadablePDF  = "unreadable_pdf"
	ErrorTypeCacheIO        = "cache_io"
)

// Field names used in logs and the error journal
const (
	FieldInvoiceNo   = "invoice_no"
	FieldDate        = "date"
	FieldPurchaser   = "purchaser"
	FieldSeller      = "seller"
	FieldTotalAmount = "total_amount"
)

// QuarterUnknown is the bucket for records without a parseable date
const QuarterUnknown = "Unknown"

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
