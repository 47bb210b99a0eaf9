// pkg/pipeline/interfaces.go

package pipeline

import (
	"context"

	"fapiao/pkg/models"
)

// Extraction is what was read from one file
type Extraction struct {
	Record models.InvoiceRecord
	// Strategies maps each found field to the strategy that found it
	Strategies map[string]string
	// Misses lists fields that stayed null
	Misses []string
}

// RecordExtractor turns one PDF into a record. The record carries the
// file's basename even when an error is returned.
type RecordExtractor interface {
	ExtractFile(ctx context.Context, path string) (Extraction, error)
}

// ErrorRecorder persists processing errors for later review
type ErrorRecorder interface {
	LogError(e *models.ProcessingError) error
}
