// pkg/pipeline/extractor.go

package pipeline

import (
	"context"
	"path/filepath"

	"fapiao/pkg/extract"
	"fapiao/pkg/models"
	"fapiao/pkg/pdf"

	"github.com/rs/zerolog"
)

// FileExtractor reads a PDF's first page and runs the field chains over it
type FileExtractor struct {
	reader *pdf.Extractor
	fields *extract.Extractor
}

// NewFileExtractor creates a file extractor from configuration
func NewFileExtractor(config *models.Config, logger zerolog.Logger) *FileExtractor {
	return &FileExtractor{
		reader: pdf.NewExtractor(config),
		fields: extract.NewExtractor(logger, config.Overrides.Dates),
	}
}

// Inspect returns the parsed page alongside the extraction outcome
func (f *FileExtractor) Inspect(ctx context.Context, path string) (*pdf.Document, extract.Outcome, error) {
	name := filepath.Base(path)
	doc, err := f.reader.ExtractFirstPage(ctx, path)
	if err != nil {
		return nil, extract.Outcome{Record: models.InvoiceRecord{Filename: name}}, err
	}
	return doc, f.fields.Extract(name, doc.Text, doc), nil
}

// ExtractFile implements RecordExtractor
func (f *FileExtractor) ExtractFile(ctx context.Context, path string) (Extraction, error) {
	_, out, err := f.Inspect(ctx, path)
	return Extraction{
		Record:     out.Record,
		Strategies: out.Strategies,
		Misses:     out.Misses,
	}, err
}
