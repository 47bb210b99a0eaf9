// pkg/pipeline/scanner.go

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fapiao/pkg/cache"
	"fapiao/pkg/models"
	"fapiao/pkg/pdf"
	"fapiao/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxJournalMessage caps the length of a journaled error message
const maxJournalMessage = 500

// Scanner turns a directory of invoice PDFs into records, reusing cached
// results for files whose mtime and size have not changed.
type Scanner struct {
	store     cache.Store
	extractor RecordExtractor
	journal   ErrorRecorder
	workers   int
	logger    zerolog.Logger
}

// Option configures a Scanner
type Option func(*Scanner)

// WithJournal records unreadable files, extraction misses and cache
// failures in j
func WithJournal(j ErrorRecorder) Option {
	return func(s *Scanner) { s.journal = j }
}

// WithWorkers sets how many files are extracted concurrently
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewScanner creates a scanner over a cache store and an extractor
func NewScanner(store cache.Store, extractor RecordExtractor, logger zerolog.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		store:     store,
		extractor: extractor,
		workers:   1,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// pdfFile is a directory entry to scan
type pdfFile struct {
	name  string
	mtime float64
	size  int64
}

// slot holds one file's extraction result until the pool is drained
type slot struct {
	result Extraction
	err    error
}

// ScanDirectory returns one record per PDF in dir, in filename order. Only
// an unreadable directory or a cancelled context is an error; a bad file
// yields a record with null fields.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string) ([]models.InvoiceRecord, error) {
	scanID := uuid.NewString()
	logger := s.logger.With().Str("scan_id", scanID).Logger()

	files, err := listPDFs(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}

	if err := s.store.Load(); err != nil {
		logger.Error().Err(err).Msg("Failed to load cache, starting empty")
		s.recordError(logger, scanID, "cache", models.ErrorTypeCacheIO, err.Error())
	}

	records := make([]models.InvoiceRecord, len(files))
	var misses []int
	for i, f := range files {
		if rec, ok := s.store.Lookup(f.name, f.mtime, f.size); ok {
			rec.Filename = f.name
			records[i] = rec
			continue
		}
		misses = append(misses, i)
	}

	slots := s.extractAll(ctx, logger, dir, files, misses)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cached := 0
	for _, i := range misses {
		f, sl := files[i], slots[i]
		rec := sl.result.Record
		rec.Filename = f.name
		records[i] = rec
		s.reportFile(logger, scanID, f.name, sl)

		// A timeout says nothing about the file; retry it next scan
		if errors.Is(sl.err, pdf.ErrTimeout) {
			continue
		}
		s.store.Upsert(f.name, models.CacheEntry{
			MTime: f.mtime,
			Size:  f.size,
			Data:  rec,
		})
		cached++
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	purged := s.store.PurgeMissing(names)

	if cached > 0 || purged > 0 {
		if err := s.store.Flush(); err != nil {
			logger.Error().Err(err).Msg("Failed to save cache")
			s.recordError(logger, scanID, "cache", models.ErrorTypeCacheIO, err.Error())
		}
	}

	logger.Info().
		Str("dir", dir).
		Int("files", len(files)).
		Int("cached", len(files)-len(misses)).
		Int("extracted", len(misses)).
		Int("purged", purged).
		Msg("Scan complete")

	return records, nil
}

// ProcessInvoices scans dir and merges records sharing an invoice number
func (s *Scanner) ProcessInvoices(ctx context.Context, dir string) ([]models.AggregatedRecord, error) {
	records, err := s.ScanDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}

	rows := Aggregate(records)
	for _, row := range rows {
		if row.Conflict {
			s.logger.Warn().
				Str("invoice_no", models.Deref(row.InvoiceNo)).
				Str("files", row.Filename).
				Msg("Files sharing an invoice number disagree; keeping the first")
		}
	}
	return rows, nil
}

// extractAll runs the extractor over the cache misses on the worker pool.
// Each job writes only its own slot.
func (s *Scanner) extractAll(ctx context.Context, logger zerolog.Logger, dir string, files []pdfFile, misses []int) []slot {
	slots := make([]slot, len(files))
	if len(misses) == 0 {
		return slots
	}

	pool := NewWorkerPool(s.workers, len(misses), logger)
	pool.Start(ctx)
	for _, i := range misses {
		pool.Submit(NewProcessingJob(files[i].name, func(jobCtx context.Context) error {
			res, err := s.extractor.ExtractFile(jobCtx, filepath.Join(dir, files[i].name))
			slots[i] = slot{result: res, err: err}
			return err
		}))
	}
	pool.Stop()

	failed := 0
	for err := range pool.Results() {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Debug().Int("failed", failed).Int("submitted", len(misses)).Msg("Extraction jobs finished with errors")
	}
	return slots
}

// reportFile logs and journals the problems found in one freshly extracted
// file. It runs on the scanning goroutine so journal writes are serialized.
func (s *Scanner) reportFile(logger zerolog.Logger, scanID, name string, sl slot) {
	if sl.err != nil {
		logger.Error().Str("file", name).Err(sl.err).Msg("Unreadable PDF")
		s.recordError(logger, scanID, name, models.ErrorTypeUnreadablePDF, sl.err.Error())
		return
	}

	for field, strategy := range sl.result.Strategies {
		logger.Debug().Str("file", name).Str("field", field).Str("strategy", strategy).Msg("Field extracted")
	}
	if len(sl.result.Misses) > 0 {
		s.recordError(logger, scanID, name, models.ErrorTypeExtractionMiss,
			"no value for "+strings.Join(sl.result.Misses, ", "))
	}
}

func (s *Scanner) recordError(logger zerolog.Logger, scanID, source, errorType, message string) {
	if s.journal == nil {
		return
	}
	err := s.journal.LogError(&models.ProcessingError{
		ID:        uuid.NewString(),
		ScanID:    scanID,
		Source:    source,
		ErrorType: errorType,
		Message:   utils.TruncateText(message, maxJournalMessage),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error logging error")
	}
}

// listPDFs returns the PDF files directly inside dir, sorted by name
func listPDFs(dir string, logger zerolog.Logger) ([]pdfFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []pdfFile
	for _, entry := range entries {
		if entry.IsDir() || !pdf.IsPDFFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between listing and stat
			logger.Warn().Str("file", entry.Name()).Err(err).Msg("Skipping file")
			continue
		}
		files = append(files, pdfFile{
			name:  entry.Name(),
			mtime: modTime(info),
			size:  info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

// modTime is the file's mtime in fractional Unix seconds
func modTime(info os.FileInfo) float64 {
	return float64(info.ModTime().UnixNano()) / 1e9
}
