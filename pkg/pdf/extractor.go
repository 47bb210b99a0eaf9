// pkg/pdf/extractor.go

package pdf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fapiao/pkg/models"

	"github.com/ledongthuc/pdf"
)

// Errors classifying a PDF whose text layer cannot be used
var (
	ErrNoPages = errors.New("PDF has no pages")
	ErrNoText  = errors.New("PDF has no extractable text")
	ErrTimeout = errors.New("PDF parsing timed out")
)

// Extractor reads the text layer of the first page of a PDF
type Extractor struct {
	maxSizeMB int
	timeout   time.Duration
}

// NewExtractor creates a new PDF text extractor instance
func NewExtractor(config *models.Config) *Extractor {
	return &Extractor{
		maxSizeMB: config.PDF.MaxSizeMB,
		timeout:   time.Duration(config.PDF.TimeoutSeconds) * time.Second,
	}
}

type parseResult struct {
	doc *Document
	err error
}

// ExtractFirstPage returns the first page's text and glyph geometry. Parsing
// runs under the configured timeout; the underlying library is not
// context-aware, so a timed-out parse is abandoned rather than interrupted.
func (e *Extractor) ExtractFirstPage(ctx context.Context, path string) (*Document, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan parseResult, 1)
	go func() {
		doc, err := e.parse(path)
		done <- parseResult{doc: doc, err: err}
	}()

	select {
	case res := <-done:
		return res.doc, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// parse opens the PDF and lays out page one. The pdf library panics on some
// malformed inputs; those panics come back as errors.
func (e *Extractor) parse(path string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("panic while parsing PDF: %v", r)
		}
	}()

	data, size, err := loadFile(path, e.maxSizeMB)
	if err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}

	totalPages := r.NumPage()
	if totalPages < 1 {
		return nil, ErrNoPages
	}

	p := r.Page(1)
	if p.V.IsNull() {
		return nil, ErrNoPages
	}

	doc = newDocument(filepath.Base(path), totalPages, p)
	if strings.TrimSpace(doc.Text) == "" {
		return nil, ErrNoText
	}
	return doc, nil
}

// mediaBox returns the page box, following inherited values up the page tree
func mediaBox(p pdf.Page) (llx, lly, urx, ury float64, ok bool) {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			return box.Index(0).Float64(), box.Index(1).Float64(),
				box.Index(2).Float64(), box.Index(3).Float64(), true
		}
	}
	return 0, 0, 0, 0, false
}
