// pkg/pdf/loader.go

package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileTooLarge is returned when the PDF exceeds the size limit
var ErrFileTooLarge = errors.New("PDF file exceeds size limit")

// loadFile reads a PDF into memory, enforcing the size limit while reading
func loadFile(path string, maxSizeMB int) (*bytes.Reader, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	maxBytes := int64(maxSizeMB) * 1024 * 1024
	if info, err := f.Stat(); err == nil && maxSizeMB > 0 && info.Size() > maxBytes {
		return nil, 0, ErrFileTooLarge
	}

	var src io.Reader = f
	if maxSizeMB > 0 {
		// One extra byte tells a file that grew past the limit apart from one at it
		src = io.LimitReader(f, maxBytes+1)
	}

	var buf bytes.Buffer
	written, err := io.Copy(&buf, src)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading PDF: %w", err)
	}
	if maxSizeMB > 0 && written > maxBytes {
		return nil, 0, ErrFileTooLarge
	}

	return bytes.NewReader(buf.Bytes()), written, nil
}

// IsPDFFile checks if the filename has a .pdf extension, in any case
func IsPDFFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
