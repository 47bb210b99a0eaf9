// pkg/pdf/layout.go

package pdf

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// Layout tolerances, in points
const (
	rowTolerance = 3.0 // baselines closer than this share a row
	gapTolerance = 3.0 // horizontal gaps wider than this become a space
)

// Glyph is a piece of page text positioned from the top-left corner
type Glyph struct {
	X    float64
	Top  float64
	W    float64
	Size float64
	S    string
}

// Document is the usable text layer of a PDF's first page
type Document struct {
	Name   string
	Pages  int
	Width  float64
	Height float64
	Glyphs []Glyph
	Text   string
}

// newDocument converts page content to top-left coordinates and lays it out
func newDocument(name string, pages int, p pdf.Page) *Document {
	content := p.Content()
	llx, _, urx, ury, ok := mediaBox(p)
	return buildDocument(name, pages, content.Text, llx, urx, ury, ok)
}

func buildDocument(name string, pages int, texts []pdf.Text, llx, urx, ury float64, hasBox bool) *Document {
	doc := &Document{Name: name, Pages: pages}

	if !hasBox {
		llx, urx, ury = textBounds(texts)
	}
	doc.Width = urx - llx
	doc.Height = ury

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		doc.Glyphs = append(doc.Glyphs, Glyph{
			X:    t.X - llx,
			Top:  ury - t.Y,
			W:    t.W,
			Size: t.FontSize,
			S:    t.S,
		})
	}

	doc.Text = layoutText(doc.Glyphs)
	return doc
}

// textBounds estimates a page box from the text when MediaBox is missing
func textBounds(texts []pdf.Text) (left, right, top float64) {
	if len(texts) == 0 {
		return 0, 0, 0
	}
	left, right, top = texts[0].X, texts[0].X+texts[0].W, texts[0].Y
	for _, t := range texts[1:] {
		if t.X < left {
			left = t.X
		}
		if t.X+t.W > right {
			right = t.X + t.W
		}
		if t.Y+t.FontSize > top {
			top = t.Y + t.FontSize
		}
	}
	return left, right, top
}

// Region returns the text of glyphs that lie inside the box given as
// fractions of the page, measured from the top-left corner.
func (d *Document) Region(x0, top, x1, bottom float64) string {
	if d == nil || d.Width <= 0 || d.Height <= 0 {
		return ""
	}

	minX, maxX := x0*d.Width, x1*d.Width
	minY, maxY := top*d.Height, bottom*d.Height

	var inside []Glyph
	for _, g := range d.Glyphs {
		if g.X >= minX && g.X+g.W <= maxX && g.Top >= minY && g.Top <= maxY {
			inside = append(inside, g)
		}
	}
	return layoutText(inside)
}

// layoutText rebuilds reading order: rows top to bottom, glyphs left to right
func layoutText(glyphs []Glyph) string {
	if len(glyphs) == 0 {
		return ""
	}

	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Top < sorted[j].Top
	})

	var rows [][]Glyph
	for _, g := range sorted {
		n := len(rows)
		if n > 0 && abs(rows[n-1][0].Top-g.Top) <= rowTolerance {
			rows[n-1] = append(rows[n-1], g)
			continue
		}
		rows = append(rows, []Glyph{g})
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		sort.SliceStable(row, func(a, c int) bool { return row[a].X < row[c].X })
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, row []Glyph) {
	lastSpace := true
	for i, g := range row {
		if i > 0 {
			prev := row[i-1]
			if g.X-(prev.X+prev.W) > gapTolerance && !lastSpace && !isBlank(g.S) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		lastSpace = isBlank(g.S)
	}
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
