// =============================================================================
// Back-office Extract - PDF Text/Word Extraction Adapter
// =============================================================================
//
// This package turns a PDF into the two shapes the parsers consume:
//   - Lines: an ordered sequence of text lines, one per table cell or text
//     run, the way invoice parsers expect it.
//   - Pages of Words: positioned tokens (x0, x1, top) for the promo parser.
//
// The PDF library reports text as glyph runs with a baseline position. Runs
// are grouped into visual rows by baseline, merged into words when the gap
// between them is narrower than a space, and split into separate lines when
// the gap is wide enough to be a column break.
//
// Parsers depend on LineSource/WordSource, never on this package's PDF
// reader, so they can be tested with plain string slices.
//
// =============================================================================

package pdftext

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// =============================================================================
// INTERFACES AND TYPES
// =============================================================================

// LineSource produces the ordered text lines of a document.
type LineSource interface {
	Lines(path string) ([]string, error)
}

// WordSource produces positioned words, one slice per page.
type WordSource interface {
	Pages(path string) ([][]Word, error)
}

// Glyph is one positioned text run as reported by the PDF library.
type Glyph struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	FontSize float64
}

// Word is a positioned token. Top grows downwards the page.
type Word struct {
	Text string
	X0   float64
	X1   float64
	Top  float64
}

// Options control how glyph runs are assembled.
type Options struct {
	// RowTolerance is the maximum baseline difference for two runs to
	// share a visual row.
	RowTolerance float64

	// SpaceFactor is the gap, as a fraction of the font size, above which
	// two runs are separate words.
	SpaceFactor float64

	// ColumnGapFactor is the gap, as a multiple of the font size, above
	// which two words on the same row are separate lines.
	ColumnGapFactor float64
}

// DefaultOptions returns options that work for typical invoice layouts.
func DefaultOptions() Options {
	return Options{
		RowTolerance:    2.0,
		SpaceFactor:     0.25,
		ColumnGapFactor: 1.5,
	}
}

// Extractor reads PDFs from disk. It implements LineSource and WordSource.
type Extractor struct {
	opts Options
}

// New creates an Extractor. Zero-valued options fall back to the defaults.
func New(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.RowTolerance <= 0 {
		opts.RowTolerance = def.RowTolerance
	}
	if opts.SpaceFactor <= 0 {
		opts.SpaceFactor = def.SpaceFactor
	}
	if opts.ColumnGapFactor <= 0 {
		opts.ColumnGapFactor = def.ColumnGapFactor
	}
	return &Extractor{opts: opts}
}

// =============================================================================
// PDF READING
// =============================================================================

// Lines returns every text line of the document, page after page.
//
// PARAMETERS:
//   - path: The PDF file to read.
//
// RETURNS:
//   - The lines in reading order (top to bottom, left to right).
//   - An error if the file cannot be opened or decoded.
func (e *Extractor) Lines(path string) ([]string, error) {
	pages, err := e.Pages(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, words := range pages {
		lines = append(lines, SegmentLines(words, e.opts)...)
	}
	return lines, nil
}

// Pages returns the positioned words of every page. Pages without content
// are kept as empty slices so page indices stay aligned with the document.
func (e *Extractor) Pages(path string) (pages [][]Word, err error) {
	// The PDF library panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("failed to decode %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([][]Word, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, nil)
			continue
		}

		content := p.Content()
		glyphs := make([]Glyph, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, Glyph{
				Text:     t.S,
				X:        t.X,
				Y:        t.Y,
				Width:    t.W,
				FontSize: t.FontSize,
			})
		}
		pages = append(pages, BuildWords(glyphs, e.opts))
	}

	return pages, nil
}

// =============================================================================
// WORD ASSEMBLY
// =============================================================================

type row struct {
	y      float64
	glyphs []Glyph
}

// BuildWords groups glyph runs into visual rows and merges adjacent runs into
// words. The result is sorted by Top, then X0.
func BuildWords(glyphs []Glyph, opts Options) []Word {
	var rows []*row
	for _, g := range glyphs {
		if g.Text == "" {
			continue
		}
		placed := false
		for _, r := range rows {
			if math.Abs(r.y-g.Y) < opts.RowTolerance {
				r.glyphs = append(r.glyphs, g)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, &row{y: g.Y, glyphs: []Glyph{g}})
		}
	}

	// PDF y grows upwards; the highest baseline is the first row.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	var words []Word
	for _, r := range rows {
		sort.SliceStable(r.glyphs, func(i, j int) bool { return r.glyphs[i].X < r.glyphs[j].X })
		words = append(words, mergeRow(r, opts)...)
	}
	return words
}

func mergeRow(r *row, opts Options) []Word {
	var (
		words   []Word
		current strings.Builder
		x0, x1  float64
	)
	flush := func() {
		if current.Len() > 0 {
			words = append(words, Word{Text: current.String(), X0: x0, X1: x1, Top: -r.y})
			current.Reset()
		}
	}

	for _, g := range r.glyphs {
		size := g.FontSize
		if size <= 0 {
			size = 10
		}
		if current.Len() > 0 && g.X-x1 > size*opts.SpaceFactor {
			flush()
		}

		// Runs holding several characters are assumed to be evenly spaced.
		advance := g.Width / float64(utf8.RuneCountInString(g.Text))
		i := 0
		for _, ch := range g.Text {
			cx := g.X + float64(i)*advance
			i++
			if ch == ' ' || ch == '\t' {
				flush()
				continue
			}
			if current.Len() == 0 {
				x0 = cx
			}
			current.WriteRune(ch)
			x1 = cx + advance
		}
	}
	flush()
	return words
}

// SegmentLines renders one page of words as text lines. Words on the same
// row are joined with a space unless the gap between them reaches
// ColumnGapFactor font sizes, which starts a new line.
func SegmentLines(words []Word, opts Options) []string {
	if len(words) == 0 {
		return nil
	}

	const nominalSize = 10.0
	gap := nominalSize * opts.ColumnGapFactor

	var (
		lines   []string
		current []string
		prev    Word
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for i, w := range words {
		if i > 0 && (w.Top != prev.Top || w.X0-prev.X1 >= gap) {
			flush()
		}
		current = append(current, w.Text)
		prev = w
	}
	flush()
	return lines
}
