package detector

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/invoice"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// ErrUnclassifiable is returned when no parser output overlaps any
// supplier catalog.
var ErrUnclassifiable = errors.New("document could not be classified")

// Attempt records how one parser scored against the catalog.
type Attempt struct {
	Format invoice.Format
	Items  int
	Match  MatchResult
}

// Classification is the best (supplier, record set) pair for a document.
type Classification struct {
	Supplier types.Supplier
	Match    MatchResult
	Document invoice.Document
	Attempts []Attempt
}

// Classifier runs every invoice parser and keeps the best scoring output.
type Classifier struct {
	parsers []invoice.Parser
	index   CodeIndex
	logger  *zap.Logger
}

// NewClassifier creates a classifier. Without explicit parsers the fixed
// order from invoice.Parsers is used.
func NewClassifier(index CodeIndex, logger *zap.Logger, parsers ...invoice.Parser) *Classifier {
	if len(parsers) == 0 {
		parsers = invoice.Parsers()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{parsers: parsers, index: index, logger: logger}
}

// Classify parses the document with every parser and picks the output whose
// codes overlap a supplier catalog the most. A later parser replaces the
// current best only with a strictly greater overlap.
//
// PARAMETERS:
//   - name: The document name, used in logs and errors.
//   - lines: The document's text lines.
//
// RETURNS:
//   - The best classification. Attempts are filled in even on failure.
//   - ErrUnclassifiable when no parser output overlaps any catalog.
func (c *Classifier) Classify(name string, lines []string) (Classification, error) {
	var best Classification

	for _, p := range c.parsers {
		doc := p.Parse(lines)
		match := Detect(doc.Codes(), c.index)
		best.Attempts = append(best.Attempts, Attempt{Format: doc.Format, Items: len(doc.Items), Match: match})

		c.logger.Debug("parser attempt",
			zap.String("document", name),
			zap.String("format", string(doc.Format)),
			zap.Int("items", len(doc.Items)),
			zap.Int("skipped", len(doc.Skipped)),
			zap.String("supplier", string(match.Supplier)),
			zap.Int("overlap", match.Overlap),
		)

		if match.Matched() && match.Overlap > best.Match.Overlap {
			best.Supplier = match.Supplier
			best.Match = match
			best.Document = doc
		}
	}

	if best.Supplier == "" {
		return best, fmt.Errorf("%w: %s", ErrUnclassifiable, name)
	}

	if best.Match.Ambiguous {
		tied := make([]string, 0, len(best.Match.Tied))
		for _, s := range best.Match.Tied {
			tied = append(tied, string(s))
		}
		c.logger.Warn("supplier tie, first in detection order kept",
			zap.String("document", name),
			zap.String("supplier", string(best.Supplier)),
			zap.Strings("tied", tied),
			zap.Int("overlap", best.Match.Overlap),
		)
	}

	for _, s := range best.Document.Skipped {
		c.logger.Debug("block skipped",
			zap.String("document", name),
			zap.String("supplier", string(best.Supplier)),
			zap.String("code", s.Code),
			zap.Int("line", s.Index),
			zap.String("reason", s.Reason),
		)
	}

	return best, nil
}
