package promo

import (
	"go.uber.org/zap"

	"github.com/ginjaninja78/backoffice-extract/internal/config"
	"github.com/ginjaninja78/backoffice-extract/internal/pdftext"
	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

// Reasons a category is skipped.
const (
	ReasonNoRange     = "no-range"
	ReasonOutOfBounds = "out-of-bounds"
	ReasonNoRows      = "no-rows"
)

// Options control promo extraction.
type Options struct {
	// YTolerance is the vertical distance under which words share a line.
	YTolerance float64

	// Margin is the half-width of a calibrated band.
	Margin float64

	// Manual is used when calibration is off or finds no codes.
	Manual Band

	// Autocalibrate enables median based calibration.
	Autocalibrate bool
}

// OptionsFromConfig builds options from the promo configuration section.
func OptionsFromConfig(p config.PromoSettings) Options {
	return Options{
		YTolerance:    p.YTolerance,
		Margin:        p.AutoMargin,
		Manual:        Band{Min: p.MinCodeX1, Max: p.MaxCodeX1},
		Autocalibrate: p.AutocalibrateEnabled(),
	}
}

// CategorySkip records a category that produced no rows.
type CategorySkip struct {
	Category types.PromoCategory
	Range    PageRange
	Reason   string
}

// PageStat summarizes the product rows found on one page.
type PageStat struct {
	Page    int
	Rows    int
	Samples []Row
}

// Result is the outcome of one extraction.
type Result struct {
	// Band is the code column band used.
	Band Band

	// Calibrated is true when Band came from calibration.
	Calibrated bool

	// Records holds the de-duplicated rows in category order.
	Records []types.PromoProductRecord

	// Duplicates is the number of rows dropped as exact repeats.
	Duplicates int

	// Counts is the number of kept rows per category.
	Counts map[types.PromoCategory]int

	Skipped []CategorySkip
}

// Extractor reads product rows from the pages of a promo catalog.
type Extractor struct {
	opts   Options
	logger *zap.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(opts Options, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{opts: opts, logger: logger}
}

// Band returns the code column band for a document and whether it was
// calibrated.
func (e *Extractor) Band(pages [][]pdftext.Word) (Band, bool) {
	if !e.opts.Autocalibrate {
		return e.opts.Manual, false
	}

	var xs []float64
	for _, words := range pages {
		for _, line := range GroupLines(words, e.opts.YTolerance) {
			if x1, ok := LeadingCodeX1(line); ok {
				xs = append(xs, x1)
			}
		}
	}

	band, ok := CalibrateBand(xs, e.opts.Margin)
	if !ok {
		e.logger.Warn("no product codes found for calibration, using manual bounds",
			zap.Float64("min_code_x1", e.opts.Manual.Min),
			zap.Float64("max_code_x1", e.opts.Manual.Max),
		)
		return e.opts.Manual, false
	}
	return band, true
}

// Extract reads every category whose page range is known.
//
// PARAMETERS:
//   - pages: The positioned words of each page.
//   - ranges: The page range per category.
//
// RETURNS:
//   - The result. Categories are processed in catalog order. A category
//     without a range, with a range outside the document or without any
//     rows is listed in Skipped.
func (e *Extractor) Extract(pages [][]pdftext.Word, ranges map[types.PromoCategory]PageRange) Result {
	band, calibrated := e.Band(pages)
	result := Result{
		Band:       band,
		Calibrated: calibrated,
		Counts:     make(map[types.PromoCategory]int),
	}
	e.logger.Info("code column band",
		zap.Float64("min_code_x1", band.Min),
		zap.Float64("max_code_x1", band.Max),
		zap.Bool("calibrated", calibrated),
	)

	seen := make(map[string]struct{})
	for _, category := range types.PromoCategories {
		rng, ok := ranges[category]
		if !ok {
			result.skip(e.logger, category, rng, ReasonNoRange)
			continue
		}
		if rng.Start < 0 || rng.End >= len(pages) {
			result.skip(e.logger, category, rng, ReasonOutOfBounds)
			continue
		}

		found := 0
		for page := rng.Start; page <= rng.End; page++ {
			for _, line := range GroupLines(pages[page], e.opts.YTolerance) {
				row, ok := ExtractRow(line, band)
				if !ok {
					continue
				}
				record, err := types.NewPromoProductRecord(category, page, row.Code, row.Name, row.Price)
				if err != nil {
					e.logger.Debug("promo row rejected", zap.Int("page", page), zap.Error(err))
					continue
				}

				found++
				if _, dup := seen[record.Key()]; dup {
					result.Duplicates++
					continue
				}
				seen[record.Key()] = struct{}{}
				result.Records = append(result.Records, record)
				result.Counts[category]++
			}
		}

		if found == 0 {
			result.skip(e.logger, category, rng, ReasonNoRows)
			continue
		}
		e.logger.Info("category extracted",
			zap.String("category", string(category)),
			zap.Stringer("pages", rng),
			zap.Int("rows", result.Counts[category]),
		)
	}

	return result
}

func (r *Result) skip(logger *zap.Logger, category types.PromoCategory, rng PageRange, reason string) {
	r.Skipped = append(r.Skipped, CategorySkip{Category: category, Range: rng, Reason: reason})
	logger.Warn("category skipped",
		zap.String("category", string(category)),
		zap.Stringer("pages", rng),
		zap.String("reason", reason),
	)
}

// PageStats counts the product rows on every page and keeps up to samples
// example rows per page.
func (e *Extractor) PageStats(pages [][]pdftext.Word, band Band, samples int) []PageStat {
	stats := make([]PageStat, 0, len(pages))
	for page, words := range pages {
		stat := PageStat{Page: page}
		for _, line := range GroupLines(words, e.opts.YTolerance) {
			row, ok := ExtractRow(line, band)
			if !ok {
				continue
			}
			stat.Rows++
			if len(stat.Samples) < samples {
				stat.Samples = append(stat.Samples, row)
			}
		}
		stats = append(stats, stat)
	}
	return stats
}
