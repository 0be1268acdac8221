// =============================================================================
// Back-office Extract - CSV Reader
// =============================================================================
//
// This module reads delimited exports from barcode scanners and point of
// sale systems. Those files vary a lot:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Different encodings (UTF-8 with or without BOM, Windows-1252,
//     ISO-8859-1, UTF-16 from spreadsheet "Unicode text" exports)
//   - A header row or no header at all
//   - Ragged rows
//
// Rows are returned raw. Deciding which row is the header and which
// columns matter is left to the caller.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/backoffice-extract/internal/config"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadRecords reads every non-empty row of a delimited file.
//
// PARAMETERS:
//   - filePath: The path to the file.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - The rows in file order, header included when present.
//   - An error if the file cannot be opened, decoded or parsed.
func ReadRecords(filePath string, settings config.CSVSettings) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows, err := Read(file, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return rows, nil
}

// Read parses delimited rows from r. See ReadRecords.
func Read(r io.Reader, settings config.CSVSettings) ([][]string, error) {
	decoder, err := newDecoder(settings.Encoding)
	if err != nil {
		return nil, err
	}

	// Create the CSV reader over the decoded stream.
	csvReader := csv.NewReader(transform.NewReader(bufio.NewReader(r), decoder))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	rows := make([][]string, 0, len(allRows))
	for _, row := range allRows {
		if isRowEmpty(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	// Handle special cases for common delimiters.
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Scanner exports often have a trailing delimiter on some rows only.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// newDecoder returns the decoder for a configured encoding. UTF-8 input
// has its byte order mark removed.
func newDecoder(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "UTF-16", "UTF16":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		enc = charmap.ISO8859_1
	case "WINDOWS-1252", "CP1252":
		enc = charmap.Windows1252
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc.NewDecoder(), nil
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
