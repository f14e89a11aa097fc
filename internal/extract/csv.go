package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor parses a delimited table and serializes each data row to a
// `name | ingredients` line so the segmenter's pipe strategy owns it. A
// proper CSV reader is used so quoted fields containing the delimiter stay
// one field; splitting on the raw delimiter is not acceptable here.
type CSVExtractor struct{}

func NewCSVExtractor() *CSVExtractor { return &CSVExtractor{} }

func (e *CSVExtractor) Extract(_ context.Context, content []byte) (Result, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if len(bytes.TrimSpace(content)) == 0 {
		return Result{}, NewExtractionError(MethodCSVTable, errors.New("empty table"))
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sniffDelimiter(content)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var b strings.Builder
	rows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, NewExtractionError(MethodCSVTable, fmt.Errorf("read row: %w", err))
		}
		if rows == 0 && isHeaderRow(record) {
			rows++
			continue
		}
		line := rowToLine(record)
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		rows++
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return Result{}, NewExtractionError(MethodCSVTable, errors.New("table has no data rows"))
	}
	return Result{Text: text, Method: MethodCSVTable, Pages: 1}, nil
}

// sniffDelimiter picks the field separator from the first line. A tab there
// means TSV: commas often appear inside TSV fields ("oats, salt"), but a
// literal tab never appears inside a CSV field without quoting.
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	if bytes.ContainsRune(line, '\t') {
		return '\t'
	}
	return ','
}

// isHeaderRow reports whether a first row looks like column labels rather
// than data ("Product Name,Ingredients"). A row holding a comma-separated
// list in any cell is data no matter what its other cells say: a product
// named "Cheese Product" must not cost us its row.
func isHeaderRow(record []string) bool {
	labeled := false
	for _, cell := range record {
		c := strings.ToLower(strings.TrimSpace(cell))
		if strings.Contains(c, ",") {
			return false
		}
		switch {
		case strings.Contains(c, "product"),
			strings.Contains(c, "ingredient"),
			c == "name", c == "item", c == "description":
			labeled = true
		}
	}
	return labeled
}

func rowToLine(record []string) string {
	fields := make([]string, 0, len(record))
	for _, cell := range record {
		if v := strings.TrimSpace(cell); v != "" {
			fields = append(fields, v)
		}
	}
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	default:
		return fields[0] + " | " + strings.Join(fields[1:], ", ")
	}
}
