package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor reads the first sheet of a spreadsheet and serializes it to
// a delimited table, then hands off to the CSV parsing path so both formats
// share one row-handling implementation.
type XLSXExtractor struct {
	csv *CSVExtractor
}

func NewXLSXExtractor() *XLSXExtractor {
	return &XLSXExtractor{csv: NewCSVExtractor()}
}

func (e *XLSXExtractor) Extract(ctx context.Context, content []byte) (Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Result{}, NewExtractionError(MethodXLSXSheet, fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, NewExtractionError(MethodXLSXSheet, errors.New("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{}, NewExtractionError(MethodXLSXSheet, fmt.Errorf("read sheet %q: %w", sheets[0], err))
	}
	if len(rows) == 0 {
		return Result{}, NewExtractionError(MethodXLSXSheet, errors.New("first sheet is empty"))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return Result{}, NewExtractionError(MethodXLSXSheet, fmt.Errorf("serialize row: %w", err))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Result{}, NewExtractionError(MethodXLSXSheet, err)
	}

	res, err := e.csv.Extract(ctx, buf.Bytes())
	if err != nil {
		return Result{}, NewExtractionError(MethodXLSXSheet, err)
	}
	res.Method = MethodXLSXSheet
	return res, nil
}
