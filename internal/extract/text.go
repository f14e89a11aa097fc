package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// TextExtractor decodes the content as UTF-8 text. It is also the generic
// last-resort tier for unknown formats.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

func (e *TextExtractor) Extract(_ context.Context, content []byte) (Result, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return Result{}, NewExtractionError(MethodPlainText, errors.New("content is not valid UTF-8 text"))
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return Result{}, NewExtractionError(MethodPlainText, errors.New("empty document"))
	}
	return Result{Text: text, Method: MethodPlainText, Pages: 1}, nil
}
