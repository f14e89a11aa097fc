package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DocxExtractor pulls the raw text stream out of a word-processor document,
// discarding formatting. A .docx is a zip archive; all visible text lives in
// word/document.xml as <w:t> runs grouped into <w:p> paragraphs.
type DocxExtractor struct{}

func NewDocxExtractor() *DocxExtractor { return &DocxExtractor{} }

func (e *DocxExtractor) Extract(ctx context.Context, content []byte) (Result, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{}, NewExtractionError(MethodDocxText, fmt.Errorf("open docx archive: %w", err))
	}

	var docXML io.ReadCloser
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return Result{}, NewExtractionError(MethodDocxText, fmt.Errorf("open document.xml: %w", err))
			}
			break
		}
	}
	if docXML == nil {
		return Result{}, NewExtractionError(MethodDocxText, errors.New("document.xml not found in archive"))
	}
	defer docXML.Close()

	text, err := docxTextStream(ctx, docXML)
	if err != nil {
		return Result{}, NewExtractionError(MethodDocxText, err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, NewExtractionError(MethodDocxText, errors.New("document contains no text"))
	}
	return Result{Text: text, Method: MethodDocxText, Pages: 1}, nil
}

// docxTextStream walks the XML token stream collecting text runs, emitting
// one output line per paragraph and one tab per cell boundary.
func docxTextStream(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			case "tc":
				b.WriteByte('\t')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
