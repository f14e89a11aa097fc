package constants

import "strings"

// Format is the canonical kind for an uploaded document.
type Format string

// Stable values (used in logs and the API response).
const (
	TEXT    Format = "TEXT"    // plain text / markdown notes
	CSV     Format = "CSV"     // delimited table
	PDF     Format = "PDF"     // portable document
	DOCX    Format = "DOCX"    // word-processor document
	XLSX    Format = "XLSX"    // spreadsheet
	IMAGE   Format = "IMAGE"   // raster packaging photo
	UNKNOWN Format = "UNKNOWN" // unrecognized; plain-text fallback only
)

// extToFormat maps normalized file extensions to formats.
var extToFormat = map[string]Format{
	"txt":  TEXT,
	"text": TEXT,
	"md":   TEXT,
	"csv":  CSV,
	"tsv":  CSV,
	"pdf":  PDF,
	"docx": DOCX,
	"xlsx": XLSX,
	"xls":  XLSX,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
	"webp": IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"bmp":  IMAGE,
}

// mediaTypeToFormat maps declared media types to formats. Parameters
// ("; charset=...") are stripped before lookup.
var mediaTypeToFormat = map[string]Format{
	"text/plain":                TEXT,
	"text/markdown":             TEXT,
	"text/csv":                  CSV,
	"text/tab-separated-values": CSV,
	"application/pdf":           PDF,
	"application/vnd.ms-excel":  XLSX,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DOCX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       XLSX,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the format for a normalized extension, or UNKNOWN.
func MapExtToFormat(ext string) Format {
	if f, ok := extToFormat[NormalizeExt(ext)]; ok {
		return f
	}
	return UNKNOWN
}

// MapMediaTypeToFormat returns the format for a declared media type, or
// UNKNOWN. Any image/* subtype maps to IMAGE.
func MapMediaTypeToFormat(mt string) Format {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if f, ok := mediaTypeToFormat[mt]; ok {
		return f
	}
	if strings.HasPrefix(mt, "image/") {
		return IMAGE
	}
	return UNKNOWN
}

// SupportedSummary is the human-actionable list surfaced on rejection.
const SupportedSummary = "supported formats: plain text (.txt/.md), delimited tables (.csv/.tsv), PDF, Word (.docx), spreadsheets (.xlsx/.xls), and packaging photos (.jpg/.png/.webp/.tiff/.bmp)"
