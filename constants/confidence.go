package constants

// Confidence is the categorical quality signal attached to extracted text,
// set by whichever extraction tier produced it.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"   // native text layer
	ConfidenceMedium Confidence = "MEDIUM" // OCR-derived text
	ConfidenceLow    Confidence = "LOW"    // flat-fallback segmentation
)

// ImageConfidenceThreshold is the OCR word-confidence floor below which
// image-derived text is flagged for manual review.
const ImageConfidenceThreshold = 0.6
