// Package detect classifies an uploaded file into a format kind from its
// declared media type and file name. Pure functions; an unrecognized input
// yields UNKNOWN rather than an error so the orchestrator can fall through
// to the generic plain-text path.
package detect

import (
	"path/filepath"

	"github.com/complyline/ingredient-audit/constants"
)

// Detect resolves the format for a file. The declared media type wins when
// recognized; otherwise the file extension decides; otherwise UNKNOWN.
func Detect(filename, mediaType string) constants.Format {
	if f := constants.MapMediaTypeToFormat(mediaType); f != constants.UNKNOWN {
		return f
	}
	return constants.MapExtToFormat(filepath.Ext(filename))
}
