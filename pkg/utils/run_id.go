package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a human-readable identifier for a station run.
// Format: {stationSlug}-{8charHexUUID}
//
// Example:
//   - Input: station="Andromeda Station"
//   - Output: "andromeda-station-a3f8e2b1"
func GenerateRunID(station string) string {
	slug := slugify(station)
	if slug == "" {
		slug = "run"
	}
	return slug + "-" + generateShortUUID()
}

// slugify lower-cases s and collapses anything that is not a letter or digit
// into single hyphens.
func slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
