package mimetype

import (
	"math"
	"strconv"
	"strings"
)

// MaxQuality is the weight of an Accept entry that does not give one.
const MaxQuality = 1.0

const qualityParam = "q"

// AcceptEntry is one candidate of an Accept header.
type AcceptEntry struct {
	// The requested type, with the quality parameter removed.
	MimeType MimeType
	// Weight from the "q" parameter, between 0 and 1.
	Quality float64
	// Position of the entry in the header.
	Index int
}

/*
ParseAccept splits an Accept header into its candidates, in header order.

Only a pragmatic subset of RFC 7231 is honored:

• a missing or unreadable "q", NaN and infinities included, weighs MaxQuality, and weights are clamped to [0, 1].

• entries weighted 0 are dropped, as the client marked them not acceptable.

• entries that cannot be parsed (bad grammar, unknown charset) are skipped.

Parameters other than "q" are kept on the entry's MimeType.
*/
func ParseAccept(header string) []AcceptEntry {
	entries := make([]AcceptEntry, 0)

	for index, raw := range strings.Split(header, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		text, quality := splitQuality(raw)
		if quality <= 0 {
			continue
		}

		mimeType, err := Parse(text)
		if err != nil {
			continue
		}

		entries = append(entries, AcceptEntry{
			MimeType: mimeType,
			Quality:  quality,
			Index:    index,
		})
	}

	return entries
}

// Removes the quality parameter from an entry, returning the remaining text and the
// parsed weight.
func splitQuality(entry string) (string, float64) {
	quality := MaxQuality
	segments := strings.Split(entry, ";")
	kept := make([]string, 1, len(segments))
	kept[0] = segments[0]

	for _, segment := range segments[1:] {
		pair := strings.SplitN(segment, "=", 2)
		if len(pair) != 2 || strings.ToLower(strings.TrimSpace(pair[0])) != qualityParam {
			kept = append(kept, segment)
			continue
		}

		parsed, err := strconv.ParseFloat(strings.TrimSpace(pair[1]), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			continue
		}
		switch {
		case parsed < 0:
			quality = 0
		case parsed > MaxQuality:
			quality = MaxQuality
		default:
			quality = parsed
		}
	}

	return strings.Join(kept, ";"), quality
}
