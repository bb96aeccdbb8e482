package partitionFuncs

import (
	"fmt"
	"strings"

	"github.com/alekLukanen/BreweryMedallion/elements"
)

const NullSegment = "__null__"

// Non-string keys are tagged so they never share a segment with a string of
// the same text. Strings never start with "%23" since '%' is always encoded.
const (
	numberSegmentTag = "%23n"
	boolSegmentTag   = "%23b"
)

/*
* Render a partition key as exactly one path segment. Strings are used as is
* so that keys like "New York" stay readable. Only bytes that would split or
* escape the segment are percent encoded: '/', '\', '%' and control bytes.
* The segments "", "." and ".." are encoded entirely, the empty string as the
* encoded quotes %22%22. The literal string "__null__" is encoded as well so
* it never collides with the null key. Numbers and booleans carry a tag, the
* number 42 becomes "%23n42" and true becomes "%23btrue".
 */
func GroupValueSegment(key elements.Value) string {
	switch key.Kind() {
	case elements.KindNull:
		return NullSegment
	case elements.KindNumber:
		return numberSegmentTag + escapeSegment(key.Text())
	case elements.KindBool:
		return boolSegmentTag + key.Text()
	}

	text := key.Text()
	switch text {
	case "":
		return "%22%22"
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	case NullSegment:
		return "%5F_null__"
	}
	return escapeSegment(text)
}

func escapeSegment(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '/' || c == '\\' || c == '%' || c < 0x20 || c == 0x7f {
			sb.WriteString(fmt.Sprintf("%%%02X", c))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
