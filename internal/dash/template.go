package dash

import (
	"regexp"
	"strconv"
	"strings"
)

// Template identifiers recognised by FillURITemplate.
const (
	IdentRepresentationID = "RepresentationID"
	IdentNumber           = "Number"
	IdentBandwidth        = "Bandwidth"
	IdentTime             = "Time"
)

// maxTemplateWidth is the widest zero padding honoured; wider formats print
// the value unpadded.
const maxTemplateWidth = 64

// templateRegex matches "$$" and "$<Identifier>[%0<width>d]$".
var templateRegex = regexp.MustCompile(`\$(RepresentationID|Number|Bandwidth|Time)?(?:%0([0-9]+)d)?\$`)

// TemplateValues holds the substitution values for a segment URL template.
// A nil field leaves its identifier untouched in the output.
type TemplateValues struct {
	RepresentationID *string
	Number           *uint64
	Bandwidth        *uint64
	Time             *uint64
}

func (v TemplateValues) lookup(name string) (string, bool) {
	var n *uint64
	switch name {
	case IdentRepresentationID:
		if v.RepresentationID == nil {
			return "", false
		}
		return *v.RepresentationID, true
	case IdentNumber:
		n = v.Number
	case IdentBandwidth:
		n = v.Bandwidth
	case IdentTime:
		n = v.Time
	}
	if n == nil {
		return "", false
	}
	return strconv.FormatUint(*n, 10), true
}

// FillURITemplate expands a SegmentTemplate media or initialization pattern.
// "$$" becomes "$"; "$Name$" and "$Name%0Nd$" are replaced by the matching
// value, zero padded to N digits. RepresentationID is never padded and a
// width above maxTemplateWidth is ignored. Unknown identifiers, malformed
// tokens and identifiers without a value are copied through unchanged.
func FillURITemplate(template string, v TemplateValues) string {
	matches := templateRegex.FindAllStringSubmatchIndex(template, -1)
	if matches == nil {
		return template
	}

	var sb strings.Builder
	sb.Grow(len(template))
	last := 0
	for _, m := range matches {
		sb.WriteString(template[last:m[0]])
		last = m[1]

		token := template[m[0]:m[1]]
		if token == "$$" {
			sb.WriteByte('$')
			continue
		}
		if m[2] < 0 {
			// A width with no identifier, e.g. "$%05d$".
			sb.WriteString(token)
			continue
		}

		name := template[m[2]:m[3]]
		value, ok := v.lookup(name)
		if !ok {
			sb.WriteString(token)
			continue
		}

		width := 1
		if m[4] >= 0 && name != IdentRepresentationID {
			if w, err := strconv.Atoi(template[m[4]:m[5]]); err == nil && w > 0 && w <= maxTemplateWidth {
				width = w
			}
		}
		if pad := width - len(value); pad > 0 {
			sb.WriteString(strings.Repeat("0", pad))
		}
		sb.WriteString(value)
	}
	sb.WriteString(template[last:])

	return sb.String()
}
