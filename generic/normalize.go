package generic

import (
	"strings"
	"time"
)

// =============================================================================
// DATE NORMALIZER - Heterogeneous upstream shapes -> YYYY-MM-DD
// =============================================================================

// NormalizeKind tags the outcome of Normalize.
type NormalizeKind int

const (
	KindEmpty NormalizeKind = iota
	KindParsed
	KindUnrecognized
)

func (k NormalizeKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindParsed:
		return "parsed"
	default:
		return "unrecognized"
	}
}

// Normalized is the tagged result of Normalize. Date is set only for
// KindParsed; Original always holds the input as received.
type Normalized struct {
	Kind     NormalizeKind
	Date     Date
	Original string
}

// Normalize canonicalizes a date value. Accepted shapes:
//
//	2024-03-01                       canonical
//	2024-03-01T10:00:00Z             ISO with time, any zone suffix
//	2024-03-01 10:00:00              ISO with a space separator
//	01/03/2024, 1/3/2024             day/month/year
//
// The time part of ISO values is dropped, never converted: the calendar date
// is whatever the source wrote. Anything else is KindUnrecognized, which the
// caller decides how to treat.
func Normalize(raw string) Normalized {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Normalized{Kind: KindEmpty, Original: raw}
	}

	if d, ok := parseISOPrefix(s); ok {
		return Normalized{Kind: KindParsed, Date: d, Original: raw}
	}
	if strings.Count(s, "/") == 2 {
		if t, err := time.Parse("2/1/2006", s); err == nil {
			return Normalized{Kind: KindParsed, Date: DateOf(t), Original: raw}
		}
	}
	return Normalized{Kind: KindUnrecognized, Original: raw}
}

// Canonical returns the YYYY-MM-DD form for parsed input, the original text
// for unrecognized input, and "" for empty input.
func (n Normalized) Canonical() string {
	switch n.Kind {
	case KindParsed:
		return n.Date.String()
	case KindUnrecognized:
		return n.Original
	default:
		return ""
	}
}

// Err returns an InvalidDateError unless the input parsed.
func (n Normalized) Err() error {
	switch n.Kind {
	case KindParsed:
		return nil
	case KindEmpty:
		return &InvalidDateError{Input: n.Original, Reason: "date is required"}
	default:
		return &InvalidDateError{Input: n.Original, Reason: "unrecognized date format"}
	}
}

// NormalizeString is the permissive string form: canonical date, the input
// unchanged when unrecognized, and ok=false only for empty input.
func NormalizeString(raw string) (string, bool) {
	n := Normalize(raw)
	return n.Canonical(), n.Kind != KindEmpty
}

// NormalizeAll parses every value, failing on the first one that does not
// parse. Used at boundaries that must fail loudly.
func NormalizeAll(raws []string) ([]Date, error) {
	out := make([]Date, 0, len(raws))
	for _, raw := range raws {
		n := Normalize(raw)
		if err := n.Err(); err != nil {
			return nil, err
		}
		out = append(out, n.Date)
	}
	return out, nil
}

func parseISOPrefix(s string) (Date, bool) {
	if len(s) < 10 {
		return Date{}, false
	}
	if len(s) > 10 && s[10] != 'T' && s[10] != 't' && s[10] != ' ' {
		return Date{}, false
	}
	t, err := time.Parse(dateLayout, s[:10])
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}
