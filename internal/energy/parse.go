// Package energy extracts a numeric magnitude and a unit label from the free-text
// energy estimates returned by the estimator.
package energy

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultUnit is reported when nothing but digits, separators and whitespace remain.
const DefaultUnit = "units"

var numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// Value is a parsed estimate such as {150, "kWh"}.
type Value struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Parse never fails. The first decimal token in text becomes the value (0 if absent);
// the unit is text with every digit, dot, comma and whitespace rune removed. Bytes that
// are not valid UTF-8 are kept as they are.
//
// No physical-unit interpretation happens here: "1.2k kWh" yields {1.2, "kkWh"}.
func Parse(text string) Value {
	return Value{
		Value: parseMagnitude(text),
		Unit:  parseUnit(text),
	}
}

func parseMagnitude(text string) float64 {
	token := numberPattern.FindString(text)
	if token == "" {
		return 0
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		// only reachable on overflow; an infinite magnitude cannot be persisted as JSON
		return 0
	}
	return v
}

func parseUnit(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		// invalid bytes are copied through untouched
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(text[i])
			i++
			continue
		}
		if !isStripped(r) {
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	if b.Len() == 0 {
		return DefaultUnit
	}
	return b.String()
}

// isStripped matches digits, '.', ',' and whitespace. Whitespace is unicode.IsSpace
// minus NEL (U+0085) plus the byte order mark (U+FEFF).
func isStripped(r rune) bool {
	switch r {
	case '.', ',', '\ufeff':
		return true
	case '\u0085':
		return false
	}
	return (r >= '0' && r <= '9') || unicode.IsSpace(r)
}
