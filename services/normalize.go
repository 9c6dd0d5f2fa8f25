package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonNumericRegexp matches everything except digits, a decimal point and a sign.
var nonNumericRegexp = regexp.MustCompile(`[^0-9+.\-]`)

// polishReplacer covers the one Polish letter that Unicode decomposition
// cannot fold to ASCII.
var polishReplacer = strings.NewReplacer("ł", "l", "Ł", "L")

// CleanNumber extracts the numeric magnitude from a raw text fragment.
// A comma is treated as the decimal separator; every other non-numeric
// character (currency suffixes, thousands spaces, units) is stripped.
// The second return value is false when no parseable number remains.
//
// Examples:
//
//	"23 000zł"    → 23000
//	"1,5"         → 1.5
//	"12 350 zł/m²" → 12350
func CleanNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	s = nonNumericRegexp.ReplaceAllString(s, "")
	if !strings.ContainsAny(s, "0123456789") {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ToASCIIKey transliterates a place name to a lower-cased ASCII key used
// for the storage namespace. Example: "Gdańsk" → "gdansk".
func ToASCIIKey(s string) string {
	s = polishReplacer.Replace(strings.TrimSpace(s))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
