// normalizer.go - Parsing of free-text customer requests into structured signals

package matcher

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ParsedRequest holds the structured signals extracted from one raw request
type ParsedRequest struct {
	RawText            string   `json:"originalRequest"`
	ExtractedCode      string   `json:"productCode,omitempty"`
	Numbers            []string `json:"numbers"`
	Keywords           []string `json:"keywords"`
	MeasurementPattern string   `json:"measurementPattern,omitempty"`
}

var (
	// Maximal digit runs, in order of appearance
	numberPattern = regexp.MustCompile(`\d+`)

	// Product code shape: letter group(s) followed by two digit groups joined
	// by a hyphen or space, e.g. "NTG EF 63-50". Applied to the uppercased
	// request; Turkish uppercase letters included.
	codePattern = regexp.MustCompile(`[A-ZÇĞİÖŞÜ]{2,}\s*[A-ZÇĞİÖŞÜ]*\s*\d+[-\s]\d+`)

	// Token boundaries: anything outside ASCII alphanumerics and Turkish
	// accented letters splits
	tokenBoundary = regexp.MustCompile(`[^0-9A-Za-z_ğüşıöçĞÜŞİÖÇ]+`)

	numericToken  = regexp.MustCompile(`^\d+$`)
	spaceCollapse = regexp.MustCompile(`\s+`)
)

// Stop words dropped from keyword extraction
var stopWords = map[string]struct{}{
	"bir":   {},
	"ve":    {},
	"ile":   {},
	"için":  {},
	"adet":  {},
	"metre": {},
	"kg":    {},
}

// Normalize tokenizes a raw customer request and extracts the product code,
// numeric tokens, measurement pattern and keyword set. Pure function, never
// fails; the worst case is a ParsedRequest with empty keywords and no code.
//
// The heuristics are intentionally approximate (uppercasing is not
// locale-aware, the code pattern only covers letter+digit-pair shapes);
// they mirror the production catalog's conventions and should not be
// "fixed" without new product requirements.
func Normalize(raw string) ParsedRequest {
	parsed := ParsedRequest{
		RawText:  raw,
		Numbers:  []string{},
		Keywords: []string{},
	}

	upper := strings.ToUpper(strings.TrimSpace(raw))

	// 1. Extract all digit runs (63, 50, 125, ...)
	parsed.Numbers = append(parsed.Numbers, numberPattern.FindAllString(raw, -1)...)

	// 2. Product code detection (e.g. "NTG EF 63-50")
	if code := codePattern.FindString(upper); code != "" {
		parsed.ExtractedCode = strings.TrimSpace(spaceCollapse.ReplaceAllString(code, " "))
	}

	// 3. Measurement pattern: first two numbers joined, e.g. "63-50".
	// Derived here and never mutated independently.
	if len(parsed.Numbers) >= 2 {
		parsed.MeasurementPattern = parsed.Numbers[0] + "-" + parsed.Numbers[1]
	}

	// 4. Keywords: lowercase diacritic-preserving tokens, minus stop words
	// and purely numeric tokens, deduplicated in insertion order
	seen := make(map[string]struct{})
	for _, token := range tokenBoundary.Split(strings.ToLower(raw), -1) {
		if utf8.RuneCountInString(token) <= 1 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if numericToken.MatchString(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		parsed.Keywords = append(parsed.Keywords, token)
	}

	return parsed
}
