package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExtractsProductCode(t *testing.T) {
	parsed := Normalize("NTG EF 63-50 kaynaklı boru")

	assert.Equal(t, "NTG EF 63-50", parsed.ExtractedCode)
	assert.Equal(t, []string{"63", "50"}, parsed.Numbers)
	assert.Equal(t, "63-50", parsed.MeasurementPattern)
	assert.Contains(t, parsed.Keywords, "kaynaklı")
	assert.Contains(t, parsed.Keywords, "boru")
}

func TestNormalizeLowercaseCodeStillDetected(t *testing.T) {
	parsed := Normalize("ntg ef 63-50")

	assert.Equal(t, "NTG EF 63-50", parsed.ExtractedCode)
}

func TestNormalizeMeasurementPatternFromFirstTwoNumbers(t *testing.T) {
	parsed := Normalize("125 x 100 dirsek 3 adet")

	assert.Equal(t, []string{"125", "100", "3"}, parsed.Numbers)
	assert.Equal(t, "125-100", parsed.MeasurementPattern)
}

func TestNormalizeSingleNumberHasNoPattern(t *testing.T) {
	parsed := Normalize("paslanmaz kelepçe 40 mm")

	assert.Equal(t, []string{"40"}, parsed.Numbers)
	assert.Empty(t, parsed.MeasurementPattern)
	assert.Empty(t, parsed.ExtractedCode)
}

func TestNormalizeDropsStopWordsAndNumericTokens(t *testing.T) {
	parsed := Normalize("2 adet boru ve dirsek için")

	assert.Equal(t, []string{"boru", "dirsek"}, parsed.Keywords)
	assert.Equal(t, []string{"2"}, parsed.Numbers)
}

func TestNormalizeDeduplicatesKeywords(t *testing.T) {
	parsed := Normalize("boru boru dirsek boru")

	assert.Equal(t, []string{"boru", "dirsek"}, parsed.Keywords)
}

func TestNormalizeDropsSingleRuneTokens(t *testing.T) {
	parsed := Normalize("ø boru 5 m")

	assert.Equal(t, []string{"boru"}, parsed.Keywords)
}

func TestNormalizeEmptyInput(t *testing.T) {
	parsed := Normalize("")

	assert.Empty(t, parsed.ExtractedCode)
	assert.Empty(t, parsed.MeasurementPattern)
	assert.Empty(t, parsed.Numbers)
	assert.Empty(t, parsed.Keywords)
	assert.Equal(t, "", parsed.RawText)
}

func TestNormalizePreservesRawText(t *testing.T) {
	raw := "  Kaynaklı Boru 63-50  "
	parsed := Normalize(raw)

	assert.Equal(t, raw, parsed.RawText)
}

func TestNormalizeTurkishDiacriticsKeptInKeywords(t *testing.T) {
	parsed := Normalize("çelik kelepçe ölçüsü")

	assert.Equal(t, []string{"çelik", "kelepçe", "ölçüsü"}, parsed.Keywords)
}
