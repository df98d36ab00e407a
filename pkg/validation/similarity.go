package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Method selects how two extractions are compared.
type Method string

const (
	// MethodNumberFrequency compares the frequency distribution of numeric
	// tokens. Best signal for tabular and financial documents.
	MethodNumberFrequency Method = "number_frequency"

	// MethodLevenshtein compares normalized text by edit distance. Expensive;
	// inputs are truncated before comparison.
	MethodLevenshtein Method = "levenshtein"
)

const levenshteinMaxLength = 10000

func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodNumberFrequency, "":
		return MethodNumberFrequency, nil

	case MethodLevenshtein:
		return MethodLevenshtein, nil
	}

	return "", fmt.Errorf("unknown similarity method: %q", s)
}

// Score returns a similarity in [0, 1] between two extraction texts.
func Score(text1, text2 string, method Method) float64 {
	switch method {
	case MethodLevenshtein:
		return levenshteinSimilarity(text1, text2)

	default:
		return numberFrequencySimilarity(text1, text2)
	}
}

func numberFrequencySimilarity(text1, text2 string) float64 {
	numbers1 := extractNumbers(text1)
	numbers2 := extractNumbers(text2)

	// No numbers on either side is vacuously identical; numbers on exactly
	// one side means the extractions disagree about the document.
	if len(numbers1) == 0 && len(numbers2) == 0 {
		return 1.0
	}

	if len(numbers1) == 0 || len(numbers2) == 0 {
		return 0.0
	}

	freq1 := frequency(numbers1)
	freq2 := frequency(numbers2)

	return cosine(freq1, freq2)
}

func levenshteinSimilarity(text1, text2 string) float64 {
	text1 = normalizeForComparison(text1)
	text2 = normalizeForComparison(text2)

	if len(text1) > levenshteinMaxLength {
		text1 = text1[:levenshteinMaxLength]
	}

	if len(text2) > levenshteinMaxLength {
		text2 = text2[:levenshteinMaxLength]
	}

	if text1 == text2 {
		return 1.0
	}

	if text1 == "" || text2 == "" {
		return 0.0
	}

	distance := levenshtein.ComputeDistance(text1, text2)
	longest := max(len([]rune(text1)), len([]rune(text2)))

	return 1.0 - float64(distance)/float64(longest)
}

var numberRegex = regexp.MustCompile(`-?\d+(?:,\d{3})*(?:\.\d+)?%?`)

// extractNumbers pulls every numeric token out of text, normalizing thousands
// separators and trailing percent signs.
func extractNumbers(text string) []float64 {
	matches := numberRegex.FindAllString(text, -1)

	var numbers []float64

	for _, match := range matches {
		clean := strings.TrimSuffix(strings.ReplaceAll(match, ",", ""), "%")

		value, err := strconv.ParseFloat(clean, 64)

		if err != nil {
			continue
		}

		numbers = append(numbers, value)
	}

	return numbers
}

func frequency(numbers []float64) map[float64]int {
	freq := make(map[float64]int, len(numbers))

	for _, n := range numbers {
		freq[n]++
	}

	return freq
}

func cosine(freq1, freq2 map[float64]int) float64 {
	var dot, mag1, mag2 float64

	for key, count := range freq1 {
		dot += float64(count * freq2[key])
		mag1 += float64(count * count)
	}

	for _, count := range freq2 {
		mag2 += float64(count * count)
	}

	if mag1 == 0 || mag2 == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(mag1) * math.Sqrt(mag2))
}

var (
	pageBreakRegex   = regexp.MustCompile(`---PAGE[- ]BREAK---|\[PAGE BREAK\]`)
	punctuationRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// normalizeForComparison strips formatting that providers render differently:
// page-break markers, case, punctuation and whitespace runs.
func normalizeForComparison(text string) string {
	text = pageBreakRegex.ReplaceAllString(text, " ")
	text = strings.ToLower(text)
	text = punctuationRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
