package validation_test

import (
	"testing"

	"github.com/docrelay/docrelay/pkg/validation"

	"github.com/stretchr/testify/require"
)

func TestNumberFrequencySimilarity(t *testing.T) {
	tests := []struct {
		name string

		text1 string
		text2 string

		score float64
	}{
		{
			name:  "identical numbers",
			text1: "Revenue was 100, then 200, then 200 again.",
			text2: "The figures: 100 | 200 | 200",
			score: 1.0,
		},
		{
			name:  "no numbers on either side",
			text1: "plain prose without figures",
			text2: "different prose, still no figures",
			score: 1.0,
		},
		{
			name:  "numbers on one side only",
			text1: "total: 100",
			text2: "no figures here",
			score: 0.0,
		},
		{
			name:  "completely different numbers",
			text1: "1 2 3",
			text2: "7 8 9",
			score: 0.0,
		},
		{
			name:  "thousands separators normalized",
			text1: "revenue 1,234,567",
			text2: "revenue 1234567",
			score: 1.0,
		},
		{
			name:  "percent signs stripped",
			text1: "growth 12.5%",
			text2: "growth 12.5",
			score: 1.0,
		},
		{
			name:  "negative numbers kept",
			text1: "delta -42",
			text2: "delta -42",
			score: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := validation.Score(tt.text1, tt.text2, validation.MethodNumberFrequency)

			require.InDelta(t, tt.score, score, 1e-9)
		})
	}
}

func TestNumberFrequencyPartialOverlap(t *testing.T) {
	score := validation.Score("100 200 300", "100 200 999", validation.MethodNumberFrequency)

	require.Greater(t, score, 0.0)
	require.Less(t, score, 1.0)
}

func TestLevenshteinSimilarity(t *testing.T) {
	identical := validation.Score("The quick brown fox.", "the quick brown fox", validation.MethodLevenshtein)
	require.InDelta(t, 1.0, identical, 1e-9)

	// Page-break markers are formatting, not content.
	markers := validation.Score("alpha\n---PAGE-BREAK---\nbeta", "alpha beta", validation.MethodLevenshtein)
	require.InDelta(t, 1.0, markers, 1e-9)

	empty := validation.Score("something", "", validation.MethodLevenshtein)
	require.InDelta(t, 0.0, empty, 1e-9)

	nearMiss := validation.Score("the quick brown fox", "the quick brown fix", validation.MethodLevenshtein)
	require.Greater(t, nearMiss, 0.9)
	require.Less(t, nearMiss, 1.0)
}

func TestParseMethod(t *testing.T) {
	method, err := validation.ParseMethod("")
	require.NoError(t, err)
	require.Equal(t, validation.MethodNumberFrequency, method)

	method, err = validation.ParseMethod("Levenshtein")
	require.NoError(t, err)
	require.Equal(t, validation.MethodLevenshtein, method)

	_, err = validation.ParseMethod("jaccard")
	require.Error(t, err)
}
