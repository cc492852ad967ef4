package store

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// SimilarityThreshold is the score above which two category names are
// reported as likely duplicates.
const SimilarityThreshold = 0.7

// Similarity scores two strings in [0,1] by case-insensitive Levenshtein
// distance relative to the longer string, counted in runes.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return float64(longest-levenshtein.ComputeDistance(a, b)) / float64(longest)
}

type Suggestion struct {
	Label string
	Key   string
	Score float64
}

// SimilarLabels returns candidates scoring above the threshold, best first.
func SimilarLabels(label string, candidates map[string]string) []Suggestion {
	out := make([]Suggestion, 0)
	for key, candidate := range candidates {
		score := Similarity(label, candidate)
		if score > SimilarityThreshold {
			out = append(out, Suggestion{Label: candidate, Key: key, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out
}
