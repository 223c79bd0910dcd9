package transform

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var Countries = []string{"Spain", "China", "USA", "Italy", "Belgium", "Germany"}
var Statuses = []string{StatusPending, StatusFailed, StatusCompleted}

var countryAliases = map[string]string{
	"United States of America": "USA",
}

// minimum similarity for a word to be corrected
const similarityCutoff = 0.7

// similarity is 2*M/T where M is the length of the longest common
// subsequence and T the total number of runes, 1 for identical words.
func similarity(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchr.LongestCommonSubsequence(a, b)) / float64(total)
}

// FixWord returns the option most similar to word, or word itself when no
// option reaches the similarity cutoff.
func FixWord(word string, options []string) string {
	var best string
	var bestSimilarity float64
	for _, option := range options {
		if option == word {
			return word
		}
		s := similarity(word, option)
		if s > bestSimilarity {
			bestSimilarity = s
			best = option
		}
	}
	if bestSimilarity < similarityCutoff {
		return word
	}
	return best
}

// Clean resolves country aliases and corrects typing errors in country and
// status. The input slice is left untouched.
func Clean(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	countryCache := map[string]string{}
	statusCache := map[string]string{}

	for i, tx := range txs {
		country, ok := countryCache[tx.Country]
		if !ok {
			country = tx.Country
			if alias, isAlias := countryAliases[country]; isAlias {
				country = alias
			}
			country = FixWord(country, Countries)
			countryCache[tx.Country] = country
		}
		status, ok := statusCache[tx.Status]
		if !ok {
			status = FixWord(tx.Status, Statuses)
			statusCache[tx.Status] = status
		}

		tx.Country = country
		tx.Status = status
		out[i] = tx
	}
	return out
}
