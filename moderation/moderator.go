// Package moderation censors blacklisted words in chat text and tags text with
// its language.
package moderation

import (
	"log/slog"
	"unicode"
	"unicode/utf8"

	goahocorasick "github.com/anknown/ahocorasick"
	"golang.org/x/text/unicode/norm"
)

type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

// NewModerator initializes the Aho-Corasick automaton with a normalized version of the provided censored words list.
// Words made only of noise are skipped.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		if p, _ := fold([]rune(word)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, censoredChar: censoredChar, log: log}, nil
}

// Censor replaces blacklisted words with the censored character.
func (m *Moderator) Censor(original string) string {
	censored, words := m.Inspect(original)
	if len(words) > 0 {
		m.log.Debug("Message censored", "words", len(words))
	}
	return censored
}

// Inspect identifies forbidden patterns and replaces the original characters while preserving spacing.
// It also returns the matched dictionary words, in order of appearance.
func (m *Moderator) Inspect(original string) (string, []string) {
	origRunes := []rune(original)
	folded, positions := fold(origRunes)
	if len(folded) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(folded, false)
	if len(spans) == 0 {
		return original, nil
	}

	var words []string
	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(positions) {
			continue
		}
		for i := positions[span.Pos]; i <= positions[end-1]; i++ {
			origRunes[i] = m.censoredChar
		}
		words = append(words, string(span.Word))
	}

	return string(origRunes), words
}

// fold reduces text to the alphabet of the dictionaries: leet characters
// become letters, accents are stripped, case is lowered and noise is dropped.
// positions[i] is the index in text of folded[i].
func fold(text []rune) (folded []rune, positions []int) {
	folded = make([]rune, 0, len(text))
	positions = make([]int, 0, len(text))
	for i, r := range text {
		r = unicode.ToLower(stripAccent(unleet(r)))
		if isNoise(r) {
			continue
		}
		folded = append(folded, r)
		positions = append(positions, i)
	}
	return folded, positions
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}

// stripAccent keeps the base letter of a precomposed character ("é" -> "e").
func stripAccent(r rune) rune {
	if r < utf8.RuneSelf {
		return r
	}
	for _, base := range norm.NFD.String(string(r)) {
		return base
	}
	return r
}

// isNoise also covers standalone combining marks, found in decomposed input.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) || unicode.Is(unicode.Mn, r)
}
