package sanitizer

import (
	"strings"
	"unicode"
)

// Strategy is one normalization step.
type Strategy func(string) string

// Pipeline applies its strategies in order.
type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims s and collapses every run of whitespace to a single
// space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

var (
	// Titles, locations and countries are shown as typed, minus stray spaces.
	displayText = Pipeline{TrimAndNormalize}

	email = Pipeline{strings.TrimSpace, strings.ToLower}
)

func NormalizeTitle(s string) string    { return displayText.Apply(s) }
func NormalizeLocation(s string) string { return displayText.Apply(s) }
func NormalizeCountry(s string) string  { return displayText.Apply(s) }

// NormalizeDescription keeps line breaks; only the ends are trimmed.
func NormalizeDescription(s string) string {
	return strings.TrimSpace(s)
}

func NormalizeUsername(s string) string {
	return strings.TrimSpace(s)
}

func NormalizeEmail(s string) string {
	return email.Apply(s)
}

// NormalizeSearch prepares a free-text search term.
func NormalizeSearch(s string) string {
	return displayText.Apply(s)
}
