package loader

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// defaultCorrections maps known spellings to their canonical name. Keys are
// matched after whitespace collapsing and before ASCII folding.
var defaultCorrections = map[string]string{ //nolint:gochecknoglobals // lookup table
	"Nikola Jokić":       "Nikola Jokic",
	"Luka Dončić":        "Luka Doncic",
	"Bogdan Bogdanović":  "Bogdan Bogdanovic",
	"Dāvis Bertāns":      "Davis Bertans",
	"Kristaps Porziņģis": "Kristaps Porzingis",
	"Jonas Valančiūnas":  "Jonas Valanciunas",
	"Nikola Vučević":     "Nikola Vucevic",
	"Goran Dragić":       "Goran Dragic",
	"Dario Šarić":        "Dario Saric",
	"Alperen Şengün":     "Alperen Sengun",
}

// Names canonicalizes player names so the same person maps to one id
// across files and seasons.
type Names struct {
	corrections map[string]string
}

// NewNames returns a normalizer with the built-in corrections plus extra.
func NewNames(extra map[string]string) *Names {
	c := make(map[string]string, len(defaultCorrections)+len(extra))
	for k, v := range defaultCorrections {
		c[k] = v
	}
	for k, v := range extra {
		c[collapse(k)] = v
	}
	return &Names{corrections: c}
}

// Canonical collapses whitespace, applies corrections and folds the result
// to ASCII.
func (n *Names) Canonical(raw string) string {
	name := collapse(raw)
	if c, ok := n.corrections[name]; ok {
		name = c
	}
	return collapse(foldASCII(name))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// foldASCII decomposes s (NFKD) and drops everything outside ASCII, which
// removes combining marks and leaves base letters.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
