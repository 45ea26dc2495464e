package insight

import (
	"regexp"
	"slices"
	"strings"
)

// LexiconVersion is the vocabulary format version understood by Match.
const LexiconVersion = 1

// MatchMode selects how a vocabulary keyword is located in text.
type MatchMode string

const (
	// MatchSubstring reports each keyword at most once if it occurs anywhere,
	// in vocabulary order.
	MatchSubstring MatchMode = "substring"
	// MatchWord reports every whole-word occurrence, in text order.
	MatchWord MatchMode = "word"
)

// Vocabulary is a named, versioned keyword list. Text that matches none of
// the keywords yields nothing; extraction is lossy by contract.
type Vocabulary struct {
	Name     string    `toml:"name" json:"name"`
	Version  int       `toml:"version" json:"version"`
	Mode     MatchMode `toml:"mode" json:"mode"`
	Keywords []string  `toml:"keywords" json:"keywords"`
}

// Built-in vocabulary names.
const (
	VocabMeals      = "meals"
	VocabFoods      = "foods"
	VocabEnergyLow  = "energy_low"
	VocabEnergyHigh = "energy_high"
)

// Lexicon is the set of vocabularies the extractors read.
type Lexicon struct {
	// Meals in priority order: the first matching meal names the record.
	Meals      Vocabulary
	Foods      Vocabulary
	EnergyLow  Vocabulary
	EnergyHigh Vocabulary
}

// DefaultLexicon returns the built-in vocabularies.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Meals: Vocabulary{
			Name: VocabMeals, Version: LexiconVersion, Mode: MatchSubstring,
			Keywords: []string{"breakfast", "lunch", "dinner"},
		},
		Foods: Vocabulary{
			Name: VocabFoods, Version: LexiconVersion, Mode: MatchWord,
			Keywords: []string{"chicken", "fish", "vegetables", "salad", "pasta", "rice", "quinoa", "avocado", "berries", "nuts"},
		},
		EnergyLow: Vocabulary{
			Name: VocabEnergyLow, Version: LexiconVersion, Mode: MatchSubstring,
			Keywords: []string{"tired", "low"},
		},
		EnergyHigh: Vocabulary{
			Name: VocabEnergyHigh, Version: LexiconVersion, Mode: MatchSubstring,
			Keywords: []string{"energetic", "high"},
		},
	}
}

// With returns a copy of the lexicon with the vocabulary of the same name
// replaced. ok is false if the name is not one of the built-in slots.
func (l Lexicon) With(v Vocabulary) (Lexicon, bool) {
	switch v.Name {
	case VocabMeals:
		l.Meals = v
	case VocabFoods:
		l.Foods = v
	case VocabEnergyLow:
		l.EnergyLow = v
	case VocabEnergyHigh:
		l.EnergyHigh = v
	default:
		return l, false
	}
	return l, true
}

// Vocabularies lists the lexicon slots in a fixed order.
func (l Lexicon) Vocabularies() []Vocabulary {
	return []Vocabulary{l.Meals, l.Foods, l.EnergyLow, l.EnergyHigh}
}

// Match returns the keywords of v found in text, case-insensitively.
func Match(text string, v Vocabulary) []string {
	lower := strings.ToLower(text)
	if v.Mode == MatchWord {
		return matchWords(lower, v.Keywords)
	}
	var out []string
	for _, kw := range v.Keywords {
		kw = strings.ToLower(kw)
		if kw != "" && strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

type wordHit struct {
	pos int
	kw  string
}

func matchWords(lower string, keywords []string) []string {
	var hits []wordHit
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		for from := 0; from < len(lower); {
			i := strings.Index(lower[from:], kw)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(kw)
			if (start == 0 || !isWordByte(lower[start-1])) && (end == len(lower) || !isWordByte(lower[end])) {
				hits = append(hits, wordHit{pos: start, kw: kw})
			}
			from = start + 1
		}
	}
	slices.SortStableFunc(hits, func(a, b wordHit) int { return a.pos - b.pos })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.kw)
	}
	return out
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// clockPattern finds simple clock expressions such as "8", "8:15", "0815"
// or "7:30 pm".
var clockPattern = regexp.MustCompile(`(\d{1,2}):?(\d{2})?\s*(am|pm)?`)

// FindClockTime returns the first clock expression in text, lower-cased and
// without trailing whitespace.
func FindClockTime(text string) (string, bool) {
	m := clockPattern.FindString(strings.ToLower(text))
	if m == "" {
		return "", false
	}
	return strings.TrimRight(m, " \t\r\n"), true
}
