// Package sentiment scores review text on a 0..1 scale.  Text is lower
// cased, stop words are dropped, and the remaining tokens run through a
// VADER-style lexicon analyzer whose compound score is mapped from
// [-1, 1] onto [0, 1] and rounded to two decimals.
package sentiment

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	boostIncr = 0.293
	boostDecr = -0.293
	negScalar = -0.74

	// alpha approximates the maximum expected sum of valences.
	alpha = 15.0
)

// ErrUnsupportedLanguage is returned by Load for languages without bundled
// stop words.
var ErrUnsupportedLanguage = errors.New("sentiment: unsupported language")

var languages = map[string]language.Tag{
	"english": language.English,
}

// Analyzer holds the loaded word lists.  It is immutable after Load and
// safe for concurrent use.
type Analyzer struct {
	lexicon map[string]float64
	stop    map[string]bool
	lower   cases.Caser
	mu      sync.Mutex // guards lower; a Caser keeps per-call state
}

var (
	loadMu sync.Mutex
	loaded = map[string]*Analyzer{}
)

// Load reads the bundled lexicon and the stop words of lang.  Repeated
// calls return the same Analyzer.
func Load(lang string) (*Analyzer, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	tag, ok := languages[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	loadMu.Lock()
	defer loadMu.Unlock()
	if a, ok := loaded[lang]; ok {
		return a, nil
	}
	lex, err := loadLexicon()
	if err != nil {
		return nil, fmt.Errorf("sentiment: load lexicon: %w", err)
	}
	stop, err := loadStopWords(lang)
	if err != nil {
		return nil, fmt.Errorf("sentiment: load stop words: %w", err)
	}
	a := &Analyzer{lexicon: lex, stop: stop, lower: cases.Lower(tag)}
	loaded[lang] = a
	return a, nil
}

// Score returns the sentiment of text in [0, 1].  0.5 is neutral; empty
// text and text without any known word score exactly 0.5.
func (a *Analyzer) Score(text string) float64 {
	a.mu.Lock()
	text = a.lower.String(text)
	a.mu.Unlock()

	kept := make([]string, 0, 16)
	for _, tok := range strings.Fields(text) {
		if !a.stop[tok] {
			kept = append(kept, tok)
		}
	}
	compound := a.Compound(strings.Join(kept, " "))
	return math.Round((1+compound)/2*100) / 100
}

// Compound returns the normalized polarity of already prepared text in
// [-1, 1].
func (a *Analyzer) Compound(text string) float64 {
	words := tokens(text)
	if len(words) == 0 {
		return 0
	}

	valences := make([]float64, len(words))
	for i, w := range words {
		if _, ok := boosters[w]; ok {
			continue
		}
		valences[i] = a.valence(words, i)
	}
	butShift(words, valences)

	var sum float64
	for _, v := range valences {
		sum += v
	}
	if sum > 0 {
		sum += emphasis(text)
	} else if sum < 0 {
		sum -= emphasis(text)
	}
	return normalize(sum)
}

// valence scores words[i] with the boosters and negations found in the
// three words before it.
func (a *Analyzer) valence(words []string, i int) float64 {
	v, ok := a.lexicon[words[i]]
	if !ok {
		return 0
	}
	for back := 1; back <= 3 && i-back >= 0; back++ {
		prev := words[i-back]
		if _, known := a.lexicon[prev]; !known {
			s := boost(prev, v)
			switch back {
			case 2:
				s *= 0.95
			case 3:
				s *= 0.9
			}
			v += s
		}
		if negated(prev) {
			v *= negScalar
		}
	}
	return v
}

func boost(word string, valence float64) float64 {
	s, ok := boosters[word]
	if !ok {
		return 0
	}
	if valence < 0 {
		s = -s
	}
	return s
}

// butShift halves the words before "but" and strengthens those after it.
func butShift(words []string, valences []float64) {
	for i, w := range words {
		if w != "but" {
			continue
		}
		for j := range valences {
			switch {
			case j < i:
				valences[j] *= 0.5
			case j > i:
				valences[j] *= 1.5
			}
		}
		return
	}
}

// emphasis adds intensity for exclamation marks (up to four) and runs of
// question marks.
func emphasis(text string) float64 {
	ep := math.Min(float64(strings.Count(text, "!")), 4) * 0.292
	var qm float64
	if n := strings.Count(text, "?"); n > 1 {
		if n <= 3 {
			qm = float64(n) * 0.18
		} else {
			qm = 0.96
		}
	}
	return ep + qm
}

func normalize(score float64) float64 {
	n := score / math.Sqrt(score*score+alpha)
	return math.Max(-1, math.Min(1, n))
}

// tokens splits on whitespace, strips surrounding punctuation from words
// that stay longer than two characters, and drops one-character tokens.
func tokens(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if s := strings.Trim(f, punctuation); len(s) > 2 {
			f = s
		}
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
