package sentiment

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
)

//go:embed data/*.txt
var data embed.FS

// boosters raise or damp the valence of the word that follows them.
var boosters = map[string]float64{
	"absolutely": boostIncr, "amazingly": boostIncr, "awfully": boostIncr, "completely": boostIncr,
	"considerably": boostIncr, "decidedly": boostIncr, "deeply": boostIncr, "enormously": boostIncr,
	"entirely": boostIncr, "especially": boostIncr, "exceptionally": boostIncr, "extremely": boostIncr,
	"fabulously": boostIncr, "fully": boostIncr, "greatly": boostIncr, "highly": boostIncr,
	"hugely": boostIncr, "incredibly": boostIncr, "intensely": boostIncr, "majorly": boostIncr,
	"more": boostIncr, "most": boostIncr, "particularly": boostIncr, "purely": boostIncr,
	"quite": boostIncr, "really": boostIncr, "remarkably": boostIncr, "so": boostIncr,
	"substantially": boostIncr, "thoroughly": boostIncr, "totally": boostIncr, "tremendously": boostIncr,
	"unbelievably": boostIncr, "unusually": boostIncr, "utterly": boostIncr, "very": boostIncr,

	"almost": boostDecr, "barely": boostDecr, "hardly": boostDecr, "kinda": boostDecr,
	"less": boostDecr, "little": boostDecr, "marginally": boostDecr, "occasionally": boostDecr,
	"partly": boostDecr, "scarcely": boostDecr, "slightly": boostDecr, "somewhat": boostDecr,
}

var negations = map[string]bool{
	"aint": true, "arent": true, "cannot": true, "cant": true, "couldnt": true, "darent": true,
	"didnt": true, "doesnt": true, "dont": true, "hadnt": true, "hasnt": true, "havent": true,
	"isnt": true, "mightnt": true, "mustnt": true, "neither": true, "never": true, "none": true,
	"nope": true, "nor": true, "not": true, "nothing": true, "nowhere": true, "shant": true,
	"shouldnt": true, "wasnt": true, "werent": true, "without": true, "wont": true, "wouldnt": true,
	"rarely": true, "seldom": true, "despite": true,
}

func negated(word string) bool {
	return negations[word] || strings.Contains(word, "n't")
}

func loadLexicon() (map[string]float64, error) {
	raw, err := data.ReadFile("data/vader_lexicon.txt")
	if err != nil {
		return nil, err
	}
	lex := make(map[string]float64, 256)
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		word, val, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("lexicon line %d: missing tab", line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", line, err)
		}
		lex[word] = v
	}
	return lex, sc.Err()
}

func loadStopWords(lang string) (map[string]bool, error) {
	raw, err := data.ReadFile("data/stopwords_" + lang + ".txt")
	if err != nil {
		return nil, err
	}
	stop := make(map[string]bool, 200)
	for _, w := range strings.Fields(string(raw)) {
		stop[w] = true
	}
	return stop, nil
}
