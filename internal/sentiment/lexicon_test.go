package sentiment

import (
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicon_FileIsWellFormed(t *testing.T) {
	raw, err := data.ReadFile("data/vader_lexicon.txt")
	require.NoError(t, err)

	var words []string
	for _, line := range strings.Split(string(raw), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, val, ok := strings.Cut(line, "\t")
		require.True(t, ok, "line %q has no tab", line)
		assert.Equal(t, strings.ToLower(word), word)
		v, err := strconv.ParseFloat(val, 64)
		require.NoError(t, err, "line %q", line)
		assert.True(t, v >= -4 && v <= 4, "%s=%v outside -4..4", word, v)
		assert.NotZero(t, v, "%s carries no sentiment", word)
		words = append(words, word)
	}
	assert.True(t, sort.StringsAreSorted(words), "entries must stay sorted")

	lex, err := loadLexicon()
	require.NoError(t, err)
	assert.Len(t, lex, len(words), "duplicate entries")
}

func TestLexicon_CoversReviewVocabulary(t *testing.T) {
	lex, err := loadLexicon()
	require.NoError(t, err)

	for _, w := range []string{"delicious", "tasty", "friendly", "attentive", "cozy", "recommend"} {
		assert.Greater(t, lex[w], 0.0, w)
	}
	for _, w := range []string{"bland", "rude", "overpriced", "stale", "dirty", "slow"} {
		assert.Less(t, lex[w], 0.0, w)
	}
	assert.Greater(t, lex["excellent"], lex["good"])
	assert.Less(t, lex["worst"], lex["bad"])
}
