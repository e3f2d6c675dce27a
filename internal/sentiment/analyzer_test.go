package sentiment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func english(t *testing.T) *Analyzer {
	t.Helper()
	a, err := Load("english")
	require.NoError(t, err)
	return a
}

func TestScore_Polarity(t *testing.T) {
	a := english(t)

	assert.Greater(t, a.Score("I loved the food, great service"), 0.5)
	assert.Less(t, a.Score("Terrible, rude staff, awful food"), 0.5)
	assert.Equal(t, 0.5, a.Score(""))
	assert.Equal(t, 0.5, a.Score("the table by the window"))
}

func TestScore_RangeAndRounding(t *testing.T) {
	a := english(t)
	for _, text := range []string{
		"WORST. MEAL. EVER. vile, disgusting, filthy, rude, awful, horrible!!!!",
		"best superb outstanding wonderful perfect heavenly!!!!",
		"ok",
	} {
		s := a.Score(text)
		assert.GreaterOrEqual(t, s, 0.0, text)
		assert.LessOrEqual(t, s, 1.0, text)
		assert.InDelta(t, s, float64(int(s*100+0.5))/100, 1e-9, "two decimals: %s", text)
	}
}

func TestScore_LowerCasesBeforeLookup(t *testing.T) {
	a := english(t)
	assert.Equal(t, a.Score("great food"), a.Score("GREAT Food"))
}

func TestCompound_Rules(t *testing.T) {
	a := english(t)

	assert.Less(t, a.Compound("not good"), 0.0, "negation flips")
	assert.Greater(t, a.Compound("extremely tasty"), a.Compound("tasty"), "booster raises")
	assert.Less(t, a.Compound("slightly tasty"), a.Compound("tasty"), "dampener lowers")
	assert.Greater(t, a.Compound("great!"), a.Compound("great"), "exclamation emphasizes")
	assert.Less(t, a.Compound("food was great but service was awful"), 0.0, "clause after but dominates")
	assert.Zero(t, a.Compound(""))
}

func TestLoad_IsIdempotentAndRejectsUnknownLanguages(t *testing.T) {
	first := english(t)
	second, err := Load(" English ")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = Load("klingon")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestScore_ConcurrentCallsAgree(t *testing.T) {
	a := english(t)
	const text = "lovely staff, delicious pasta, slow kitchen"
	want := a.Score(text)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, a.Score(text))
		}()
	}
	wg.Wait()
}
