package rule

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestIsClose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		word, guess string
		want        bool
	}{
		{"apple", "appel", true},
		{"apple", "aple", false}, // shift counts every following position
		{"apple", "apples", true},
		{"apple", "orange", false},
		{"apple", "apple", true},
		{"hello", "help", true}, // 'l'/'p' and missing 'o'
		{"cat", "dog", false},
		{"tree", "trees!", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsClose(tt.word, tt.guess), "IsClose(%q, %q)", tt.word, tt.guess)
	}
}

func TestIsExact(t *testing.T) {
	t.Parallel()

	assert.True(t, IsExact("Apple", "  aPPle "))
	assert.False(t, IsExact("apple", "apples"))
	assert.False(t, IsExact("", " "))
}

func TestMask(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_____", Mask("apple"))
	assert.Equal(t, "___ ___-___", Mask("ice tea-cup"))
	assert.Equal(t, "__ __!", Mask("R2 d_!"))
	assert.Equal(t, "___", Mask("чай"))
}

func TestRevealHint(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	word := "ice cream"
	hint := Mask(word)

	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		var ok bool
		hint, ok = RevealHint(word, hint, rng)
		require.True(t, ok)
		assert.False(t, seen[hint], "every reveal uncovers a new position")
		seen[hint] = true
	}

	assert.Equal(t, word, hint)
	_, ok := RevealHint(word, hint, rng)
	assert.False(t, ok)
}

func TestRevealHint_SkipsUnderscoreInWord(t *testing.T) {
	t.Parallel()

	word := "a_b"
	hint, ok := RevealHint(word, Mask(word), nil)
	require.True(t, ok)
	hint, ok = RevealHint(word, hint, nil)
	require.True(t, ok)
	assert.Equal(t, word, hint)
	assert.Empty(t, Hidden(word, hint))
}

func TestHintProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z_ \-]{1,16}`).Draw(t, "word")
		seed := rapid.Uint64().Draw(t, "seed")
		rng := rand.New(rand.NewPCG(seed, seed^0x9e37))

		hint := Mask(word)
		if RuneLen(hint) != RuneLen(word) {
			t.Fatalf("mask changed length: %q -> %q", word, hint)
		}

		hidden := len(Hidden(word, hint))
		for n := 0; n < hidden; n++ {
			next, ok := RevealHint(word, hint, rng)
			if !ok {
				t.Fatalf("reveal %d failed with hidden positions left", n)
			}
			if RuneLen(next) != RuneLen(word) {
				t.Fatalf("hint length changed")
			}
			changed := 0
			for i, r := range []rune(next) {
				before := []rune(hint)[i]
				if r != before {
					changed++
					if before != '_' || r != []rune(word)[i] {
						t.Fatalf("position %d revealed wrongly", i)
					}
				}
			}
			if changed != 1 {
				t.Fatalf("reveal changed %d positions", changed)
			}
			hint = next
		}
		if hint != word {
			t.Fatalf("fully revealed hint %q != %q", hint, word)
		}
		if strings.Count(hint, "_") != strings.Count(word, "_") {
			t.Fatalf("underscores differ")
		}
	})
}

func TestIsClose_Symmetric(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.StringMatching(`[a-c]{0,6}`).Draw(t, "a")
		b := rapid.StringMatching(`[a-c]{0,6}`).Draw(t, "b")
		if IsClose(a, b) != IsClose(b, a) {
			t.Fatalf("IsClose not symmetric for %q %q", a, b)
		}
		if IsClose(a, b) && abs(RuneLen(a)-RuneLen(b)) > 1 {
			t.Fatalf("length rule violated")
		}
	})
}
