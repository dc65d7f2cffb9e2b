package rule

import (
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maskRune = '_'

// RuneLen 按字符计数的长度
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Normalize 猜词比较前的规范化：去除首尾空白并转小写
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsExact 忽略大小写和首尾空白后是否完全一致
func IsExact(word, guess string) bool {
	w := Normalize(word)
	return w != "" && w == Normalize(guess)
}

// IsClose 是否为接近的猜测：长度相差不超过 1，且逐位不同的字符少于 3 个。
// 较短一方缺失的位置也计为不同。
func IsClose(word, guess string) bool {
	w, g := []rune(word), []rune(guess)
	if abs(len(w)-len(g)) > 1 {
		return false
	}

	diff := 0
	for i := 0; i < max(len(w), len(g)); i++ {
		if i >= len(w) || i >= len(g) || w[i] != g[i] {
			diff++
		}
	}
	return diff < 3
}

// Mask 将字母、数字和下划线替换为 '_'，保留空格与标点，长度不变
func Mask(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if isWordRune(r) {
			b.WriteRune(maskRune)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Hidden 仍可揭示的位置
func Hidden(word, hint string) []int {
	w, h := []rune(word), []rune(hint)
	var out []int
	for i := range min(len(w), len(h)) {
		if h[i] == maskRune && w[i] != maskRune {
			out = append(out, i)
		}
	}
	return out
}

// RevealHint 随机揭示一个仍被遮挡的字符。没有可揭示位置时返回原提示和 false。
// rng 为 nil 时使用全局随机源。
func RevealHint(word, hint string, rng *rand.Rand) (string, bool) {
	hidden := Hidden(word, hint)
	if len(hidden) == 0 {
		return hint, false
	}

	var pick int
	if rng != nil {
		pick = hidden[rng.IntN(len(hidden))]
	} else {
		pick = hidden[rand.IntN(len(hidden))]
	}

	w, h := []rune(word), []rune(hint)
	h[pick] = w[pick]
	return string(h), true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
