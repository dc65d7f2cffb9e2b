// Package word 词库加载与抽样
package word

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed words.yaml
var defaultWords []byte

// ErrEmptyList 词库为空
var ErrEmptyList = errors.New("word list is empty")

// Source 词库
type Source interface {
	// Sample 抽取至多 n 个互不相同的词
	Sample(n int) []string
	Len() int
}

// List 基于内存切片的词库
type List struct {
	words []string
	rng   *rand.Rand
}

type listFile struct {
	Words []string `yaml:"words"`
}

// NewList 创建词库，去除空白项和重复项
func NewList(words []string) (*List, error) {
	seen := make(map[string]struct{}, len(words))
	clean := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, w)
	}
	if len(clean) == 0 {
		return nil, ErrEmptyList
	}
	return &List{words: clean}, nil
}

// WithRand 指定随机源，便于测试复现
func (l *List) WithRand(rng *rand.Rand) *List {
	l.rng = rng
	return l
}

// Len 词数
func (l *List) Len() int { return len(l.words) }

// Sample 抽取至多 n 个互不相同的词
func (l *List) Sample(n int) []string {
	n = min(n, len(l.words))
	if n <= 0 {
		return nil
	}

	perm := l.perm(len(l.words))
	out := make([]string, n)
	for i := range n {
		out[i] = l.words[perm[i]]
	}
	return out
}

func (l *List) perm(n int) []int {
	if l.rng != nil {
		return l.rng.Perm(n)
	}
	return rand.Perm(n)
}

// Parse 解析 YAML 格式的词库
func Parse(data []byte) (*List, error) {
	var f listFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse word list: %w", err)
	}
	return NewList(f.Words)
}

// LoadFile 从文件加载词库
func LoadFile(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return Parse(data)
}

// Default 内置词库
func Default() *List {
	l, err := Parse(defaultWords)
	if err != nil {
		panic(err)
	}
	return l
}
