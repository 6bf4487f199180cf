package chunker

import (
	"fmt"
	"strings"

	"qa/types"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter reports how many tokens a piece of text encodes to. It must
// be deterministic: the budget check depends on the same text always costing
// the same amount.
type TokenCounter func(text string) int

// Chunker packs text units into token-bounded chunks. An under-budget
// accumulator carries across unit boundaries, so small units share a chunk
// instead of each producing their own.
type Chunker struct {
	budget int
	count  TokenCounter
}

func New(budget int, counter TokenCounter) *Chunker {
	return &Chunker{budget: budget, count: counter}
}

// NewTiktoken builds a chunker counting cl100k_base tokens. The encoding is
// constructed once here; callers treat failure as fatal at startup rather
// than discovering it per chunk.
func NewTiktoken(budget int) (*Chunker, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	counter := func(text string) int {
		return len(enc.Encode(text, []string{"all"}, nil))
	}
	return New(budget, counter), nil
}

// Chunk greedily packs the units' lines into chunks. A chunk records the
// 1-based index of the unit where it started. Cuts happen only at line
// boundaries, after the running count first exceeds the budget: a single
// over-long line pushes its chunk over budget with no earlier cut.
func (c *Chunker) Chunk(units []string) []types.Chunk {
	var chunks []types.Chunk
	var carry types.Chunk
	carryTokens := 0

	for page, content := range units {
		chunk := carry
		currentTokens := carryTokens
		for _, line := range splitLines(content) {
			newLine := line + "\n"
			if chunk.Content == "" {
				chunk.Page = page + 1
			}
			currentTokens += c.count(newLine)
			chunk.Content += newLine
			if currentTokens > c.budget {
				chunks = append(chunks, chunk)
				chunk = types.Chunk{}
				currentTokens = 0
			}
		}
		carry = chunk
		carryTokens = currentTokens
	}
	if carry.Content != "" {
		chunks = append(chunks, carry)
	}
	return chunks
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
