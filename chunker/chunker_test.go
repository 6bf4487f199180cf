package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordCounter stands in for the subword tokenizer: deterministic and easy
// to reason about in budgets.
func wordCounter(text string) int {
	return len(strings.Fields(text))
}

func TestChunkCarryOverAcrossUnits(t *testing.T) {
	c := New(10, wordCounter)

	units := []string{
		"one two three four five six",
		"uno dos tres cuatro cinco seis",
	}
	chunks := c.Chunk(units)

	require.Len(t, chunks, 1, "two under-budget units must share a chunk")
	assert.Equal(t, 1, chunks[0].Page, "chunk page is the unit it started in")
	assert.Equal(t, units[0]+"\n"+units[1]+"\n", chunks[0].Content)
}

func TestChunkCutsOnlyAtLineBoundaries(t *testing.T) {
	c := New(3, wordCounter)

	unit := "aa bb\ncc dd\nee ff\ngg hh"
	chunks := c.Chunk([]string{unit})

	require.Len(t, chunks, 2)
	assert.Equal(t, "aa bb\ncc dd\n", chunks[0].Content)
	assert.Equal(t, "ee ff\ngg hh\n", chunks[1].Content)

	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk.Content)
	}
	assert.Equal(t, unit+"\n", rebuilt.String(), "concatenated chunks reproduce the text")
}

func TestChunkOverlongLineIsNotSplit(t *testing.T) {
	c := New(5, wordCounter)

	line := strings.Repeat("word ", 50)
	line = strings.TrimSpace(line)
	chunks := c.Chunk([]string{line})

	require.Len(t, chunks, 1, "a single over-budget line still yields one chunk")
	assert.Equal(t, line+"\n", chunks[0].Content)
}

func TestChunkPageFollowsAccumulatorStart(t *testing.T) {
	c := New(1, wordCounter)

	chunks := c.Chunk([]string{"alpha beta", "gamma delta"})

	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[1].Page)
}

func TestChunkEmptyInput(t *testing.T) {
	c := New(10, wordCounter)

	assert.Empty(t, c.Chunk(nil))
	assert.Empty(t, c.Chunk([]string{"", ""}))
}

func TestChunkTrailingAccumulatorFlushed(t *testing.T) {
	c := New(100, wordCounter)

	chunks := c.Chunk([]string{"small unit"})

	require.Len(t, chunks, 1)
	assert.Equal(t, "small unit\n", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].Page)
}
