package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qa/chunker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchDispatchesByExtension(t *testing.T) {
	tests := []struct {
		fileName string
		kind     Kind
	}{
		{"report.pdf", KindPDF},
		{"REPORT.PDF", KindPDF},
		{"notes.docx", KindDocx},
		{"readme.txt", KindNormal},
		{"guide.md", KindNormal},
	}
	for _, tt := range tests {
		file, err := Match(tt.fileName, "alice", "/tmp/"+tt.fileName)
		require.NoError(t, err, tt.fileName)
		assert.Equal(t, tt.kind, file.Kind)
		assert.Equal(t, "alice", file.Uploader)
	}
}

func TestMatchRejectsUnsupportedTypes(t *testing.T) {
	_, err := Match("archive.zip", "", "/tmp/archive.zip")
	assert.ErrorIs(t, err, ErrNotSupported)

	_, err = Match("noextension", "", "/tmp/noextension")
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestParseNormalFileLineUnits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "first line\nsecond line\nthird line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	file, err := Match("notes.txt", "bob", path)
	require.NoError(t, err)

	c := chunker.New(1, func(text string) int { return len(strings.Fields(text)) })
	knowledge, err := file.Parse(c)
	require.NoError(t, err)

	require.Len(t, knowledge.Chunks, 3)
	assert.Equal(t, "notes.txt", knowledge.FileName)
	assert.Equal(t, "bob", knowledge.Uploader)
	// Plain text units are lines, so pages are 1-based line numbers.
	assert.Equal(t, 1, knowledge.Chunks[0].Page)
	assert.Equal(t, 2, knowledge.Chunks[1].Page)
	assert.Equal(t, 3, knowledge.Chunks[2].Page)
}

func TestSplitUnits(t *testing.T) {
	assert.Nil(t, splitUnits(""))
	assert.Equal(t, []string{"a", "b"}, splitUnits("a\nb"))
	assert.Equal(t, []string{"a", "b"}, splitUnits("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, splitUnits("a\n\nb"))
}
