package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var xmlTag = regexp.MustCompile(`<[^>]+>`)

// extractDocx pulls paragraph text out of the document body and joins the
// paragraphs with newlines into a single unit. DOCX has no page numbers, so
// everything counts as page 1; the newline separators keep paragraph
// boundaries as legal cut points for the chunker.
func extractDocx(path string) ([]string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var paras []string
	for _, block := range strings.Split(content, "</w:p>") {
		text := strings.TrimSpace(xmlTag.ReplaceAllString(block, ""))
		if text != "" {
			paras = append(paras, text)
		}
	}
	if len(paras) == 0 {
		return nil, nil
	}
	return []string{strings.Join(paras, "\n")}, nil
}
