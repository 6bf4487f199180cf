package parser

import (
	"errors"
	"fmt"
	"strings"

	"qa/chunker"
	"qa/types"
)

var ErrNotSupported = errors.New("file type not supported")

type Kind int

const (
	KindPDF Kind = iota
	KindDocx
	KindNormal
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "PDF"
	case KindDocx:
		return "DOCX"
	default:
		return "NORMAL"
	}
}

// File is an uploaded document waiting to be extracted and chunked.
type File struct {
	FileName string
	Uploader string
	Path     string
	Kind     Kind
}

func (f File) String() string {
	return fmt.Sprintf("%s { file_name: %s, uploader: %s, path: %s }", f.Kind, f.FileName, f.Uploader, f.Path)
}

// Match picks the extractor for a file by its name. Unsupported types are
// rejected here, before anything touches the ingestion queue.
func Match(fileName, uploader, path string) (File, error) {
	file := File{FileName: fileName, Uploader: uploader, Path: path}
	switch {
	case strings.HasSuffix(strings.ToLower(fileName), ".pdf"):
		file.Kind = KindPDF
	case strings.HasSuffix(strings.ToLower(fileName), ".docx"):
		file.Kind = KindDocx
	case strings.HasSuffix(strings.ToLower(fileName), ".txt"),
		strings.HasSuffix(strings.ToLower(fileName), ".md"):
		file.Kind = KindNormal
	default:
		return File{}, fmt.Errorf("%w: %s", ErrNotSupported, fileName)
	}
	return file, nil
}

// Parse extracts the file's text units and chunks them. The chunker only
// ever sees ordered text units; which extractor produced them is decided
// here and nowhere else.
func (f File) Parse(c *chunker.Chunker) (types.Knowledge, error) {
	var (
		units []string
		err   error
	)
	switch f.Kind {
	case KindPDF:
		units, err = extractPDF(f.Path)
	case KindDocx:
		units, err = extractDocx(f.Path)
	default:
		units, err = extractNormal(f.Path)
	}
	if err != nil {
		return types.Knowledge{}, fmt.Errorf("parse %s: %w", f.FileName, err)
	}
	return types.Knowledge{
		FileName: f.FileName,
		Uploader: f.Uploader,
		Chunks:   c.Chunk(units),
	}, nil
}
