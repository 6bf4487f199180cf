package parser

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractPDF returns one text unit per page, so chunk pages line up with
// printable page numbers. The file is validated first; a broken upload is
// rejected before extraction produces garbage units.
func extractPDF(path string) ([]string, error) {
	if err := pdfapi.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	units := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			units = append(units, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		units = append(units, text)
	}
	return units, nil
}
