package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF concatenates the text of every page in page order. No separator
// is inserted between pages. Fonts are decoded through their ToUnicode CMaps.
func extractPDF(data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if _, err := api.ReadAndValidate(bytes.NewReader(data), conf); err != nil {
		return "", fmt.Errorf("read and validate: %w", err)
	}
	return pageText(data)
}

// pageText reads the text layer of an already validated PDF.
func pageText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read text: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(pdfHeaderCompat(data)), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open reader: %w", err)
	}

	var out strings.Builder
	for pageNr := 1; pageNr <= r.NumPage(); pageNr++ {
		p := r.Page(pageNr)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNr, err)
		}
		out.WriteString(content)
	}
	return out.String(), nil
}

// pdfHeaderCompat rewrites a %PDF-2.x header as %PDF-1.7. The text reader
// only accepts 1.x headers; the byte length, and so every xref offset, is kept.
func pdfHeaderCompat(data []byte) []byte {
	if !bytes.HasPrefix(data, []byte("%PDF-2.")) {
		return data
	}
	patched := bytes.Clone(data)
	copy(patched, "%PDF-1.7")
	return patched
}
