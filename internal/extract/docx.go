package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxMainPart = "word/document.xml"

// extractDOCX returns the text of every top-level body paragraph, each
// followed by a newline. Paragraphs nested in tables or text boxes are not
// part of the body sequence and are skipped.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open package: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxMainPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("package has no %s", docxMainPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxMainPart, err)
	}
	defer rc.Close()

	return readBodyParagraphs(rc)
}

func readBodyParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out     strings.Builder
		para    strings.Builder
		stack   []string
		inPara  bool
		inText  bool
		sawBody bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxMainPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "body" {
				sawBody = true
			}
			if name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body" {
				inPara = true
				para.Reset()
			}
			if inPara {
				switch name {
				case "t":
					inText = true
				case "tab":
					para.WriteByte('\t')
				case "br", "cr":
					para.WriteByte('\n')
				}
			}
			stack = append(stack, name)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara && len(stack) > 0 && stack[len(stack)-1] == "body" {
					out.WriteString(para.String())
					out.WriteByte('\n')
					inPara = false
				}
			}
		case xml.CharData:
			if inPara && inText {
				para.Write(t)
			}
		}
	}

	if !sawBody {
		return "", fmt.Errorf("%s has no document body", docxMainPart)
	}
	return out.String(), nil
}
