// Package extract converts uploaded documents into plain text for analysis.
package extract

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format identifies the declared format of an uploaded document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

// MIME types accepted by the upload surface.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

var (
	// ErrUnsupportedFormat is returned when the declared format is none of pdf, docx or txt.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtraction is returned when the underlying decoder rejects the document.
	ErrExtraction = errors.New("document extraction failed")
)

// Extract returns the normalized text of data interpreted as format.
func Extract(data []byte, format Format) (string, error) {
	switch format {
	case FormatPDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("%w: pdf: %v", ErrExtraction, err)
		}
		return text, nil
	case FormatDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return "", fmt.Errorf("%w: docx: %v", ErrExtraction, err)
		}
		return text, nil
	case FormatText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrExtraction)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

// FormatFromMIME maps an upload content type onto a Format.
func FormatFromMIME(contentType string) (Format, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
	}
	switch mediaType {
	case MIMEPDF:
		return FormatPDF, nil
	case MIMEDOCX:
		return FormatDOCX, nil
	case MIMEText:
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
}

// FormatFromFilename maps a file extension onto a Format.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: file %q", ErrUnsupportedFormat, name)
}

// MIMEType returns the upload content type for f.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return MIMEPDF
	case FormatDOCX:
		return MIMEDOCX
	case FormatText:
		return MIMEText + "; charset=utf-8"
	}
	return "application/octet-stream"
}
