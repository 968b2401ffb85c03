// Package export writes the per-document analysis row as a CSV object.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/docinspector/internal/models"
)

// ContentType of an encoded export.
const ContentType = "text/csv; charset=utf-8"

var header = []string{"id", "filename", "topic", "summary", "keywords", "blob_url"}

// utf8BOM lets spreadsheet tools detect the encoding of Korean text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BlobURL returns the locator recorded for a document's original file.
func BlobURL(container, id string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/originals/%s.pdf", container, id)
}

// NewRow builds the export row of an analyzed document.
func NewRow(id, filename, topic, summary string, keywords []string, container string) models.ExportRow {
	return models.ExportRow{
		ID:       id,
		Filename: filename,
		Topic:    topic,
		Summary:  summary,
		Keywords: strings.Join(keywords, ", "),
		BlobURL:  BlobURL(container, id),
	}
}

// EncodeCSV renders row as a BOM-prefixed UTF-8 CSV with a header line.
func EncodeCSV(row models.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	records := [][]string{
		header,
		{row.ID, row.Filename, row.Topic, row.Summary, row.Keywords, row.BlobURL},
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("encoding export row %s: %w", row.ID, err)
	}
	return buf.Bytes(), nil
}

// ObjectPutter stores an object, replacing any existing one of the same name.
type ObjectPutter interface {
	Put(ctx context.Context, container, object string, data []byte, contentType string) error
}

// BucketExporter writes export rows to <container>/<id>.csv.
type BucketExporter struct {
	store     ObjectPutter
	container string
}

// NewBucketExporter returns an exporter writing into container.
func NewBucketExporter(store ObjectPutter, container string) *BucketExporter {
	return &BucketExporter{store: store, container: container}
}

// ObjectName is the export object name of a document.
func ObjectName(id string) string {
	return id + ".csv"
}

func (e *BucketExporter) Export(ctx context.Context, row models.ExportRow) error {
	data, err := EncodeCSV(row)
	if err != nil {
		return err
	}
	if err := e.store.Put(ctx, e.container, ObjectName(row.ID), data, ContentType); err != nil {
		return fmt.Errorf("uploading export row %s: %w", row.ID, err)
	}
	slog.Info("Export row written.", "documentId", row.ID, "container", e.container)
	return nil
}
