package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/docinspector/internal/models"
)

type putCall struct {
	container, object, contentType string
	data                           []byte
}

type fakeStore struct {
	puts []putCall
	err  error
}

func (f *fakeStore) Put(_ context.Context, container, object string, data []byte, contentType string) error {
	f.puts = append(f.puts, putCall{container, object, contentType, data})
	return f.err
}

func TestBlobURL(t *testing.T) {
	assert.Equal(t,
		"https://originals-acct.blob.core.windows.net/originals/abc-123.pdf",
		BlobURL("originals-acct", "abc-123"))
}

func TestNewRow(t *testing.T) {
	row := NewRow("id1", "plan.docx", "주제", "요약", []string{"계획", "프로젝트"}, "store")
	assert.Equal(t, models.ExportRow{
		ID:       "id1",
		Filename: "plan.docx",
		Topic:    "주제",
		Summary:  "요약",
		Keywords: "계획, 프로젝트",
		BlobURL:  "https://store.blob.core.windows.net/originals/id1.pdf",
	}, row)
}

func TestEncodeCSV(t *testing.T) {
	row := NewRow("id1", "plan.pdf", "주제, 계획", "첫 줄\n\"인용\"", []string{"a1", "b2"}, "c")

	data, err := EncodeCSV(row)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "filename", "topic", "summary", "keywords", "blob_url"}, records[0])
	assert.Equal(t, []string{"id1", "plan.pdf", "주제, 계획", "첫 줄\n\"인용\"", "a1, b2", "https://c.blob.core.windows.net/originals/id1.pdf"}, records[1])
}

func TestBucketExporter(t *testing.T) {
	store := &fakeStore{}
	row := NewRow("doc-9", "x.txt", "t", "s", nil, "c")

	require.NoError(t, NewBucketExporter(store, "csv-container").Export(context.Background(), row))
	require.Len(t, store.puts, 1)
	assert.Equal(t, "csv-container", store.puts[0].container)
	assert.Equal(t, "doc-9.csv", store.puts[0].object)
	assert.Equal(t, ContentType, store.puts[0].contentType)

	want, err := EncodeCSV(row)
	require.NoError(t, err)
	assert.Equal(t, want, store.puts[0].data)
}

func TestBucketExporter_PutFailure(t *testing.T) {
	boom := errors.New("permission denied")
	err := NewBucketExporter(&fakeStore{err: boom}, "c").Export(context.Background(), models.ExportRow{ID: "x"})
	assert.ErrorIs(t, err, boom)
}
