package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/docinspector/internal/extract"
	"github.com/Lllllllleong/docinspector/internal/gcp"
	"github.com/Lllllllleong/docinspector/internal/llm"
	"github.com/Lllllllleong/docinspector/internal/llm/llmtest"
	"github.com/Lllllllleong/docinspector/internal/models"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Put(_ context.Context, container, object string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[container+"/"+object] = append([]byte(nil), data...)
	s.types[container+"/"+object] = contentType
	return nil
}

func (s *memStore) Get(_ context.Context, container, object string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[container+"/"+object]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", container, object, gcp.ErrObjectNotFound)
	}
	return data, nil
}

func (s *memStore) Locator(container, object string) string {
	return "mem://" + container + "/" + object
}

type fakeExporter struct {
	mu   sync.Mutex
	rows []models.ExportRow
	err  error
}

func (e *fakeExporter) Export(_ context.Context, row models.ExportRow) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, row)
	return e.err
}

type statusUpdate struct {
	id, status, details string
}

type fakeRecorder struct {
	mu       sync.Mutex
	created  []models.Document
	updates  []statusUpdate
	analyzed []models.Document
}

func (r *fakeRecorder) Create(_ context.Context, doc models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, doc)
	return nil
}

func (r *fakeRecorder) UpdateStatus(_ context.Context, id, status, details string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, statusUpdate{id, status, details})
	return nil
}

func (r *fakeRecorder) RecordAnalysis(_ context.Context, doc models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyzed = append(r.analyzed, doc)
	return nil
}

func (r *fakeRecorder) lastStatus() string {
	if len(r.updates) == 0 {
		return ""
	}
	return r.updates[len(r.updates)-1].status
}

var testConfig = InspectorConfig{
	ProjectID:          "proj",
	OriginalsContainer: "originals",
	ExportContainer:    "exports",
	CollectionName:     "documents",
}

var searchSource = llm.SearchDataSource{Endpoint: "https://search", IndexName: "docs", APIKey: "k"}

const checklistReply = "- 목표를 확인해야 함\n- 일정을 검토해야 함"

func scriptedClient() *llmtest.Client {
	return llmtest.New("프로젝트 계획", "요약", "프로젝트, 계획", checklistReply, "① 제목: 유사 문서")
}

type harness struct {
	client   *llmtest.Client
	store    *memStore
	exporter *fakeExporter
	recorder *fakeRecorder
	f        *InspectorFunction
}

func newHarness(client *llmtest.Client, source llm.SearchDataSource) *harness {
	h := &harness{
		client:   client,
		store:    newMemStore(),
		exporter: &fakeExporter{},
		recorder: &fakeRecorder{},
	}
	h.f = NewInspectorWith(testConfig, client, source, h.store, h.exporter, h.recorder)
	return h
}

func TestProcess(t *testing.T) {
	h := newHarness(scriptedClient(), searchSource)
	req := &models.AnalyzeRequest{
		Filename:    "plan.txt",
		ContentType: "text/plain",
		Content:     []byte("Project X plan..."),
	}

	res, err := h.f.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.NotEmpty(t, res.DocumentID)
	assert.Equal(t, "프로젝트 계획", res.Topic)
	assert.Equal(t, "요약", res.Summary)
	assert.ElementsMatch(t, []string{"프로젝트", "계획"}, res.Keywords)
	assert.Equal(t, []string{"목표를 확인해야 함", "일정을 검토해야 함"}, res.Checklist)
	assert.Equal(t, "① 제목: 유사 문서", res.Recommendation)
	assert.Equal(t, "mem://originals/plan.txt", res.StorageLocator)

	assert.Equal(t, []byte("Project X plan..."), h.store.objects["originals/plan.txt"])
	assert.Equal(t, 5, h.client.Calls())
	require.NotNil(t, h.client.Requests[4].DataSource)

	require.Len(t, h.recorder.created, 1)
	assert.Equal(t, res.DocumentID, h.recorder.created[0].ID)
	assert.Equal(t, models.StatusUploaded, h.recorder.created[0].Status)
	assert.Equal(t, []statusUpdate{{res.DocumentID, models.StatusAnalyzing, ""}}, h.recorder.updates)

	require.Len(t, h.recorder.analyzed, 1)
	assert.Equal(t, "프로젝트 계획", h.recorder.analyzed[0].Topic)
	assert.Equal(t, res.StorageLocator, h.recorder.analyzed[0].StorageLocator)

	require.Len(t, h.exporter.rows, 1)
	row := h.exporter.rows[0]
	assert.Equal(t, res.DocumentID, row.ID)
	assert.Equal(t, "plan.txt", row.Filename)
	assert.Equal(t, "https://originals.blob.core.windows.net/originals/"+res.DocumentID+".pdf", row.BlobURL)
}

func TestProcess_UniqueIDs(t *testing.T) {
	h := newHarness(llmtest.New(), llm.SearchDataSource{})
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		h.client.Then("주제", nil).Then("요약", nil).Then("키워드", nil).Then(checklistReply, nil)
		res, err := h.f.Process(context.Background(), &models.AnalyzeRequest{Filename: "a.txt", Content: []byte("x")})
		require.NoError(t, err)
		assert.False(t, seen[res.DocumentID])
		seen[res.DocumentID] = true
	}
}

func TestProcess_InvalidRequests(t *testing.T) {
	h := newHarness(scriptedClient(), searchSource)

	_, err := h.f.Process(context.Background(), &models.AnalyzeRequest{Filename: "a.txt"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = h.f.Process(context.Background(), &models.AnalyzeRequest{Filename: "a.png", ContentType: "image/png", Content: []byte{1}})
	assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)

	assert.Empty(t, h.recorder.created)
	assert.Zero(t, h.client.Calls())
}

func TestProcess_ExtractionFailureMarksFailed(t *testing.T) {
	h := newHarness(scriptedClient(), searchSource)

	_, err := h.f.Process(context.Background(), &models.AnalyzeRequest{
		Filename:    "broken.pdf",
		ContentType: "application/pdf",
		Content:     []byte("not a pdf"),
	})
	assert.ErrorIs(t, err, extract.ErrExtraction)
	assert.Equal(t, models.StatusFailed, h.recorder.lastStatus())
	assert.Zero(t, h.client.Calls())
	assert.Empty(t, h.exporter.rows)
}

func TestProcess_GenerationFailureStopsPipeline(t *testing.T) {
	client := (&llmtest.Client{}).Then("주제", nil).Then("", fmt.Errorf("%w: boom", llm.ErrGeneration))
	h := newHarness(client, searchSource)

	_, err := h.f.Process(context.Background(), &models.AnalyzeRequest{Filename: "a.txt", Content: []byte("x")})
	assert.ErrorIs(t, err, llm.ErrGeneration)
	assert.Equal(t, 2, client.Calls())
	assert.Equal(t, models.StatusFailed, h.recorder.lastStatus())
	assert.Contains(t, h.recorder.updates[len(h.recorder.updates)-1].details, "failed to analyze document")
	assert.Empty(t, h.recorder.analyzed)
}

func TestProcess_StoreFailure(t *testing.T) {
	h := newHarness(scriptedClient(), searchSource)
	h.store.putErr = errors.New("bucket missing")

	_, err := h.f.Process(context.Background(), &models.AnalyzeRequest{Filename: "a.txt", Content: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, models.StatusFailed, h.recorder.lastStatus())
	assert.Zero(t, h.client.Calls())
}

func TestProcess_ExportFailure(t *testing.T) {
	h := newHarness(scriptedClient(), searchSource)
	h.exporter.err = errors.New("quota")

	_, err := h.f.Process(context.Background(), &models.AnalyzeRequest{Filename: "a.txt", Content: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to archive analysis")
	assert.Equal(t, models.StatusFailed, h.recorder.lastStatus())
}

func TestInspect_SkipsSearchWhenUnconfigured(t *testing.T) {
	client := llmtest.New("주제", "요약", "키워드", checklistReply)
	h := newHarness(client, llm.SearchDataSource{})

	ins, err := h.f.Inspect(context.Background(), []byte("text"), extract.FormatText)
	require.NoError(t, err)
	assert.Empty(t, ins.Recommendation)
	assert.Equal(t, 4, client.Calls())
	assert.Empty(t, h.recorder.created)
}

func TestInspect_SkipsSearchWhenBackendCannotRetrieve(t *testing.T) {
	client := llmtest.New("주제", "요약", "키워드", checklistReply).
		Then("", fmt.Errorf("%w: vertex", llm.ErrRetrievalUnsupported))
	h := newHarness(client, searchSource)

	ins, err := h.f.Inspect(context.Background(), []byte("text"), extract.FormatText)
	require.NoError(t, err)
	assert.Empty(t, ins.Recommendation)
	assert.Equal(t, 5, client.Calls())
}

func TestProcessObject(t *testing.T) {
	h := newHarness(scriptedClient(), searchSource)
	h.store.objects["uploads/inbox/plan.txt"] = []byte("Project X plan...")

	res, err := h.f.ProcessObject(context.Background(), models.GCSEvent{Bucket: "uploads", Name: "inbox/plan.txt"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "mem://uploads/inbox/plan.txt", res.StorageLocator)

	require.Len(t, h.recorder.created, 1)
	assert.Equal(t, "plan.txt", h.recorder.created[0].Filename)
	_, copied := h.store.objects["originals/plan.txt"]
	assert.False(t, copied, "stored objects are not uploaded again")
	assert.Len(t, h.exporter.rows, 1)
}

func TestProcessObject_SkipsUnsupported(t *testing.T) {
	h := newHarness(scriptedClient(), searchSource)

	res, err := h.f.ProcessObject(context.Background(), models.GCSEvent{Bucket: "exports", Name: "id.csv", ContentType: "text/csv"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, h.recorder.created)
}

func TestProcessObject_MissingObject(t *testing.T) {
	h := newHarness(scriptedClient(), searchSource)

	_, err := h.f.ProcessObject(context.Background(), models.GCSEvent{Bucket: "uploads", Name: "gone.txt"})
	assert.ErrorIs(t, err, gcp.ErrObjectNotFound)
	assert.Empty(t, h.recorder.created)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		contentType, name string
		want              extract.Format
	}{
		{"application/pdf", "x.bin", extract.FormatPDF},
		{"", "Report.DOCX", extract.FormatDOCX},
		{"application/octet-stream", "notes.txt", extract.FormatText},
		{"text/plain; charset=utf-8", "x", extract.FormatText},
	}
	for _, tt := range tests {
		got, err := detectFormat(tt.contentType, tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLoadInspectorConfig(t *testing.T) {
	t.Setenv("PROJECT_ID", "p")
	t.Setenv("BLOB_CONTAINER_NAME", "orig")
	t.Setenv("BLOB_CSV_CONTAINER_NAME", "")

	_, err := LoadInspectorConfig()
	require.Error(t, err)

	t.Setenv("BLOB_CSV_CONTAINER_NAME", "csv")
	cfg, err := LoadInspectorConfig()
	require.NoError(t, err)
	assert.Equal(t, "documents", cfg.CollectionName)
	assert.Equal(t, 5, cfg.ChecklistItems)
}
