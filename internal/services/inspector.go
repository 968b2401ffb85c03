package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/docinspector/internal/analysis"
	"github.com/Lllllllleong/docinspector/internal/checklist"
	"github.com/Lllllllleong/docinspector/internal/export"
	"github.com/Lllllllleong/docinspector/internal/extract"
	"github.com/Lllllllleong/docinspector/internal/gcp"
	"github.com/Lllllllleong/docinspector/internal/llm"
	"github.com/Lllllllleong/docinspector/internal/models"
	"github.com/Lllllllleong/docinspector/internal/recommend"
)

// ErrInvalidRequest is returned for requests missing a filename or content.
var ErrInvalidRequest = errors.New("invalid analyze request")

// ObjectStore persists whole objects, overwriting on conflict.
type ObjectStore interface {
	Put(ctx context.Context, container, object string, data []byte, contentType string) error
	Get(ctx context.Context, container, object string) ([]byte, error)
	Locator(container, object string) string
}

// Exporter archives the tabular row of an analyzed document.
type Exporter interface {
	Export(ctx context.Context, row models.ExportRow) error
}

// DocumentRecorder tracks the lifecycle of each document.
type DocumentRecorder interface {
	Create(ctx context.Context, doc models.Document) error
	UpdateStatus(ctx context.Context, id, status, errDetails string) error
	RecordAnalysis(ctx context.Context, doc models.Document) error
}

// InspectorConfig holds the configuration of the inspection pipeline.
type InspectorConfig struct {
	ProjectID          string
	OriginalsContainer string
	ExportContainer    string
	CollectionName     string
	ChecklistItems     int
}

// Inspection is the analysis output of one document.
type Inspection struct {
	Analysis       *analysis.Result
	Checklist      []string
	Recommendation string
}

// InspectorFunction runs the upload, analysis and archive pipeline.
type InspectorFunction struct {
	client      llm.Client
	analyzer    *analysis.Analyzer
	checklist   *checklist.Engine
	recommender *recommend.Recommender
	searchReady bool

	store    ObjectStore
	exporter Exporter
	recorder DocumentRecorder
	config   InspectorConfig
}

// LoadInspectorConfig loads and validates the pipeline environment.
func LoadInspectorConfig() (*InspectorConfig, error) {
	config := &InspectorConfig{
		ProjectID:          gcp.GetEnv("PROJECT_ID", ""),
		OriginalsContainer: gcp.GetEnv("BLOB_CONTAINER_NAME", ""),
		ExportContainer:    gcp.GetEnv("BLOB_CSV_CONTAINER_NAME", ""),
		CollectionName:     gcp.GetEnv("FIRESTORE_COLLECTION", "documents"),
		ChecklistItems:     checklist.DefaultItemCount,
	}
	if config.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if config.OriginalsContainer == "" {
		return nil, fmt.Errorf("BLOB_CONTAINER_NAME environment variable must be set")
	}
	if config.ExportContainer == "" {
		return nil, fmt.Errorf("BLOB_CSV_CONTAINER_NAME environment variable must be set")
	}
	return config, nil
}

// NewInspector builds the pipeline and its cloud collaborators from the environment.
func NewInspector(ctx context.Context) (*InspectorFunction, error) {
	config, err := LoadInspectorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.LoadConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}
	store, err := gcp.NewBucketStore(ctx)
	if err != nil {
		return nil, err
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, err
	}

	f := NewInspectorWith(*config, client, llm.LoadSearchDataSource(), store,
		export.NewBucketExporter(store, config.ExportContainer),
		gcp.NewFirestoreRecorder(firestoreClient, config.CollectionName))
	slog.Info("Document inspector initialized.", "backend", client.Name(), "collection", config.CollectionName)
	return f, nil
}

// NewInspectorWith wires the pipeline from explicit collaborators. store,
// exporter and recorder may be nil when only Inspect is used.
func NewInspectorWith(config InspectorConfig, client llm.Client, source llm.SearchDataSource, store ObjectStore, exporter Exporter, recorder DocumentRecorder) *InspectorFunction {
	if config.ChecklistItems <= 0 {
		config.ChecklistItems = checklist.DefaultItemCount
	}
	return &InspectorFunction{
		client:      client,
		analyzer:    analysis.NewAnalyzer(client),
		checklist:   checklist.NewEngine(client),
		recommender: recommend.NewRecommender(client, source),
		searchReady: source.Configured(),
		store:       store,
		exporter:    exporter,
		recorder:    recorder,
		config:      config,
	}
}

// Checklist exposes the checklist engine for review sessions.
func (f *InspectorFunction) Checklist() *checklist.Engine {
	return f.checklist
}

// Inspect extracts and analyzes a document without persisting anything.
func (f *InspectorFunction) Inspect(ctx context.Context, data []byte, format extract.Format) (*Inspection, error) {
	text, err := extract.Extract(data, format)
	if err != nil {
		return nil, err
	}
	return f.inspectText(ctx, slog.Default(), text)
}

func (f *InspectorFunction) inspectText(ctx context.Context, logCtx *slog.Logger, text string) (*Inspection, error) {
	result, err := f.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	items, err := f.checklist.GenerateInitial(ctx, text, f.config.ChecklistItems)
	if err != nil {
		return nil, err
	}

	inspection := &Inspection{Analysis: result, Checklist: items}
	if !f.searchReady {
		logCtx.Warn("Document search is not configured. Skipping similar documents.")
		return inspection, nil
	}
	rec, err := f.recommender.Recommend(ctx, result.Topic, result.Summary, result.Keywords)
	if errors.Is(err, llm.ErrRetrievalUnsupported) {
		logCtx.Warn("Generation backend cannot search documents. Skipping similar documents.", "backend", f.client.Name())
		return inspection, nil
	}
	if err != nil {
		return nil, err
	}
	inspection.Recommendation = rec
	return inspection, nil
}

// Process stores, analyzes and archives one uploaded document.
func (f *InspectorFunction) Process(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	if req == nil || strings.TrimSpace(req.Filename) == "" || len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: filename and content are required", ErrInvalidRequest)
	}
	format, err := detectFormat(req.ContentType, req.Filename)
	if err != nil {
		return nil, err
	}

	doc := models.Document{
		ID:          uuid.NewString(),
		Filename:    req.Filename,
		ContentType: format.MIMEType(),
		Status:      models.StatusUploaded,
		CreatedAt:   time.Now(),
	}
	logCtx := slog.With("documentId", doc.ID, "filename", doc.Filename)
	logCtx.Info("Processing uploaded document.", "format", format, "bytes", len(req.Content))

	if err := f.recorder.Create(ctx, doc); err != nil {
		logCtx.Error("Failed to create document record", "error", err)
		return nil, err
	}

	if err := f.store.Put(ctx, f.config.OriginalsContainer, doc.Filename, req.Content, doc.ContentType); err != nil {
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to store original document", err)
	}
	doc.StorageLocator = f.store.Locator(f.config.OriginalsContainer, doc.Filename)
	logCtx.Info("Original document stored.", "locator", doc.StorageLocator)

	return f.analyzeAndArchive(ctx, logCtx, doc, req.Content, format)
}

// ProcessObject runs the pipeline for a document already stored in a bucket.
// Objects of unsupported formats are skipped without error.
func (f *InspectorFunction) ProcessObject(ctx context.Context, e models.GCSEvent) (*models.AnalyzeResponse, error) {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	logCtx.Info("Processing new GCS object.")

	format, err := detectFormat(e.ContentType, e.Name)
	if errors.Is(err, extract.ErrUnsupportedFormat) {
		logCtx.Info("Unsupported object format. Skipping.", "contentType", e.ContentType)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := f.store.Get(ctx, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to download source object", "error", err)
		return nil, err
	}

	doc := models.Document{
		ID:             uuid.NewString(),
		Filename:       path.Base(e.Name),
		ContentType:    format.MIMEType(),
		StorageLocator: f.store.Locator(e.Bucket, e.Name),
		Status:         models.StatusUploaded,
		CreatedAt:      time.Now(),
	}
	logCtx = logCtx.With("documentId", doc.ID)
	if err := f.recorder.Create(ctx, doc); err != nil {
		logCtx.Error("Failed to create document record", "error", err)
		return nil, err
	}
	logCtx.Info("Created document record.")

	return f.analyzeAndArchive(ctx, logCtx, doc, data, format)
}

func (f *InspectorFunction) analyzeAndArchive(ctx context.Context, logCtx *slog.Logger, doc models.Document, data []byte, format extract.Format) (*models.AnalyzeResponse, error) {
	if err := f.recorder.UpdateStatus(ctx, doc.ID, models.StatusAnalyzing, ""); err != nil {
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to update status to ANALYZING", err)
	}

	text, err := extract.Extract(data, format)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to extract document text", err)
	}
	logCtx.Info("Document text extracted.", "chars", len([]rune(text)))

	inspection, err := f.inspectText(ctx, logCtx, text)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to analyze document", err)
	}

	doc.Topic = inspection.Analysis.Topic
	doc.Summary = inspection.Analysis.Summary
	doc.Keywords = inspection.Analysis.Keywords
	if err := f.archive(ctx, logCtx, doc); err != nil {
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to archive analysis", err)
	}

	logCtx.Info("Document analysis complete.")
	return &models.AnalyzeResponse{
		Status:         "success",
		DocumentID:     doc.ID,
		Topic:          doc.Topic,
		Summary:        doc.Summary,
		Keywords:       doc.Keywords,
		Checklist:      inspection.Checklist,
		Recommendation: inspection.Recommendation,
		StorageLocator: doc.StorageLocator,
	}, nil
}

// archive writes the export row and the analysis record concurrently.
func (f *InspectorFunction) archive(ctx context.Context, logCtx *slog.Logger, doc models.Document) error {
	row := export.NewRow(doc.ID, doc.Filename, doc.Topic, doc.Summary, doc.Keywords, f.config.OriginalsContainer)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := f.exporter.Export(gctx, row); err != nil {
			return fmt.Errorf("export row: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		if err := f.recorder.RecordAnalysis(gctx, doc); err != nil {
			return fmt.Errorf("analysis record: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return err
	}
	logCtx.Info("Analysis archived.")
	return nil
}

func (f *InspectorFunction) handleError(ctx context.Context, logCtx *slog.Logger, id, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	if err := f.recorder.UpdateStatus(ctx, id, models.StatusFailed, fullError); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}

// detectFormat prefers the declared content type and falls back to the
// file extension for missing or generic types.
func detectFormat(contentType, name string) (extract.Format, error) {
	switch strings.TrimSpace(contentType) {
	case "", "application/octet-stream":
		return extract.FormatFromFilename(name)
	}
	return extract.FormatFromMIME(contentType)
}
