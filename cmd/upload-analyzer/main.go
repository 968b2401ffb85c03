package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/docinspector/internal/gcp"
	"github.com/Lllllllleong/docinspector/internal/models"
	"github.com/Lllllllleong/docinspector/internal/services"
)

var (
	inspectorInstance *services.InspectorFunction
	once              sync.Once
	initErr           error
)

func init() {
	level := gcp.LogLevel(gcp.GetEnv("LOG_LEVEL", "info"))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	functions.CloudEvent("AnalyzeUploadedDocument", analyzeUploadedDocument)
}

// main is required by the Go Functions Framework.
func main() {}

// analyzeUploadedDocument handles Cloud Storage object finalize events.
func analyzeUploadedDocument(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		inspectorInstance, initErr = services.NewInspector(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	res, err := inspectorInstance.ProcessObject(ctx, gcsEvent)
	if err != nil {
		return err
	}
	if res != nil {
		slog.Info("Uploaded document analyzed.", "eventId", e.ID(), "documentId", res.DocumentID)
	}
	return nil
}
