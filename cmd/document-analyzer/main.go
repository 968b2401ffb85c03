package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/docinspector/internal/extract"
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

	functions.HTTP("HandleAnalyzeDocument", handleAnalyzeDocument)
}

// main is required by the Go Functions Framework.
func main() {}

func handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		inspectorInstance, initErr = services.NewInspector(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// Content is base64 in the JSON body.
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	res, err := inspectorInstance.Process(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
