package models

// These structs define the JSON payloads of the document-analyzer HTTP function.

// AnalyzeRequest is the input for the document-analyzer function.
// Content carries the raw upload and is base64 encoded on the wire.
type AnalyzeRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// AnalyzeResponse is the output of the document-analyzer function.
type AnalyzeResponse struct {
	Status         string   `json:"status"`
	DocumentID     string   `json:"documentId"`
	Topic          string   `json:"topic"`
	Summary        string   `json:"summary"`
	Keywords       []string `json:"keywords"`
	Checklist      []string `json:"checklist"`
	Recommendation string   `json:"recommendation"`
	StorageLocator string   `json:"storageLocator,omitempty"`
}

// GCSEvent is the payload of a Cloud Storage object finalize event.
type GCSEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}
