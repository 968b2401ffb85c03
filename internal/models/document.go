package models

import "time"

// Document status values recorded while a document moves through the pipeline.
const (
	StatusUploaded  = "UPLOADED"
	StatusAnalyzing = "ANALYZING"
	StatusAnalyzed  = "ANALYZED"
	StatusFailed    = "FAILED"
)

// Document represents one uploaded document and its analysis in Firestore.
// The analysis fields are written once; only StorageLocator may be assigned
// after the original bytes are persisted.
type Document struct {
	ID             string    `firestore:"id" json:"id"`
	Filename       string    `firestore:"filename" json:"filename"`
	ContentType    string    `firestore:"contentType,omitempty" json:"contentType,omitempty"`
	Topic          string    `firestore:"topic,omitempty" json:"topic,omitempty"`
	Summary        string    `firestore:"summary,omitempty" json:"summary,omitempty"`
	Keywords       []string  `firestore:"keywords,omitempty" json:"keywords,omitempty"`
	StorageLocator string    `firestore:"storageLocator,omitempty" json:"storageLocator,omitempty"`
	Status         string    `firestore:"status,omitempty" json:"status,omitempty"`
	ErrorDetails   string    `firestore:"errorDetails,omitempty" json:"errorDetails,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt,omitempty" json:"createdAt"`
}

// ExportRow is the single tabular row written for every analyzed document.
type ExportRow struct {
	ID       string
	Filename string
	Topic    string
	Summary  string
	Keywords string
	BlobURL  string
}
