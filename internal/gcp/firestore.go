package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Lllllllleong/docinspector/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// FirestoreRecorder keeps one record per analyzed document.
type FirestoreRecorder struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreRecorder wraps client, writing into collection.
func NewFirestoreRecorder(client *firestore.Client, collection string) *FirestoreRecorder {
	return &FirestoreRecorder{client: client, collection: collection}
}

// Create writes the initial record for doc, keyed by doc.ID.
func (r *FirestoreRecorder) Create(ctx context.Context, doc models.Document) error {
	if _, err := r.client.Collection(r.collection).Doc(doc.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to create document record %s: %w", doc.ID, err)
	}
	return nil
}

// UpdateStatus sets the status, and the error details when given.
func (r *FirestoreRecorder) UpdateStatus(ctx context.Context, id, status, errDetails string) error {
	updates := []firestore.Update{
		{Path: "status", Value: status},
	}
	if errDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: errDetails})
	}
	if _, err := r.client.Collection(r.collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update status of %s: %w", id, err)
	}
	return nil
}

// RecordAnalysis stores the analysis fields and marks the document analyzed.
func (r *FirestoreRecorder) RecordAnalysis(ctx context.Context, doc models.Document) error {
	updates := []firestore.Update{
		{Path: "topic", Value: doc.Topic},
		{Path: "summary", Value: doc.Summary},
		{Path: "keywords", Value: doc.Keywords},
		{Path: "storageLocator", Value: doc.StorageLocator},
		{Path: "status", Value: models.StatusAnalyzed},
	}
	if _, err := r.client.Collection(r.collection).Doc(doc.ID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to record analysis of %s: %w", doc.ID, err)
	}
	return nil
}

// Recent lists up to limit records, newest first.
func (r *FirestoreRecorder) Recent(ctx context.Context, limit int) ([]models.Document, error) {
	it := r.client.Collection(r.collection).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer it.Stop()

	var docs []models.Document
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		var doc models.Document
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", snap.Ref.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *FirestoreRecorder) Close() error {
	return r.client.Close()
}
