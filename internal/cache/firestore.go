package cache

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
)

// FirestoreLiveStore writes live projections to Cloud Firestore, where the
// web client listens with onSnapshot.
type FirestoreLiveStore struct {
	client *firestore.Client
}

// NewFirestoreLiveStore gets the Firestore client from an initialized Firebase app.
func NewFirestoreLiveStore(ctx context.Context, app *firebase.App) (*FirestoreLiveStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firestore client: %w", err)
	}
	log.Println("[LiveStore] Firestore client ready")
	return &FirestoreLiveStore{client: client}, nil
}

// Put merges fields into collection/docID, creating the document if needed.
// Fields not named keep their stored value.
func (s *FirestoreLiveStore) Put(ctx context.Context, collection, docID string, fields map[string]any) error {
	_, err := s.client.Collection(collection).Doc(docID).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, docID, err)
	}
	return nil
}

func (s *FirestoreLiveStore) Close() error {
	return s.client.Close()
}
