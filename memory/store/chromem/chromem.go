// Package chromem implements the memory.Store interface on top of
// chromem-go, a pure Go embedded vector database.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/memtide/memchat/memory"
)

// Store keeps one chromem collection per user for namespace isolation,
// plus an insertion-ordered record list per user to serve recency
// queries, which chromem does not expose.
type Store struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	recent      map[string][]memory.Record
	mu          sync.RWMutex
}

// New creates a chromem-backed store.
func New() (*Store, error) {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
		recent:      make(map[string][]memory.Record),
	}, nil
}

func collectionName(userID string) string {
	if userID == "" {
		return "global"
	}
	return fmt.Sprintf("user_%s", userID)
}

// getOrCreateCollection returns the collection for a user.
func (s *Store) getOrCreateCollection(userID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[userID]
	s.mu.RUnlock()

	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if col, exists := s.collections[userID]; exists {
		return col, nil
	}

	col, err := s.db.CreateCollection(
		collectionName(userID),
		nil, // no custom embedding func (we provide embeddings)
		nil, // no custom distance func (use default cosine)
	)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	s.collections[userID] = col
	return col, nil
}

// Store saves a record with its embedding.
func (s *Store) Store(ctx context.Context, rec memory.Record, embedding []float32) error {
	col, err := s.getOrCreateCollection(rec.UserID)
	if err != nil {
		return err
	}

	log.Printf("[CHROMEM] Storing record: id=%s, user=%s", rec.ID, rec.UserID)

	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Content,
		Embedding: embedding,
		Metadata:  serializeMetadata(rec),
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	s.mu.Lock()
	s.recent[rec.UserID] = append(s.recent[rec.UserID], rec)
	s.mu.Unlock()

	return nil
}

// Search retrieves records by vector similarity, best match first.
func (s *Store) Search(ctx context.Context, userID string, embedding []float32, limit int) ([]memory.Record, error) {
	col, err := s.getOrCreateCollection(userID)
	if err != nil {
		return nil, err
	}

	where := map[string]string{
		"user_id": userID,
	}

	// chromem requires nResults <= collection size; retry with smaller
	// limits until the query fits.
	var results []chromem.Result
	for currentLimit := limit; currentLimit >= 1; currentLimit-- {
		var err error
		results, err = col.QueryEmbedding(ctx, embedding, currentLimit, where, nil)
		if err == nil {
			break
		}

		if isInsufficientDocsError(err) {
			if currentLimit == 1 {
				// Collection is empty
				return nil, nil
			}
			continue
		}

		return nil, fmt.Errorf("chromem query: %w", err)
	}

	records := make([]memory.Record, 0, len(results))
	for i, result := range results {
		rec, err := deserializeResult(result)
		if err != nil {
			log.Printf("[CHROMEM] Skipping result #%d: %v", i+1, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Recent returns up to limit records for userID, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.recent[userID]
	if limit > len(all) {
		limit = len(all)
	}

	records := make([]memory.Record, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		records = append(records, all[i])
	}
	return records, nil
}

// Clear deletes all records for userID.
func (s *Store) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[userID]; exists {
		if err := s.db.DeleteCollection(collectionName(userID)); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		delete(s.collections, userID)
	}
	delete(s.recent, userID)

	log.Printf("[CHROMEM] Cleared records for user=%s", userID)
	return nil
}

// Close releases resources. chromem keeps everything in memory, nothing
// to close.
func (s *Store) Close() error {
	return nil
}

func serializeMetadata(rec memory.Record) map[string]string {
	metadata := map[string]string{
		"user_id":    rec.UserID,
		"created_at": rec.CreatedAt.Format(time.RFC3339Nano),
	}
	for k, v := range rec.Metadata {
		metadata[k] = v
	}
	return metadata
}

func deserializeResult(result chromem.Result) (memory.Record, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, result.Metadata["created_at"])
	if err != nil {
		return memory.Record{}, fmt.Errorf("parse created_at: %w", err)
	}

	metadata := make(map[string]string)
	for k, v := range result.Metadata {
		if k != "user_id" && k != "created_at" {
			metadata[k] = v
		}
	}

	return memory.Record{
		ID:        result.ID,
		UserID:    result.Metadata["user_id"],
		Content:   result.Content,
		Metadata:  metadata,
		CreatedAt: createdAt,
		Score:     float64(result.Similarity),
	}, nil
}

// isInsufficientDocsError checks if the error is chromem rejecting a
// query larger than the collection.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
