package memory

import (
	"time"

	"github.com/google/uuid"
)

// Record is one persisted conversation snippet. The application only
// submits new records and reads search or profile results; records are
// never mutated after creation.
type Record struct {
	ID        string
	UserID    string
	Content   string
	Metadata  map[string]string
	CreatedAt time.Time

	// Score is the relevance score assigned by the vector store.
	// Only populated on Search results; zero elsewhere.
	Score float64
}

// NewRecord creates a record with a fresh ID and timestamp.
func NewRecord(userID, content string, metadata map[string]string) Record {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return Record{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}
