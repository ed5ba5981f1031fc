package ports

import (
	"context"

	"github.com/aretw0/elicitation/pkg/domain"
)

// TranscriptStore persists the audit records of finished sessions.
type TranscriptStore interface {
	// Save persists the transcript under its ID, replacing any previous copy.
	Save(ctx context.Context, t *domain.Transcript) error

	// Load retrieves a transcript.
	// Returns domain.ErrTranscriptNotFound if the ID does not exist.
	Load(ctx context.Context, id string) (*domain.Transcript, error)

	// List returns the stored IDs, oldest session first.
	List(ctx context.Context) ([]string, error)

	// Delete removes a transcript. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
}
