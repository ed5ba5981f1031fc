package elicit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/ports"
)

// recorder appends every round of a session to a transcript and saves it
// once the session is terminal. A nil recorder records nothing.
type recorder struct {
	mu    sync.Mutex
	store ports.TranscriptStore
	t     *domain.Transcript
}

func newRecorder(store ports.TranscriptStore, id, typeName string) *recorder {
	if store == nil {
		return nil
	}
	return &recorder{
		store: store,
		t: &domain.Transcript{
			ID:        id,
			Type:      typeName,
			StartedAt: time.Now().UTC(),
			Rounds:    []domain.Exchange{},
		},
	}
}

func (r *recorder) add(q ask, p domain.Prompt, resp domain.Response, verr error) {
	if r == nil {
		return
	}
	ex := domain.Exchange{
		Round:    p.Round,
		Attempt:  p.Attempt,
		Field:    q.path,
		Message:  p.Message,
		Response: responseText(resp),
		At:       time.Now().UTC(),
	}
	if verr != nil {
		ex.Rejection = verr.Error()
	}
	r.mu.Lock()
	r.t.Rounds = append(r.t.Rounds, ex)
	r.mu.Unlock()
}

func (r *recorder) finish(ctx context.Context, o domain.Outcome, err error) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	r.t.FinishedAt = time.Now().UTC()
	r.t.Outcome = o
	if err != nil {
		r.t.Error = err.Error()
	}
	snapshot := r.t.Clone()
	r.mu.Unlock()

	// The session context may already be cancelled; the record is still written.
	if err := r.store.Save(context.WithoutCancel(ctx), snapshot); err != nil {
		return fmt.Errorf("save transcript %s: %w", snapshot.ID, err)
	}
	return nil
}

func responseText(resp domain.Response) string {
	switch resp.Kind {
	case domain.ResponseText:
		return resp.Text
	case domain.ResponseStructured:
		b, err := json.Marshal(resp.Data)
		if err != nil {
			return fmt.Sprintf("%v", resp.Data)
		}
		return string(b)
	}
	return ""
}
