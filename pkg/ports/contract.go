package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTranscriptStoreContract runs a suite of tests to verify that a
// TranscriptStore implementation adheres to the interface contract.
func RunTranscriptStoreContract(t *testing.T, store TranscriptStore) {
	ctx := context.Background()
	base := "contract-" + time.Now().Format("20060102150405")
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	sample := func(id string, at time.Time) *domain.Transcript {
		return &domain.Transcript{
			ID:         id,
			Type:       "ServerAddress",
			StartedAt:  at,
			FinishedAt: at.Add(2 * time.Second),
			Outcome:    domain.OutcomeSuccess,
			Rounds: []domain.Exchange{
				{Round: 1, Attempt: 1, Field: "host", Message: "host?", Response: "example.com", At: at},
				{Round: 2, Attempt: 1, Field: "port", Message: "port?", Response: "-1", Rejection: "not_positive", At: at.Add(time.Second)},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		tr := sample(base, started)
		require.NoError(t, store.Save(ctx, tr), "Save should not return error")

		loaded, err := store.Load(ctx, base)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, tr.Type, loaded.Type)
		assert.Equal(t, tr.Outcome, loaded.Outcome)
		require.Len(t, loaded.Rounds, 2)
		assert.Equal(t, "not_positive", loaded.Rounds[1].Rejection)
		assert.True(t, tr.StartedAt.Equal(loaded.StartedAt))
	})

	t.Run("Save isolates caller copy", func(t *testing.T) {
		tr := sample(base+"-iso", started)
		require.NoError(t, store.Save(ctx, tr))
		defer func() { _ = store.Delete(ctx, tr.ID) }()
		tr.Rounds[0].Response = "mutated"

		loaded, err := store.Load(ctx, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, "example.com", loaded.Rounds[0].Response)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+base)
		assert.ErrorIs(t, err, domain.ErrTranscriptNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sample(base, started)))
		require.NoError(t, store.Delete(ctx, base), "Delete should not return error")

		_, err := store.Load(ctx, base)
		assert.ErrorIs(t, err, domain.ErrTranscriptNotFound, "Load after Delete should return ErrTranscriptNotFound")
		assert.NoError(t, store.Delete(ctx, base), "Delete of a missing ID is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := base + "-1"
		id2 := base + "-2"
		require.NoError(t, store.Save(ctx, sample(id2, started.Add(time.Minute))))
		require.NoError(t, store.Save(ctx, sample(id1, started)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		i1 := indexOf(ids, id1)
		i2 := indexOf(ids, id2)
		require.GreaterOrEqual(t, i1, 0)
		require.GreaterOrEqual(t, i2, 0)
		assert.Less(t, i1, i2, "older sessions come first")
	})
}

// RunChannelContract verifies a Channel implementation. newChannel must
// return a channel that answers successive prompts with the given responses
// and then blocks until its context is done.
func RunChannelContract(t *testing.T, newChannel func(responses ...domain.Response) Channel) {
	t.Run("Replays responses in order", func(t *testing.T) {
		ctx := context.Background()
		ch := newChannel(domain.TextResponse("first"), domain.StructuredResponse(map[string]any{"n": 2}))

		require.NoError(t, ch.Send(ctx, domain.Prompt{Type: "T", Message: "one?", Round: 1}))
		r, err := ch.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", r.Raw())

		require.NoError(t, ch.Send(ctx, domain.Prompt{Type: "T", Message: "two?", Round: 2}))
		r, err = ch.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.ResponseStructured, r.Kind)
	})

	t.Run("Await honours cancellation", func(t *testing.T) {
		ch := newChannel()
		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, ch.Send(ctx, domain.Prompt{Type: "T", Message: "?", Round: 1}))

		done := make(chan error, 1)
		go func() {
			_, err := ch.Await(ctx)
			done <- err
		}()
		cancel()

		select {
		case err := <-done:
			require.Error(t, err)
			assert.Equal(t, domain.FailureCancelled, domain.ClassifyChannel("await", err).Failure)
		case <-time.After(2 * time.Second):
			t.Fatal("Await did not return after cancellation")
		}
	})

	t.Run("Send on cancelled context fails", func(t *testing.T) {
		ch := newChannel(domain.TextResponse("unused"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, ch.Send(ctx, domain.Prompt{Type: "T", Message: "?", Round: 1}))
	})
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
