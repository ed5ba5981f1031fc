package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/aretw0/elicitation/pkg/adapters/memory"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/persistence/middleware"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func login() *domain.Transcript {
	at := time.Now().UTC()
	return &domain.Transcript{
		ID:        "s-1",
		Type:      "Login",
		StartedAt: at,
		Outcome:   domain.OutcomeExhausted,
		Error:     "Login.password: BoundedString: too_long (expected at most 4 bytes, got hunter2)",
		Rounds: []domain.Exchange{
			{Round: 1, Attempt: 1, Field: "user", Message: "User?", Response: "ada", At: at},
			{Round: 2, Attempt: 1, Field: "password", Message: "Password?", Response: "hunter2",
				Rejection: "BoundedString: too_long (got hunter2)", At: at},
		},
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	secure := mw(underlying)
	ctx := context.Background()

	original := login()
	require.NoError(t, secure.Save(ctx, original))

	stored, err := underlying.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Sealed)
	assert.Empty(t, stored.Rounds)
	assert.Empty(t, stored.Error)
	assert.NotContains(t, stored.Sealed, "hunter2")
	assert.Equal(t, domain.OutcomeExhausted, stored.Outcome, "the envelope keeps the outcome readable")

	loaded, err := secure.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, original.Rounds[1].Response, loaded.Rounds[1].Response)
	assert.Equal(t, original.Error, loaded.Error)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	oldKey, newKey := generateKey(t), generateKey(t)

	oldMw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	require.NoError(t, oldMw(underlying).Save(ctx, login()))

	rotated, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)
	loaded, err := rotated(underlying).Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Login", loaded.Type)

	strict, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})
	require.NoError(t, err)
	_, err = strict(underlying).Load(ctx, "s-1")
	assert.ErrorContains(t, err, "all available keys")
}

func TestEncryptionMiddleware_BoundToID(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	secure := mw(underlying)
	ctx := context.Background()
	require.NoError(t, secure.Save(ctx, login()))

	stored, err := underlying.Load(ctx, "s-1")
	require.NoError(t, err)
	stored.ID = "s-2"
	require.NoError(t, underlying.Save(ctx, stored))

	_, err = secure.Load(ctx, "s-2")
	assert.ErrorContains(t, err, "all available keys")
}

func TestEncryptionMiddleware_Rejects(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)

	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), login()))
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	_, err = mw(underlying).Load(context.Background(), "s-1")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestRedactMiddleware(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactMiddleware([]string{`(^|\.)password$`})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	original := login()
	require.NoError(t, store.Save(ctx, original))

	stored, err := underlying.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "ada", stored.Rounds[0].Response)
	assert.Equal(t, middleware.Mask, stored.Rounds[1].Response)
	assert.NotContains(t, stored.Rounds[1].Rejection, "hunter2")
	assert.NotContains(t, stored.Error, "hunter2")
	assert.Equal(t, "hunter2", original.Rounds[1].Response, "the caller's copy is untouched")

	_, err = middleware.NewRedactMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_Contract(t *testing.T) {
	redact, err := middleware.NewRedactMiddleware([]string{`secret`})
	require.NoError(t, err)
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	ports.RunTranscriptStoreContract(t, middleware.Chain(memory.NewStore(), redact, seal))
}
