package middleware

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/ports"
)

// Mask replaces redacted responses.
const Mask = "***"

type redactMiddleware struct {
	next     ports.TranscriptStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks the responses of rounds whose field path matches
// one of the patterns, e.g. `(^|\.)password$`. The raw answer is also removed
// from the rejection messages and the terminal error, which quote it.
func NewRedactMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &redactMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, t *domain.Transcript) error {
	// Clone to avoid side effects on the caller's copy.
	cloned := t.Clone()
	for i := range cloned.Rounds {
		ex := &cloned.Rounds[i]
		if !m.matches(ex.Field) {
			continue
		}
		if raw := strings.TrimSpace(ex.Response); raw != "" {
			ex.Rejection = strings.ReplaceAll(ex.Rejection, raw, Mask)
			cloned.Error = strings.ReplaceAll(cloned.Error, raw, Mask)
			ex.Response = Mask
		}
	}
	return m.next.Save(ctx, cloned)
}

func (m *redactMiddleware) matches(field string) bool {
	for _, p := range m.patterns {
		if p.MatchString(field) {
			return true
		}
	}
	return false
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (*domain.Transcript, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
