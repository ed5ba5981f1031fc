package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/elicitation/pkg/domain"
)

// LogHooks writes one record per lifecycle event. Rejections and failed
// outcomes are logged at Warn, the rest at Info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRoundStart: func(ctx context.Context, e *domain.RoundEvent) {
			logger.InfoContext(ctx, "round_start", roundAttrs(e)...)
		},
		OnRoundEnd: func(ctx context.Context, e *domain.RoundEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "round_rejected", append(roundAttrs(e), "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "round_end", roundAttrs(e)...)
		},
		OnRetry: func(ctx context.Context, e *domain.RoundEvent) {
			logger.InfoContext(ctx, "retry", roundAttrs(e)...)
		},
		OnTerminal: func(ctx context.Context, e *domain.TerminalEvent) {
			attrs := []any{
				"session", e.SessionID,
				"type", e.TypeName,
				"outcome", e.Outcome,
				"rounds", e.Rounds,
				"duration", e.Duration,
			}
			if e.Outcome != domain.OutcomeSuccess {
				logger.WarnContext(ctx, "terminal", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "terminal", attrs...)
		},
	}
}

func roundAttrs(e *domain.RoundEvent) []any {
	return []any{
		"session", e.SessionID,
		"type", e.TypeName,
		"field", e.Field,
		"round", e.Round,
		"attempt", e.Attempt,
	}
}
