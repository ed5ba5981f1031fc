package compose

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/verification"
)

// Sample is one valid and one invalid raw input for a field.
type Sample struct {
	Valid   any
	Invalid any
}

// StructHarness trusts each field's constructor and checks the join: the
// all-valid composition succeeds, and swapping in any single invalid sample
// fails with an error naming exactly that field.
func StructHarness[S any](module string, s *Struct[S], samples map[string]Sample) verification.Harness {
	return verification.Harness{
		Module: module,
		Name:   "compose_" + s.name,
		Check: func(ctx context.Context) error {
			valid := make([]any, len(s.fields))
			for i, f := range s.fields {
				sm, ok := samples[f.name]
				if !ok {
					return fmt.Errorf("%s: no sample for field %q", s.name, f.name)
				}
				valid[i] = sm.Valid
			}
			if _, _, err := s.Construct(valid...); err != nil {
				return fmt.Errorf("%s: valid samples rejected: %w", s.name, err)
			}
			for i, f := range s.fields {
				if err := ctx.Err(); err != nil {
					return err
				}
				raws := make([]any, len(valid))
				copy(raws, valid)
				raws[i] = samples[f.name].Invalid
				_, _, err := s.Construct(raws...)
				var comp *domain.CompositionError
				if !errors.As(err, &comp) {
					return fmt.Errorf("%s: invalid %q accepted or unattributed: %v", s.name, f.name, err)
				}
				if comp.Field != f.name || comp.Index != i {
					return fmt.Errorf("%s: invalid %q reported against %q", s.name, f.name, comp.Field)
				}
			}
			return nil
		},
	}
}

// EnumHarness requires a sample payload for every variant and checks that
// each constructs its own variant, as reported by variantOf.
func EnumHarness[E any](module string, e *Enum[E], samples map[string]any, variantOf func(E) string) verification.Harness {
	return verification.Harness{
		Module: module,
		Name:   "compose_" + e.name,
		Check: func(ctx context.Context) error {
			for _, v := range e.variants {
				if err := ctx.Err(); err != nil {
					return err
				}
				payload, ok := samples[v.label]
				if !ok {
					return fmt.Errorf("%s: variant %q has no sample", e.name, v.label)
				}
				out, err := e.Construct(v.label, payload)
				if err != nil {
					return fmt.Errorf("%s: sample for %q rejected: %w", e.name, v.label, err)
				}
				if got := variantOf(out); got != v.label {
					return fmt.Errorf("%s: sample for %q constructed %q", e.name, v.label, got)
				}
			}
			return nil
		},
	}
}
