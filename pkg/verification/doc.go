// Package verification runs bounded, exhaustive checks over the foundation
// and wrapper types.
//
// A Harness is a named check over a finite input domain, usually compared
// with a trusted oracle from the standard library or google/uuid. Builtin
// registers the checks shipped with the module; Runner executes any set of
// harnesses concurrently and produces a Report that renders for a terminal
// or as CSV.
//
//	report := (&verification.Runner{}).Run(ctx, verification.Builtin().All())
//	if report.Failed() {
//		_ = report.Render(os.Stderr, termenv.ColorProfile())
//	}
package verification
