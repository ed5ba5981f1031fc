// Package wrapper provides validated wrappers over Go primitives.
//
// A wrapper has exactly one construction path, its NewX function, which
// returns the value or a *domain.ValidationError naming the single invariant
// that failed. Accessors (Get, String) never re-validate. Invariant re-checks
// the invariant and is false for Go zero values, so contract.Prove refuses
// wrappers that did not come from their constructor.
//
// Trusted seams: math (IsNaN, IsInf), unicode (letter and number classes),
// time, encoding/json, regexp, google/uuid and net/netip. Everything on this
// side of those calls is checked by the harnesses in pkg/verification.
package wrapper
