package wrapper

import "github.com/aretw0/elicitation/internal/proof"

// Propositions established by wrapper constructors.
type (
	IsPositive         struct{}
	IsNonNegative      struct{}
	IsNonZero          struct{}
	InRange            struct{}
	IsCapped           struct{}
	IsEven             struct{}
	IsFinite           struct{}
	IsFloatPositive    struct{}
	IsFloatNonNegative struct{}
	IsNonEmpty         struct{}
	IsBounded          struct{}
	IsTrimmed          struct{}
	IsTrue             struct{}
	IsFalse            struct{}
	IsAlphabetic       struct{}
	IsNumeric          struct{}
	IsAlphanumeric     struct{}
	HasElements        struct{}
	AllElementsValid   struct{}
	IsPresent          struct{}
	IsUnique           struct{}
	IsPositiveDuration struct{}
	IsNonNegativeDur   struct{}
	IsAfter            struct{}
	IsBefore           struct{}
	IsJSONObject       struct{}
	IsJSONArray        struct{}
	IsJSONNonNull      struct{}
	IsCompiled         struct{}
	IsMatching         struct{}
	IsUUIDNonNil       struct{}
	IsUUIDv4           struct{}
	IsUUIDv7           struct{}
)

func (IsPositive) Proposition() string { return "positive" }
func (IsNonNegative) Proposition() string { return "non-negative" }
func (IsNonZero) Proposition() string { return "non-zero" }
func (InRange) Proposition() string { return "in range" }
func (IsCapped) Proposition() string { return "positive and capped" }
func (IsEven) Proposition() string { return "even" }
func (IsFinite) Proposition() string { return "finite" }
func (IsFloatPositive) Proposition() string { return "finite and positive" }
func (IsFloatNonNegative) Proposition() string { return "finite and non-negative" }
func (IsNonEmpty) Proposition() string { return "non-empty" }
func (IsBounded) Proposition() string { return "bounded and non-empty" }
func (IsTrimmed) Proposition() string { return "trimmed" }
func (IsTrue) Proposition() string { return "true" }
func (IsFalse) Proposition() string { return "false" }
func (IsAlphabetic) Proposition() string { return "alphabetic" }
func (IsNumeric) Proposition() string { return "numeric" }
func (IsAlphanumeric) Proposition() string { return "alphanumeric" }
func (HasElements) Proposition() string { return "has elements" }
func (AllElementsValid) Proposition() string { return "all elements valid" }
func (IsPresent) Proposition() string { return "present" }
func (IsUnique) Proposition() string { return "unique elements" }
func (IsPositiveDuration) Proposition() string { return "positive duration" }
func (IsNonNegativeDur) Proposition() string { return "non-negative duration" }
func (IsAfter) Proposition() string { return "after bound" }
func (IsBefore) Proposition() string { return "before bound" }
func (IsJSONObject) Proposition() string { return "json object" }
func (IsJSONArray) Proposition() string { return "json array" }
func (IsJSONNonNull) Proposition() string { return "json non-null" }
func (IsCompiled) Proposition() string { return "compiled pattern" }
func (IsMatching) Proposition() string { return "matches pattern" }
func (IsUUIDNonNil) Proposition() string { return "non-nil uuid" }
func (IsUUIDv4) Proposition() string { return "uuid v4" }
func (IsUUIDv7) Proposition() string { return "uuid v7" }

// Registered implications between wrapper propositions.
var (
	PositiveImpliesNonNegative = proof.Axiom[IsPositive, IsNonNegative]()
	PositiveImpliesNonZero     = proof.Axiom[IsPositive, IsNonZero]()
	CappedImpliesPositive      = proof.Axiom[IsCapped, IsPositive]()
	BoundedImpliesNonEmpty     = proof.Axiom[IsBounded, IsNonEmpty]()
	FloatPositiveImpliesFinite = proof.Axiom[IsFloatPositive, IsFinite]()
	FloatNonNegativeImpliesFin = proof.Axiom[IsFloatNonNegative, IsFinite]()
	PositiveDurImpliesNonNeg   = proof.Axiom[IsPositiveDuration, IsNonNegativeDur]()
	UUIDv4ImpliesNonNil        = proof.Axiom[IsUUIDv4, IsUUIDNonNil]()
	UUIDv7ImpliesNonNil        = proof.Axiom[IsUUIDv7, IsUUIDNonNil]()
	AlphabeticImpliesAlnum     = proof.Axiom[IsAlphabetic, IsAlphanumeric]()
	NumericImpliesAlnum        = proof.Axiom[IsNumeric, IsAlphanumeric]()
	JSONObjectImpliesNonNull   = proof.Axiom[IsJSONObject, IsJSONNonNull]()
	JSONArrayImpliesNonNull    = proof.Axiom[IsJSONArray, IsJSONNonNull]()
	PositiveRefinesNonNegative = proof.Refinement[IsNonNegative, IsPositive]()
	FloatPositiveRefinesFinite = proof.Refinement[IsFinite, IsFloatPositive]()
	BoundedRefinesNonEmptyStr  = proof.Refinement[IsNonEmpty, IsBounded]()
)
