package contract

import "fmt"

// Prop is a proposition marker. Implementations are zero-size types whose
// only method names the proposition for reports.
type Prop interface {
	Proposition() string
}

// Established is evidence that P holds. It carries no data. Outside this
// module evidence is obtained from Prove, from the operations that return
// it, or by combining existing evidence.
type Established[P Prop] struct {
	_ [0]P
}

// Proposition returns the name of the established proposition.
func (Established[P]) Proposition() string {
	var p P
	return p.Proposition()
}

// Implies is evidence that P entails Q. Implications are registered next
// to the propositions they relate.
type Implies[P, Q Prop] struct {
	_ [0]P
	_ [0]Q
}

// Weaken converts evidence of P into evidence of Q through a registered implication.
func Weaken[P, Q Prop](_ Established[P], _ Implies[P, Q]) Established[Q] {
	return Established[Q]{}
}

// And is the conjunction of P and Q.
type And[P, Q Prop] struct {
	_ [0]P
	_ [0]Q
}

func (And[P, Q]) Proposition() string {
	var p P
	var q Q
	return fmt.Sprintf("(%s ∧ %s)", p.Proposition(), q.Proposition())
}

// Conjoin combines two pieces of evidence.
func Conjoin[P, Q Prop](_ Established[P], _ Established[Q]) Established[And[P, Q]] {
	return Established[And[P, Q]]{}
}

// Fst projects the left conjunct.
func Fst[P, Q Prop](_ Established[And[P, Q]]) Established[P] {
	return Established[P]{}
}

// Snd projects the right conjunct.
func Snd[P, Q Prop](_ Established[And[P, Q]]) Established[Q] {
	return Established[Q]{}
}

// Refines marks that To narrows the legal state space of From.
type Refines[From, To Prop] struct {
	_ [0]From
	_ [0]To
}

// Downcast forgets the refinement: evidence of the narrower To is evidence of From.
func Downcast[From, To Prop](_ Established[To], _ Refines[From, To]) Established[From] {
	return Established[From]{}
}

// Is is the proposition "the value is a well-formed T".
type Is[T any] struct {
	_ [0]T
}

func (Is[T]) Proposition() string {
	var v T
	return fmt.Sprintf("is %T", v)
}

// Lift produces Is[T] evidence for a value that already exists as a T.
func Lift[T any](_ T) Established[Is[T]] {
	return Established[Is[T]]{}
}

// Label names an enum variant at the type level.
type Label interface {
	Label() string
}

// InVariant is the proposition "the enum value E is the variant V".
type InVariant[E any, V Label] struct {
	_ [0]E
	_ [0]V
}

func (InVariant[E, V]) Proposition() string {
	var e E
	var v V
	return fmt.Sprintf("%T in variant %s", e, v.Label())
}

// Witness is implemented by validated values whose construction establishes P.
type Witness[P Prop] interface {
	Establishes() P
	Invariant() bool
}

// Prove returns evidence of P for w. The boolean is false when w does not
// satisfy its invariant, which is how zero values built outside their
// constructor are refused.
func Prove[P Prop](w Witness[P]) (Established[P], bool) {
	if w == nil || !w.Invariant() {
		return Established[P]{}, false
	}
	return Established[P]{}, true
}
