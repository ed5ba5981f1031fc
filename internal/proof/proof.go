// Package proof produces contract evidence without checking anything.
//
// It is the only place outside pkg/contract that mints Established, Implies
// and Refines values. It lives under internal/ so that only the packages
// performing the check (wrapper axioms, the composition engine) can import
// it; every other caller goes through contract.Prove.
package proof

import "github.com/aretw0/elicitation/pkg/contract"

// Establish produces evidence for P. Call it only right after P was checked.
func Establish[P contract.Prop]() contract.Established[P] {
	return contract.Established[P]{}
}

// Axiom registers the implication P ⇒ Q.
func Axiom[P, Q contract.Prop]() contract.Implies[P, Q] {
	return contract.Implies[P, Q]{}
}

// Refinement registers To as a refinement of From.
func Refinement[From, To contract.Prop]() contract.Refines[From, To] {
	return contract.Refines[From, To]{}
}
