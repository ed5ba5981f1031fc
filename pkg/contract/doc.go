/*
Package contract is a small algebra of propositions used to record, in types,
that a check already happened.

A proposition is a zero-size marker implementing Prop. Established[P] is
evidence that P holds. Evidence is combined with Conjoin, weakened through a
registered Implies axiom, and narrowed or widened with Refines. There is no
disjunction, negation or quantification.

Go cannot forbid composite literals, so Established[P]{} can be written by any
package. APIs that gate on evidence therefore obtain it through Prove, which
binds the proof to a value and re-checks the value's invariant:

	port, err := wrapper.NewPositive[uint16](8080)
	if err != nil {
		return err
	}
	proof, ok := contract.Prove[wrapper.IsPositive](port)

The package also defines the backend-neutral Contract interface
(Requires / Ensures / Invariant), the Check soundness driver, and Annotation
backends that translate contract descriptions for external tools.
*/
package contract
