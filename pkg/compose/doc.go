/*
Package compose derives the validity of structs and enums from the validity
of their parts.

A Struct is declared field by field with Bind. Constructing it drives a
Derivation through collecting, all-fields-collected and failed; the
AllFields conjunction is only produced from all-fields-collected, and the
first failing field stops the derivation with a *domain.CompositionError
that names it.

	addr, _ := compose.NewStruct("ServerAddress",
		compose.Bind("host", parseHost, func(a *ServerAddress, h wrapper.NonEmptyString) { a.Host = h }),
		compose.Bind("port", parsePort, func(a *ServerAddress, p wrapper.PositiveU16) { a.Port = p }),
	)
	v, proof, err := addr.Construct("example.com", "8080")

Enums hold unit and payload variants. Slice, Array and Optional lift an
element constructor over containers. StructHarness and EnumHarness export the
join checks as verification harnesses.
*/
package compose
