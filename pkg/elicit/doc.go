/*
Package elicit drives the conversation that turns "I need a T" into a
validated T.

A Descriptor says how to ask for a T. Leaves put one question to the channel
and validate every answer; Struct, Enum, Slice and Optional compose leaves
through the composition engine in pkg/compose, so a composed value is only
ever assembled from fields that were each validated by their own
constructor.

Every leaf runs the round protocol tracked by Machine:

	NotStarted -> AwaitingResponse -> Validating -> Satisfied -> Terminal(success)
	                     ^                 |
	                     |                 v
	                     +------------ Retrying -> Terminal(exhausted)

Any waiting state may end in Terminal(cancelled) when the context is done,
and a channel failure ends in Terminal(failed). Parse failures, empty
responses and invariant violations are retried with a corrective message
until Policy.MaxAttempts responses were rejected.

	d, _ := elicit.Struct("ServerAddress",
		elicit.Field("host", hostDescriptor, func(a *Address, h wrapper.NonEmptyString) { a.Host = h }),
		elicit.Field("port", portDescriptor, func(a *Address, p wrapper.PositiveU16) { a.Port = p }),
	)
	addr, err := elicit.Run(ctx, channel, d, elicit.WithPolicy(policy))
*/
package elicit
