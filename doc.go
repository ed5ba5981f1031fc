/*
Package elicitation builds values that are correct by construction from an
untrusted conversation partner.

Every elicitable type has a constructor that validates. A session asks the
partner for one leaf value at a time over a channel, re-asks with the
specific violation when a response is rejected, and gives up after a bounded
number of attempts. Composite types are assembled from validated parts only,
so a value returned by Elicit never skipped its checks.

# Usage

	type Address struct {
		Host wrapper.NonEmptyString
		Port wrapper.PositiveU16
	}

	addr, err := elicit.Struct("ServerAddress",
		elicit.Field("host", elicit.Text("Host", "Host name?", wrapper.NewNonEmptyString),
			func(a *Address, h wrapper.NonEmptyString) { a.Host = h }),
		elicit.Field("port", elicit.Int("Port", "Port?", wrapper.NewPositive[uint16]),
			func(a *Address, p wrapper.PositiveU16) { a.Port = p }),
	)
	if err != nil {
		log.Fatal(err)
	}

	client, err := elicitation.New(terminal.NewStdio())
	if err != nil {
		log.Fatal(err)
	}
	v, err := elicitation.Elicit(ctx, client, addr)
	switch domain.TerminalKind(err) {
	case domain.KindExhausted:
		// the partner never produced a valid value
	case domain.KindCancelled:
		// ctx was cancelled or the partner declined
	}

The same descriptors are exposed as named tools (package tool) over MCP
(package adapters/mcp) and HTTP (package adapters/http).
*/
package elicitation
