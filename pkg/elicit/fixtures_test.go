package elicit_test

import (
	"testing"

	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/stretchr/testify/require"
)

type serverAddress struct {
	Host wrapper.NonEmptyString
	Port wrapper.PositiveU16
}

func hostDescriptor() *elicit.LeafDescriptor[wrapper.NonEmptyString] {
	return elicit.Text("NonEmptyString", "Host name?", wrapper.NewNonEmptyString)
}

func portDescriptor() *elicit.LeafDescriptor[wrapper.PositiveU16] {
	return elicit.Int("PositiveU16", "Port?", wrapper.NewPositive[uint16])
}

func newServerAddress(t *testing.T) *elicit.StructDescriptor[serverAddress] {
	t.Helper()
	d, err := elicit.Struct("ServerAddress",
		elicit.Field("host", hostDescriptor(), func(a *serverAddress, h wrapper.NonEmptyString) { a.Host = h }),
		elicit.Field("port", portDescriptor(), func(a *serverAddress, p wrapper.PositiveU16) { a.Port = p }),
	)
	require.NoError(t, err)
	return d
}

type shape struct {
	kind   string
	radius int32
}

func newShape(t *testing.T) *elicit.EnumDescriptor[shape] {
	t.Helper()
	radius := elicit.Int("PositiveI32", "Radius?", wrapper.NewPositive[int32])
	d, err := elicit.Enum("Shape", "Which shape?",
		elicit.Payload("circle", radius, func(r wrapper.PositiveI32) shape { return shape{kind: "circle", radius: r.Get()} }),
		elicit.Unit("point", shape{kind: "point"}),
	)
	require.NoError(t, err)
	return d
}

func cappedDescriptor() *elicit.LeafDescriptor[wrapper.Capped[int]] {
	return elicit.Int("Capped[int]", "A positive integer up to 100?", func(n int) (wrapper.Capped[int], error) {
		return wrapper.NewCapped(n, 100)
	})
}
