package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/elicitation/pkg/contract"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverAddress struct {
	Host wrapper.NonEmptyString
	Port wrapper.PositiveU16
}

func parseHost(raw any) (wrapper.NonEmptyString, error) {
	s, _ := raw.(string)
	return wrapper.NewNonEmptyString(s)
}

func parsePort(raw any) (wrapper.PositiveU16, error) {
	s, _ := raw.(string)
	n, err := wrapper.ParseInt[uint16](s)
	if err != nil {
		return wrapper.PositiveU16{}, err
	}
	return wrapper.NewPositive(n)
}

func newServerAddress(t *testing.T) *Struct[serverAddress] {
	t.Helper()
	s, err := NewStruct("ServerAddress",
		Bind("host", parseHost, func(a *serverAddress, h wrapper.NonEmptyString) { a.Host = h }),
		Bind("port", parsePort, func(a *serverAddress, p wrapper.PositiveU16) { a.Port = p }),
	)
	require.NoError(t, err)
	return s
}

func TestStruct_Construct(t *testing.T) {
	s := newServerAddress(t)
	assert.Equal(t, []string{"host", "port"}, s.Fields())

	v, proof, err := s.Construct("example.com", "8080")
	require.NoError(t, err)
	assert.Equal(t, "example.com", v.Host.Get())
	assert.Equal(t, uint16(8080), v.Port.Get())
	assert.Equal(t, "all fields of compose.serverAddress", proof.Proposition())
}

func TestStruct_FirstFailingFieldIsReported(t *testing.T) {
	s := newServerAddress(t)

	portCalls := 0
	tracked, err := NewStruct("ServerAddress",
		Bind("host", parseHost, func(a *serverAddress, h wrapper.NonEmptyString) { a.Host = h }),
		Bind("port", func(raw any) (wrapper.PositiveU16, error) {
			portCalls++
			return parsePort(raw)
		}, func(a *serverAddress, p wrapper.PositiveU16) { a.Port = p }),
	)
	require.NoError(t, err)

	_, _, err = tracked.Construct("", "8080")
	var comp *domain.CompositionError
	require.True(t, errors.As(err, &comp))
	assert.Equal(t, "host", comp.Field)
	assert.Equal(t, 0, comp.Index)
	assert.ErrorIs(t, err, domain.ErrEmptyString)
	assert.Zero(t, portCalls, "later fields must not be constructed")

	_, _, err = s.Construct("example.com", "0")
	require.True(t, errors.As(err, &comp))
	assert.Equal(t, "port", comp.Field)
	assert.Equal(t, domain.KindComposition, domain.KindOf(err))
	assert.Equal(t, domain.KindInvariant, domain.TerminalKind(err))
}

func TestStruct_ArityMismatch(t *testing.T) {
	s := newServerAddress(t)
	_, _, err := s.Construct("only-host")
	v, ok := domain.ViolationOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.ViolationWrongLength, v)
}

func TestStruct_DuplicateField(t *testing.T) {
	_, err := NewStruct("Dup",
		Bind("a", parseHost, func(*serverAddress, wrapper.NonEmptyString) {}),
		Bind("a", parseHost, func(*serverAddress, wrapper.NonEmptyString) {}),
	)
	assert.Error(t, err)
}

func TestDerivation_States(t *testing.T) {
	s := newServerAddress(t)
	d := s.Begin()
	assert.Equal(t, Collecting, d.State())

	name, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, "host", name)

	_, _, err := d.Finish()
	assert.ErrorIs(t, err, ErrIncomplete)

	require.NoError(t, d.Supply("example.com"))
	require.NoError(t, d.Advance(func(a *serverAddress) error {
		p, err := wrapper.NewPositive[uint16](443)
		a.Port = p
		return err
	}))
	assert.Equal(t, Collected, d.State())
	assert.Error(t, d.Supply("extra"), "no field left to collect")

	v, _, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, uint16(443), v.Port.Get())

	failed := s.Begin()
	require.Error(t, failed.Supply(""))
	assert.Equal(t, Failed, failed.State())
	_, _, err = failed.Finish()
	assert.Equal(t, failed.Err(), err)
}

func TestStruct_NestedConstructor(t *testing.T) {
	type endpoint struct {
		Name    wrapper.NonEmptyString
		Address serverAddress
	}
	addr := newServerAddress(t)
	ep, err := NewStruct("Endpoint",
		Bind("name", parseHost, func(e *endpoint, n wrapper.NonEmptyString) { e.Name = n }),
		Bind("address", addr.Constructor(), func(e *endpoint, a serverAddress) { e.Address = a }),
	)
	require.NoError(t, err)

	v, _, err := ep.Construct("api", map[string]any{"host": "example.com", "port": "80"})
	require.NoError(t, err)
	assert.Equal(t, uint16(80), v.Address.Port.Get())

	_, _, err = ep.Construct("api", map[string]any{"host": "example.com", "port": "-1"})
	require.Error(t, err)
	assert.Equal(t, "address.port", domain.FieldPath(err))
}

type shape struct {
	kind   string
	radius int32
}

type circleLabel struct{}

func (circleLabel) Label() string { return "Circle" }

func newShape(t *testing.T) *Enum[shape] {
	t.Helper()
	e, err := NewEnum("Shape",
		Payload("Circle", func(raw any) (wrapper.PositiveI32, error) {
			s, _ := raw.(string)
			n, err := wrapper.ParseInt[int32](s)
			if err != nil {
				return wrapper.PositiveI32{}, err
			}
			return wrapper.NewPositive(n)
		}, func(r wrapper.PositiveI32) shape { return shape{kind: "Circle", radius: r.Get()} }),
		Unit("Point", shape{kind: "Point"}),
	)
	require.NoError(t, err)
	return e
}

func TestEnum_Construct(t *testing.T) {
	e := newShape(t)
	assert.Equal(t, []string{"Circle", "Point"}, e.Labels())

	v, err := e.Construct("Point", nil)
	require.NoError(t, err)
	assert.Equal(t, "Point", v.kind)

	c, proof, err := ConstructAs[shape, circleLabel](e, "5")
	require.NoError(t, err)
	assert.Equal(t, int32(5), c.radius)
	assert.Equal(t, "compose.shape in variant Circle", proof.Proposition())

	_, err = e.Construct("Circle", "-2")
	var comp *domain.CompositionError
	require.True(t, errors.As(err, &comp))
	assert.Equal(t, "Circle", comp.Field)

	_, err = e.Construct("Square", nil)
	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Expected, "Circle, Point")

	var _ contract.Established[contract.InVariant[shape, circleLabel]] = proof
}

func TestEnum_Constructor(t *testing.T) {
	e := newShape(t)
	build := e.Constructor()

	v, err := build("Point")
	require.NoError(t, err)
	assert.Equal(t, "Point", v.kind)

	v, err = build(map[string]any{"variant": "Circle", "value": "3"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), v.radius)

	_, err = build(42)
	assert.Error(t, err)
}

func TestContainers(t *testing.T) {
	hosts := Slice(parseHost)
	vs, err := hosts([]any{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vs, 2)

	_, err = hosts([]any{"a", "", "c"})
	var comp *domain.CompositionError
	require.True(t, errors.As(err, &comp))
	assert.Equal(t, 1, comp.Index)

	pair := Array(2, parseHost)
	_, err = pair([]string{"a"})
	v, _ := domain.ViolationOf(err)
	assert.Equal(t, domain.ViolationWrongLength, v)
	_, err = pair([]string{"a", "b"})
	assert.NoError(t, err)

	_, err = hosts("not a list")
	var pe *domain.ParseError
	assert.True(t, errors.As(err, &pe))

	opt := Optional(parseHost)
	none, err := opt(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
	_, err = opt("")
	assert.Error(t, err)
	some, err := opt("x")
	require.NoError(t, err)
	assert.Equal(t, "x", some.Get())
}

func TestStructHarness(t *testing.T) {
	s := newServerAddress(t)
	h := StructHarness("compose", s, map[string]Sample{
		"host": {Valid: "example.com", Invalid: ""},
		"port": {Valid: "8080", Invalid: "0"},
	})
	assert.Equal(t, "compose/compose_ServerAddress", h.ID())
	assert.NoError(t, h.Check(context.Background()))

	missing := StructHarness("compose", s, map[string]Sample{
		"host": {Valid: "example.com", Invalid: ""},
	})
	assert.ErrorContains(t, missing.Check(context.Background()), `no sample for field "port"`)

	accepting := StructHarness("compose", s, map[string]Sample{
		"host": {Valid: "example.com", Invalid: "still-valid"},
		"port": {Valid: "8080", Invalid: "0"},
	})
	assert.Error(t, accepting.Check(context.Background()))
}

func TestEnumHarness(t *testing.T) {
	e := newShape(t)
	variantOf := func(s shape) string { return s.kind }

	h := EnumHarness("compose", e, map[string]any{"Circle": "1", "Point": nil}, variantOf)
	assert.NoError(t, h.Check(context.Background()))

	missing := EnumHarness("compose", e, map[string]any{"Circle": "1"}, variantOf)
	assert.ErrorContains(t, missing.Check(context.Background()), `variant "Point" has no sample`)
}
