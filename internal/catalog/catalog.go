// Package catalog holds the elicitable types served by the elicit CLI.
package catalog

import (
	"errors"
	"strings"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/google/uuid"
)

// MaxCacheKeyBytes bounds CacheKeyNewParams.Key.
const MaxCacheKeyBytes = 128

// ServerAddress is a host and a non-zero port.
type ServerAddress struct {
	Host wrapper.NonEmptyString `json:"host"`
	Port wrapper.PositiveU16    `json:"port"`
}

// Listener is where a service accepts connections.
type Listener struct {
	Address ServerAddress        `json:"address"`
	TLS     bool                 `json:"tls"`
	Allow   []wrapper.IPPrivate  `json:"allow"`
	Backlog *wrapper.PositiveU16 `json:"backlog,omitempty"`
}

// CacheKeyNewParams are the arguments for creating one cache entry.
type CacheKeyNewParams struct {
	Namespace  wrapper.NonEmptyString      `json:"namespace"`
	Key        wrapper.BoundedString       `json:"key"`
	TTLSeconds wrapper.Positive[uint32]    `json:"ttl_seconds"`
	Tags       wrapper.UniqueSlice[string] `json:"tags"`
}

// Shape is a sized circle or square, or a point.
type Shape struct {
	Kind string `json:"kind"`
	Size int32  `json:"size,omitempty"`
}

// Percent is an integer between 0 and 100 inclusive.
type Percent = wrapper.Range[uint8]

func host() *elicit.LeafDescriptor[wrapper.NonEmptyString] {
	return elicit.Text("Host", "Host name?", wrapper.NewNonEmptyString)
}

func port() *elicit.LeafDescriptor[wrapper.PositiveU16] {
	return elicit.Int("Port", "Port?", wrapper.NewPositive[uint16])
}

// ServerAddressDescriptor elicits a ServerAddress field by field.
func ServerAddressDescriptor() (*elicit.StructDescriptor[ServerAddress], error) {
	return elicit.Struct("ServerAddress",
		elicit.Field("host", host(), func(a *ServerAddress, h wrapper.NonEmptyString) { a.Host = h }),
		elicit.Field("port", port(), func(a *ServerAddress, p wrapper.PositiveU16) { a.Port = p }),
	)
}

// ListenerDescriptor nests ServerAddress and adds a TLS switch, an allow
// list of private addresses and an optional backlog.
func ListenerDescriptor() (*elicit.StructDescriptor[Listener], error) {
	addr, err := ServerAddressDescriptor()
	if err != nil {
		return nil, err
	}
	allowed := elicit.Text("IpPrivate", "Private address to allow?", wrapper.NewIP[wrapper.IsPrivateIP])
	backlog := elicit.Int("Backlog", "Listen backlog?", wrapper.NewPositive[uint16])
	return elicit.Struct("Listener",
		elicit.Field("address", addr, func(l *Listener, a ServerAddress) { l.Address = a }),
		elicit.Field("tls", elicit.Affirm("Tls", "Enable TLS?"), func(l *Listener, on bool) { l.TLS = on }),
		elicit.Field("allow", elicit.Slice("Allow", "How many private addresses to allow?", allowed, 8),
			func(l *Listener, ips []wrapper.IPPrivate) { l.Allow = ips }),
		elicit.Field("backlog", elicit.Optional("Set a listen backlog?", backlog),
			func(l *Listener, b *wrapper.PositiveU16) { l.Backlog = b }),
	)
}

// CacheKeyNewParamsDescriptor elicits the parameters of a new cache key.
func CacheKeyNewParamsDescriptor() (*elicit.StructDescriptor[CacheKeyNewParams], error) {
	namespace := elicit.Text("Namespace", "Cache namespace?", wrapper.NewNonEmptyString)
	key := elicit.Text("Key", "Cache key?", func(s string) (wrapper.BoundedString, error) {
		return wrapper.NewBoundedString(s, MaxCacheKeyBytes)
	})
	ttl := elicit.Int("TtlSeconds", "Time to live in seconds?", wrapper.NewPositive[uint32])
	tags := elicit.Text("Tags", "Comma separated tags?", func(s string) (wrapper.UniqueSlice[string], error) {
		return wrapper.NewUniqueSlice(splitTags(s))
	})
	return elicit.Struct("CacheKeyNewParams",
		elicit.Field("namespace", namespace, func(p *CacheKeyNewParams, v wrapper.NonEmptyString) { p.Namespace = v }),
		elicit.Field("key", key, func(p *CacheKeyNewParams, v wrapper.BoundedString) { p.Key = v }),
		elicit.Field("ttl_seconds", ttl, func(p *CacheKeyNewParams, v wrapper.Positive[uint32]) { p.TTLSeconds = v }),
		elicit.Field("tags", tags, func(p *CacheKeyNewParams, v wrapper.UniqueSlice[string]) { p.Tags = v }),
	)
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ShapeDescriptor elicits a variant label, then the payload of sized variants.
func ShapeDescriptor() (*elicit.EnumDescriptor[Shape], error) {
	size := func(name, message string) *elicit.LeafDescriptor[wrapper.PositiveI32] {
		return elicit.Int(name, message, wrapper.NewPositive[int32])
	}
	return elicit.Enum("Shape", "Which shape?",
		elicit.Payload("circle", size("Radius", "Radius?"), func(r wrapper.PositiveI32) Shape {
			return Shape{Kind: "circle", Size: r.Get()}
		}),
		elicit.Payload("square", size("Side", "Side length?"), func(s wrapper.PositiveI32) Shape {
			return Shape{Kind: "square", Size: s.Get()}
		}),
		elicit.Unit("point", Shape{Kind: "point"}),
	)
}

// PercentDescriptor elicits a Percent.
func PercentDescriptor() *elicit.LeafDescriptor[Percent] {
	return elicit.Int("Percent", "Percentage (0-100)?", func(n uint8) (Percent, error) {
		return wrapper.NewRange[uint8](n, 0, 100)
	})
}

// RequestIDDescriptor elicits a non-nil UUID.
func RequestIDDescriptor() *elicit.LeafDescriptor[wrapper.UUIDNonNil] {
	return elicit.Text("RequestId", "Request ID (UUID)?", func(s string) (wrapper.UUIDNonNil, error) {
		id, err := uuid.Parse(s)
		if err != nil {
			return wrapper.UUIDNonNil{}, &domain.ParseError{Type: "RequestId", Expected: "uuid", Received: s}
		}
		return wrapper.NewUUIDNonNil(id)
	})
}

// EndpointDescriptor elicits an ip:port pair with a non-zero port.
func EndpointDescriptor() *elicit.LeafDescriptor[wrapper.PortNonZero] {
	return elicit.Text("Endpoint", "Endpoint (ip:port)?", wrapper.NewSocket[wrapper.IsNonZeroPort])
}

// Registry registers every catalog type. opts apply to every call through
// the registry.
func Registry(opts ...elicit.Option) (*tool.Registry, error) {
	r := tool.NewRegistry(opts...)

	addr, err := ServerAddressDescriptor()
	if err != nil {
		return nil, err
	}
	listener, err := ListenerDescriptor()
	if err != nil {
		return nil, err
	}
	cache, err := CacheKeyNewParamsDescriptor()
	if err != nil {
		return nil, err
	}
	shape, err := ShapeDescriptor()
	if err != nil {
		return nil, err
	}

	err = errors.Join(
		tool.Register(r, addr, "A host name and a non-zero TCP port."),
		tool.Register(r, listener, "A listening address with TLS, an allow list and an optional backlog."),
		tool.Register(r, cache, "Parameters for creating a cache key."),
		tool.Register(r, shape, "A sized circle or square, or a point."),
		tool.Register(r, PercentDescriptor(), "An integer percentage between 0 and 100."),
		tool.Register(r, RequestIDDescriptor(), "A non-nil request UUID."),
		tool.Register(r, EndpointDescriptor(), "An ip:port socket address with a non-zero port."),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}
