package tool_test

import (
	"context"
	"testing"

	"github.com/aretw0/elicitation/pkg/adapters/memory"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/aretw0/elicitation/pkg/wrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CacheKeyNewParams", "elicit_cache_key_new_params"},
		{"Point", "elicit_point"},
		{"HTTPServer", "elicit_h_t_t_p_server"},
		{"Snake_Case", "elicit_snake___case"},
		{"Ipv4Addr", "elicit_ipv4_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := tool.Name(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := tool.TypeName(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestName_Rejects(t *testing.T) {
	for _, in := range []string{"", "point", "_Point", "Cache-Key", "Ünicode", "1Point"} {
		_, err := tool.Name(in)
		assert.ErrorIs(t, err, tool.ErrInvalidTypeName, in)
	}
}

func TestName_Injective(t *testing.T) {
	alphabet := []byte{'A', 'b', '_', '1'}
	seen := map[string]string{}
	var gen func(prefix string, n int)
	gen = func(prefix string, n int) {
		if n == 0 {
			return
		}
		for _, c := range alphabet {
			s := prefix + string(c)
			if name, err := tool.Name(s); err == nil {
				if prev, dup := seen[name]; dup {
					t.Fatalf("%q and %q both map to %q", prev, s, name)
				}
				seen[name] = s
			}
			gen(s, n-1)
		}
	}
	gen("", 6)
	assert.NotEmpty(t, seen)
}

type point struct {
	X wrapper.I32NonNegative
}

func pointDescriptor(t *testing.T) *elicit.StructDescriptor[point] {
	t.Helper()
	d, err := elicit.Struct("Point",
		elicit.Field("x", elicit.Int("I32NonNegative", "x?", wrapper.NewNonNegative[int32]),
			func(p *point, x wrapper.I32NonNegative) { p.X = x }),
	)
	require.NoError(t, err)
	return d
}

func TestRegistry(t *testing.T) {
	r := tool.NewRegistry(elicit.WithPolicy(elicit.Policy{MaxAttempts: 1}))
	require.NoError(t, tool.Register(r, pointDescriptor(t), "A point on the axis."))

	err := tool.Register(r, pointDescriptor(t), "again")
	assert.ErrorIs(t, err, tool.ErrDuplicateTool)

	v, err := r.Call(context.Background(), "elicit_point", memory.Script("4"))
	require.NoError(t, err)
	assert.Equal(t, int32(4), v.(point).X.Get())

	_, err = r.Call(context.Background(), "elicit_point", memory.Script("-4", "4"))
	assert.Equal(t, domain.KindExhausted, domain.TerminalKind(err), "registry options apply")

	_, err = r.Call(context.Background(), "elicit_missing", memory.Script())
	assert.ErrorIs(t, err, tool.ErrUnknownTool)

	v, err = r.Construct("elicit_point", map[string]any{"x": "7"})
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.(point).X.Get())
}

func TestRegistry_Merge(t *testing.T) {
	a := tool.NewRegistry()
	b := tool.NewRegistry()
	require.NoError(t, tool.Register(a, pointDescriptor(t), ""))
	require.NoError(t, tool.Register(b, elicit.Affirm("Confirm", "ok?"), ""))

	require.NoError(t, a.Merge(b))
	names := []string{}
	for _, tl := range a.List() {
		names = append(names, tl.Name)
	}
	assert.Equal(t, []string{"elicit_confirm", "elicit_point"}, names)

	c := tool.NewRegistry()
	require.NoError(t, tool.Register(c, elicit.Affirm("Confirm", "again?"), ""))
	require.NoError(t, tool.Register(c, elicit.Affirm("Other", "?"), ""))
	assert.ErrorIs(t, a.Merge(c), tool.ErrDuplicateTool)
	_, ok := a.Lookup("elicit_other")
	assert.False(t, ok, "a failed merge adds nothing")
}

func TestMarkdown(t *testing.T) {
	tl, err := tool.New(pointDescriptor(t), "A point on the axis.")
	require.NoError(t, err)

	md := tl.Markdown()
	assert.Contains(t, md, "# elicit_point")
	assert.Contains(t, md, "A point on the axis.")
	assert.Contains(t, md, "- `x`: integer (required)")
}
