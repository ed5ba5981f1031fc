package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/elicitation/internal/catalog"
	"github.com/aretw0/elicitation/internal/presentation/graph"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/tool"
)

func lookup(t *testing.T, name string) tool.Tool {
	t.Helper()
	r, err := catalog.Registry()
	require.NoError(t, err)
	tl, ok := r.Lookup(name)
	require.True(t, ok, name)
	return tl
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		contains []string
	}{
		{
			name: "nested struct",
			tool: "elicit_listener",
			contains: []string{
				"graph TD",
				"root((\"Listener\"))",
				"f_address[\"address\"]",
				"root --> f_address",
				"f_address --> f_address_host",
				"f_address_port[/\"port: integer\"/]",
			},
		},
		{
			name: "list and optional",
			tool: "elicit_listener",
			contains: []string{
				"f_allow[[\"allow: list\"]]",
				"f_allow --> f_allow_items",
				"f_backlog_present{\"backlog?\"}",
				"root -.-> f_backlog_present",
				"f_backlog_present -- \"yes\" --> f_backlog",
			},
		},
		{
			name: "enum variants",
			tool: "elicit_shape",
			contains: []string{
				"root((\"Shape\"))",
				"root -- \"circle\" --> f_circle",
				"f_point([\"point\"])",
				"root -- \"point\" --> f_point",
			},
		},
		{
			name: "leaf",
			tool: "elicit_percent",
			contains: []string{
				"root --> f_value",
				"f_value[/\"value: integer\"/]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(lookup(t, tt.tool), nil)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			assert.NotContains(t, out, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	tr := &domain.Transcript{Rounds: []domain.Exchange{
		{Round: 1, Field: "address.host", Response: "db"},
		{Round: 2, Field: "address.port", Response: "0", Rejection: "not_positive"},
		{Round: 2, Attempt: 2, Field: "address.port", Response: "5432"},
		{Round: 3, Field: "allow.0", Response: "8.8.8.8", Rejection: "not private"},
		{Round: 4, Field: "backlog.present", Response: "no"},
	}}

	overlay := graph.OverlayOf(tr)
	assert.Equal(t, []string{"address.host", "address.port", "backlog.present"}, overlay.Accepted)
	assert.Equal(t, []string{"allow.0"}, overlay.Rejected)

	out := graph.GenerateMermaid(lookup(t, "elicit_listener"), overlay)
	assert.Contains(t, out, "class f_address_host accepted;")
	assert.Contains(t, out, "class f_address_port accepted;")
	assert.Contains(t, out, "class f_allow_items rejected;")
	assert.Contains(t, out, "class f_backlog_present accepted;")
	assert.NotContains(t, out, "class f_backlog accepted;")
}
