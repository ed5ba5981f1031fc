package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/tool"
)

// Overlay marks fields on the graph by their last recorded result.
type Overlay struct {
	Accepted []string
	Rejected []string
}

// OverlayOf derives an overlay from a transcript: a field is accepted when
// its last exchange was, rejected otherwise.
func OverlayOf(t *domain.Transcript) *Overlay {
	last := make(map[string]domain.Exchange)
	var order []string
	for _, ex := range t.Rounds {
		if _, seen := last[ex.Field]; !seen {
			order = append(order, ex.Field)
		}
		last[ex.Field] = ex
	}
	o := &Overlay{}
	for _, f := range order {
		if last[f].Rejection == "" {
			o.Accepted = append(o.Accepted, f)
		} else {
			o.Rejected = append(o.Rejected, f)
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the payload a tool elicits.
// It applies semantic styling:
// - Root type: ((Circle))
// - Leaf input: [/Parallelogram/]
// - List: [[Subroutine]]
// - Unit variant: ([Stadium])
// - Presence question: {Rhombus}
// Enum variants label their edges and optional values hang off a dotted
// edge to their presence question.
func GenerateMermaid(t tool.Tool, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    root((\"%s\"))\n", escape(t.TypeName))
	leafRoot := t.Schema["properties"] == nil && t.Schema["oneOf"] == nil
	if leafRoot {
		writeChild(&sb, "root", "value", "value", t.Schema, "-->")
	} else {
		writeNode(&sb, "root", "", t.Schema)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text on both themes.
		sb.WriteString("    classDef accepted fill:#dcfce7,stroke:#166534,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef rejected fill:#fee2e2,stroke:#b91c1c,stroke-width:4px,color:#000;\n")
		id := func(f string) string {
			if f == "" && leafRoot {
				return nodeID("value")
			}
			return nodeID(f)
		}
		for _, f := range overlay.Accepted {
			fmt.Fprintf(&sb, "    class %s accepted;\n", id(f))
		}
		for _, f := range overlay.Rejected {
			fmt.Fprintf(&sb, "    class %s rejected;\n", id(f))
		}
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, parent, path string, schema map[string]any) {
	if props, ok := schema["properties"].(map[string]any); ok {
		names := make([]string, 0, len(props))
		for n := range props {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			sub, _ := props[n].(map[string]any)
			writeChild(sb, parent, join(path, n), n, sub, "-->")
		}
		return
	}
	if alts, ok := schema["oneOf"].([]any); ok {
		for _, a := range alts {
			alt, _ := a.(map[string]any)
			if c, ok := alt["const"]; ok {
				label := fmt.Sprint(c)
				id := nodeID(join(path, label))
				fmt.Fprintf(sb, "    %s([\"%s\"])\n", id, escape(label))
				fmt.Fprintf(sb, "    %s -- \"%s\" --> %s\n", parent, escape(label), id)
				continue
			}
			props, _ := alt["properties"].(map[string]any)
			variant, _ := props["variant"].(map[string]any)
			value, _ := props["value"].(map[string]any)
			label := fmt.Sprint(variant["const"])
			writeChild(sb, parent, join(path, label), label, value, fmt.Sprintf("-- \"%s\" -->", escape(label)))
		}
	}
}

func writeChild(sb *strings.Builder, parent, path, name string, schema map[string]any, arrow string) {
	if opt, ok := schema["anyOf"].([]any); ok && len(opt) > 0 {
		inner, _ := opt[0].(map[string]any)
		pid := nodeID(join(path, "present"))
		fmt.Fprintf(sb, "    %s{\"%s?\"}\n", pid, escape(name))
		fmt.Fprintf(sb, "    %s -.-> %s\n", parent, pid)
		writeChild(sb, pid, path, name, inner, "-- \"yes\" -->")
		return
	}
	id := nodeID(path)
	switch {
	case schema["properties"] != nil, schema["oneOf"] != nil:
		fmt.Fprintf(sb, "    %s[\"%s\"]\n", id, escape(name))
		fmt.Fprintf(sb, "    %s %s %s\n", parent, arrow, id)
		writeNode(sb, id, path, schema)
	case schema["type"] == "array":
		fmt.Fprintf(sb, "    %s[[\"%s: list\"]]\n", id, escape(name))
		fmt.Fprintf(sb, "    %s %s %s\n", parent, arrow, id)
		items, _ := schema["items"].(map[string]any)
		writeChild(sb, id, join(path, "items"), "item", items, "-->")
	default:
		fmt.Fprintf(sb, "    %s[/\"%s: %s\"/]\n", id, escape(name), leafType(schema))
		fmt.Fprintf(sb, "    %s %s %s\n", parent, arrow, id)
	}
}

func leafType(schema map[string]any) string {
	if t, ok := schema["type"].(string); ok {
		return t
	}
	return "any"
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// nodeID maps a field path to a Mermaid-safe node ID. List indices collapse
// onto the shared item node.
func nodeID(path string) string {
	if path == "" {
		return "root"
	}
	parts := strings.Split(path, ".")
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = "items"
		}
	}
	s := strings.NewReplacer("-", "_", "/", "_", "\\", "_", " ", "_").Replace(strings.Join(parts, "_"))
	return "f_" + s
}

// escape replaces double quotes, which end a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
