package tool

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown describes the tool for humans: its purpose and the shape of the
// payload it accepts.
func (t Tool) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Name)
	fmt.Fprintf(&b, "Elicits a `%s`.\n\n", t.TypeName)
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Description)
	}
	b.WriteString("## Payload\n\n")
	writeSchema(&b, t.Schema, 0)
	return b.String()
}

func writeSchema(b *strings.Builder, schema map[string]any, depth int) {
	indent := strings.Repeat("  ", depth)
	if props, ok := schema["properties"].(map[string]any); ok {
		required := map[string]bool{}
		if req, ok := schema["required"].([]string); ok {
			for _, r := range req {
				required[r] = true
			}
		}
		names := make([]string, 0, len(props))
		for n := range props {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			sub, _ := props[n].(map[string]any)
			mark := ""
			if required[n] {
				mark = " (required)"
			}
			fmt.Fprintf(b, "%s- `%s`: %s%s\n", indent, n, typeOf(sub), mark)
			if _, nested := sub["properties"]; nested {
				writeSchema(b, sub, depth+1)
			}
		}
		return
	}
	if alts, ok := schema["oneOf"].([]any); ok {
		fmt.Fprintf(b, "%sOne of:\n\n", indent)
		for _, a := range alts {
			alt, _ := a.(map[string]any)
			if c, ok := alt["const"]; ok {
				fmt.Fprintf(b, "%s- `%v`\n", indent, c)
				continue
			}
			props, _ := alt["properties"].(map[string]any)
			variant, _ := props["variant"].(map[string]any)
			value, _ := props["value"].(map[string]any)
			fmt.Fprintf(b, "%s- `%v` with value: %s\n", indent, variant["const"], typeOf(value))
		}
		return
	}
	fmt.Fprintf(b, "%s%s\n", indent, typeOf(schema))
}

func typeOf(schema map[string]any) string {
	if schema == nil {
		return "any"
	}
	if enum, ok := schema["enum"].([]string); ok {
		return "one of " + strings.Join(enum, ", ")
	}
	if t, ok := schema["type"].(string); ok {
		if t == "array" {
			items, _ := schema["items"].(map[string]any)
			return "list of " + typeOf(items)
		}
		return t
	}
	if _, ok := schema["oneOf"]; ok {
		return "variant"
	}
	if _, ok := schema["anyOf"]; ok {
		return "optional"
	}
	return "any"
}
