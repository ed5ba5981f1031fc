package contract

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Annotation is the neutral description of one checked constructor.
// Requires and Ensures restate the type's documented invariant in prose
// so that any backend can translate them.
type Annotation struct {
	Type        string   `yaml:"type"`
	Constructor string   `yaml:"constructor"`
	Requires    []string `yaml:"requires"`
	Ensures     []string `yaml:"ensures"`
	Trusted     []string `yaml:"trusted,omitempty"`
}

// Backend translates annotations for one verifier or documentation target.
type Backend interface {
	Name() string
	Emit(w io.Writer, annotations []Annotation) error
}

// Catalog collects annotations. Safe for concurrent use.
type Catalog struct {
	mu          sync.RWMutex
	annotations map[string]Annotation
}

// NewCatalog creates an empty catalog.
func NewCatalog(annotations ...Annotation) *Catalog {
	c := &Catalog{annotations: make(map[string]Annotation)}
	for _, a := range annotations {
		c.Add(a)
	}
	return c
}

// Add stores an annotation, replacing any previous one for the same type.
func (c *Catalog) Add(a Annotation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.annotations[a.Type] = a
}

// Lookup returns the annotation for a type name.
func (c *Catalog) Lookup(typeName string) (Annotation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.annotations[typeName]
	return a, ok
}

// All returns the annotations sorted by type name.
func (c *Catalog) All() []Annotation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Annotation, 0, len(c.annotations))
	for _, a := range c.annotations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Emit writes every annotation in the catalog through the backend.
func (c *Catalog) Emit(w io.Writer, b Backend) error {
	if err := b.Emit(w, c.All()); err != nil {
		return fmt.Errorf("%s backend: %w", b.Name(), err)
	}
	return nil
}

// YAMLBackend emits a manifest that external verifiers can consume.
type YAMLBackend struct{}

func (YAMLBackend) Name() string { return "yaml" }

func (YAMLBackend) Emit(w io.Writer, annotations []Annotation) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	doc := struct {
		Contracts []Annotation `yaml:"contracts"`
	}{Contracts: annotations}
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// MarkdownBackend emits human-readable contract documentation.
type MarkdownBackend struct{}

func (MarkdownBackend) Name() string { return "markdown" }

func (MarkdownBackend) Emit(w io.Writer, annotations []Annotation) error {
	var b bytes.Buffer
	for i, a := range annotations {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\nConstructor: `%s`\n\n", a.Type, a.Constructor)
		writeList(&b, "Requires", a.Requires)
		writeList(&b, "Ensures", a.Ensures)
		writeList(&b, "Trusted", a.Trusted)
	}
	_, err := w.Write(b.Bytes())
	return err
}

func writeList(b *bytes.Buffer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", strings.TrimSpace(it))
	}
	b.WriteString("\n")
}

// ParseManifest reads a manifest produced by YAMLBackend.
func ParseManifest(r io.Reader) ([]Annotation, error) {
	var doc struct {
		Contracts []Annotation `yaml:"contracts"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return doc.Contracts, nil
}
