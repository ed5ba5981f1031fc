package domain

// PromptKind tells the channel what shape of answer is expected.
type PromptKind string

const (
	PromptText    PromptKind = "text"
	PromptNumber  PromptKind = "number"
	PromptBoolean PromptKind = "boolean"
	PromptSelect  PromptKind = "select"
	PromptObject  PromptKind = "object"
)

// Prompt is the structured request sent over the channel for one round.
type Prompt struct {
	// Type is the name of the type being elicited.
	Type string `json:"type"`
	// Field is the dotted path of the field inside a composed type, empty at the top level.
	Field   string     `json:"field,omitempty"`
	Kind    PromptKind `json:"kind"`
	Message string     `json:"message"`
	// Options is set for select prompts.
	Options []string `json:"options,omitempty"`
	// Schema is a JSON Schema describing the requested payload.
	Schema map[string]any `json:"schema,omitempty"`
	// Correction explains why the previous answer was rejected.
	Correction string `json:"correction,omitempty"`
	Round      int    `json:"round"`
	Attempt    int    `json:"attempt"`
}

// ResponseKind distinguishes text payloads from structured ones.
type ResponseKind int

const (
	// ResponseNone is the zero value and marks a missing response.
	ResponseNone ResponseKind = iota
	ResponseText
	ResponseStructured
)

// Response is one raw answer received from the channel.
type Response struct {
	Kind ResponseKind
	Text string
	Data any
}

// TextResponse builds a text payload. An empty string is still a present response.
func TextResponse(s string) Response {
	return Response{Kind: ResponseText, Text: s}
}

// StructuredResponse builds a structured payload.
func StructuredResponse(v any) Response {
	return Response{Kind: ResponseStructured, Data: v}
}

// Empty reports whether no payload was delivered.
func (r Response) Empty() bool {
	return r.Kind == ResponseNone || (r.Kind == ResponseStructured && r.Data == nil)
}

// Raw returns the payload as a value: the text for text responses, the data otherwise.
func (r Response) Raw() any {
	if r.Kind == ResponseText {
		return r.Text
	}
	return r.Data
}
