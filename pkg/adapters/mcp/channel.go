package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

var (
	// ErrDeclined is the cause when the client declines or cancels an elicitation.
	ErrDeclined = errors.New("elicitation declined by client")
	// ErrNoPrompt is returned by Await without a preceding Send.
	ErrNoPrompt = errors.New("await without a pending prompt")
)

// valueKey names the single property a non-object question is wrapped in.
// MCP elicitation only accepts flat object schemas.
const valueKey = "value"

// Elicitor is the server-side half of MCP elicitation. *server.MCPServer
// implements it.
type Elicitor interface {
	RequestElicitation(ctx context.Context, request mcp.ElicitationRequest) (*mcp.ElicitationResult, error)
}

// Channel asks questions of the MCP client that issued the current tool call.
// One Channel serves one tool call.
type Channel struct {
	elicitor Elicitor

	mu      sync.Mutex
	pending *domain.Prompt
}

// NewChannel binds a channel to the elicitor. ctx passed to Exchange must
// carry the client session, as the tool handler context does.
func NewChannel(e Elicitor) *Channel {
	return &Channel{elicitor: e}
}

// Send records the prompt for the following Await.
func (c *Channel) Send(ctx context.Context, p domain.Prompt) error {
	if err := ctx.Err(); err != nil {
		return domain.ClassifyChannel("send", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &p
	return nil
}

// Await performs the elicitation for the pending prompt.
func (c *Channel) Await(ctx context.Context) (domain.Response, error) {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	c.mu.Unlock()
	if p == nil {
		return domain.Response{}, domain.ClassifyChannel("await", ErrNoPrompt)
	}
	return c.Exchange(ctx, *p)
}

// Exchange sends one elicitation request and maps the client's answer.
// Each call is an independent request, so concurrent exchanges are safe.
func (c *Channel) Exchange(ctx context.Context, p domain.Prompt) (domain.Response, error) {
	wrapped := !isObject(p.Schema)
	req := mcp.ElicitationRequest{
		Params: mcp.ElicitationParams{
			Message:         message(p),
			RequestedSchema: requestedSchema(p, wrapped),
		},
	}

	res, err := c.elicitor.RequestElicitation(ctx, req)
	if err != nil {
		return domain.Response{}, domain.ClassifyChannel("elicit", err)
	}
	if res == nil {
		return domain.Response{}, nil
	}
	switch res.Action {
	case mcp.ElicitationResponseActionAccept:
	case mcp.ElicitationResponseActionDecline, mcp.ElicitationResponseActionCancel:
		return domain.Response{}, &domain.ChannelError{
			Op:      "elicit",
			Failure: domain.FailureCancelled,
			Err:     fmt.Errorf("%w: %s", ErrDeclined, res.Action),
		}
	default:
		return domain.Response{}, &domain.ChannelError{
			Op:      "elicit",
			Failure: domain.FailureTransport,
			Err:     fmt.Errorf("%w: unknown action %q", domain.ErrTransport, res.Action),
		}
	}

	content, _ := res.Content.(map[string]any)
	if !wrapped {
		if content == nil {
			return domain.Response{}, nil
		}
		return domain.StructuredResponse(content), nil
	}
	switch v := content[valueKey].(type) {
	case nil:
		return domain.Response{}, nil
	case string:
		return domain.TextResponse(v), nil
	default:
		return domain.StructuredResponse(v), nil
	}
}

func message(p domain.Prompt) string {
	msg := p.Message
	if p.Field != "" {
		msg = p.Field + ": " + msg
	}
	if p.Correction != "" {
		msg = "Your previous answer was rejected (" + p.Correction + "). " + msg
	}
	return msg
}

func isObject(schema map[string]any) bool {
	t, _ := schema["type"].(string)
	return t == "object"
}

func requestedSchema(p domain.Prompt, wrapped bool) map[string]any {
	if !wrapped {
		return p.Schema
	}
	prop := leafSchema(p)
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{valueKey: prop},
		"required":   []string{valueKey},
	}
}

func leafSchema(p domain.Prompt) map[string]any {
	prop := make(map[string]any, len(p.Schema)+2)
	for k, v := range p.Schema {
		prop[k] = v
	}
	if _, ok := prop["type"]; !ok {
		prop["type"] = kindType(p.Kind)
	}
	if len(p.Options) > 0 {
		prop["type"] = "string"
		prop["enum"] = p.Options
	}
	prop["description"] = p.Message
	return prop
}

func kindType(k domain.PromptKind) string {
	switch k {
	case domain.PromptNumber:
		return "number"
	case domain.PromptBoolean:
		return "boolean"
	}
	return "string"
}
