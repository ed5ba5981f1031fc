package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/getkin/kin-openapi/openapi3"
)

// Document builds the OpenAPI 3 description of the tool routes. Each tool
// gets its own POST operation whose value schema is the tool schema.
func Document(registry *tool.Registry, title, version string) (*openapi3.T, error) {
	errorSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("kind", openapi3.NewStringSchema()).
		WithProperty("violation", openapi3.NewStringSchema()).
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("outcome", openapi3.NewStringSchema()).
		WithProperty("transcript", openapi3.NewStringSchema())
	errorSchema.Required = []string{"error"}

	list := openapi3.NewOperation()
	list.OperationID = "listTools"
	list.Summary = "List registered tools"
	list.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("Registered tools, sorted by name").
		WithJSONSchema(openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())))

	paths := openapi3.NewPaths(
		openapi3.WithPath("/tools", &openapi3.PathItem{Get: list}),
	)

	for _, t := range registry.List() {
		value, err := schemaOf(t.Schema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		body := openapi3.NewObjectSchema().
			WithPropertyRef("value", value).
			WithProperty("answers", openapi3.NewArraySchema().WithItems(openapi3.NewSchema()))

		call := openapi3.NewOperation()
		call.OperationID = "call_" + t.Name
		call.Summary = t.Description
		call.Description = t.Markdown()
		call.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(body),
		}
		call.AddResponse(http.StatusOK, openapi3.NewResponse().
			WithDescription("The established value").
			WithJSONSchema(openapi3.NewObjectSchema().
				WithProperty("tool", openapi3.NewStringSchema()).
				WithPropertyRef("value", value).
				WithProperty("outcome", openapi3.NewStringSchema()).
				WithProperty("transcript", openapi3.NewStringSchema())))
		call.AddResponse(http.StatusBadRequest, openapi3.NewResponse().
			WithDescription("Malformed request").
			WithJSONSchema(errorSchema))
		call.AddResponse(http.StatusUnprocessableEntity, openapi3.NewResponse().
			WithDescription("The value could not be established").
			WithJSONSchema(errorSchema))

		paths.Set("/tools/"+t.Name, &openapi3.PathItem{Post: call})
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   paths,
	}, nil
}

// schemaOf converts a JSON Schema map into a kin-openapi schema.
func schemaOf(m map[string]any) (*openapi3.SchemaRef, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var s openapi3.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("convert schema: %w", err)
	}
	return openapi3.NewSchemaRef("", &s), nil
}

// OpenAPI handles GET /openapi.json.
func (s *Server) OpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := Document(s.registry, s.title, s.version)
	if err != nil {
		s.logger.Error("build openapi document failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}
