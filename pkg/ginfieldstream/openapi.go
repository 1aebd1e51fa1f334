package ginfieldstream

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
	"github.com/deepankarm/fieldstream/pkg/fieldstream/schema"
)

// APIVersion is reported in the OpenAPI document.
const APIVersion = "1.0.0"

// endpoint describes one route in the OpenAPI document.
type endpoint struct {
	Method      string
	Path        string
	Summary     string
	Description string
	Tags        []string
	Query       []queryParam
	Body        map[string]any // request body content, keyed by media type
	Responses   map[int]response
}

type queryParam struct {
	Name        string
	Type        string
	Description string
}

type response struct {
	Description string
	MediaType   string
	Type        reflect.Type // schema of the body, if any
}

// endpoints lists the service routes as Register mounts them.
func (s *Server) endpoints() []endpoint {
	fieldParam := queryParam{"field", "string", "Stream this top-level key instead of the configured field"}
	sinkParam := queryParam{"sink", "string", "Consumer name used in logs and metrics: " + DefaultSink + " or a configured sink"}
	outputSchema, err := schema.ForSchema(s.schema)
	if err != nil {
		outputSchema = map[string]any{"type": "object"}
	}

	return []endpoint{
		{
			Method:    http.MethodGet,
			Path:      "/healthz",
			Summary:   "Health check",
			Tags:      []string{"service"},
			Responses: map[int]response{200: {Description: "Service is up"}},
		},
		{
			Method:    http.MethodGet,
			Path:      "/metrics",
			Summary:   "Prometheus metrics",
			Tags:      []string{"service"},
			Responses: map[int]response{200: {Description: "Metrics in the Prometheus text format", MediaType: "text/plain"}},
		},
		{
			Method:      http.MethodGet,
			Path:        "/v1/schema",
			Summary:     "Response format for the model",
			Description: "JSON Schema to pass to a provider's structured-output option so the model writes an object the service can stream.",
			Tags:        []string{"extract"},
			Query:       []queryParam{fieldParam},
			Responses:   map[int]response{200: {Description: "JSON Schema", MediaType: "application/json"}},
		},
		{
			Method:      http.MethodPost,
			Path:        "/v1/extract",
			Summary:     "Stream a field as Server-Sent Events",
			Description: "The request body is raw model output, read as it arrives. Each piece of field text is sent as a \"delta\" event; the stream ends with one \"done\" or \"error\" event.",
			Tags:        []string{"extract"},
			Query: []queryParam{
				fieldParam,
				sinkParam,
				{"salvage", "boolean", "Try to recover trailing text from malformed output"},
			},
			Body: map[string]any{
				"application/json": map[string]any{"schema": outputSchema},
				"text/plain":       map[string]any{"schema": map[string]any{"type": "string"}},
			},
			Responses: map[int]response{
				200: {Description: "Event stream of delta, done and error events", MediaType: "text/event-stream", Type: reflect.TypeFor[fieldstream.Delta]()},
				400: {Description: "Unknown sink", MediaType: "application/json"},
			},
		},
		{
			Method:      http.MethodGet,
			Path:        "/v1/extract/ws",
			Summary:     "Stream a field over a WebSocket",
			Description: "Clients send \"chunk\" messages and one \"end\"; the server answers with \"delta\" messages and one \"done\" or \"error\".",
			Tags:        []string{"extract"},
			Query:       []queryParam{fieldParam, sinkParam},
			Responses: map[int]response{
				101: {Description: "Switching to the WebSocket protocol; messages follow WSMessage", Type: reflect.TypeFor[WSMessage]()},
				400: {Description: "Unknown sink", MediaType: "application/json"},
			},
		},
	}
}

// GenerateOpenAPI generates the OpenAPI 3.0 document of the service.
func (s *Server) GenerateOpenAPI() map[string]any {
	paths := make(map[string]any)
	components := map[string]any{
		"schemas": map[string]any{},
	}

	// Payloads are documented even where no route returns them directly.
	for _, t := range []reflect.Type{reflect.TypeFor[DonePayload](), reflect.TypeFor[ErrorPayload]()} {
		if sch, err := generateSchemaFromType(t); err == nil {
			addComponent(components, t.Name(), sch)
		}
	}

	for _, ep := range s.endpoints() {
		pathItem, ok := paths[ep.Path].(map[string]any)
		if !ok {
			pathItem = make(map[string]any)
			paths[ep.Path] = pathItem
		}
		pathItem[strings.ToLower(ep.Method)] = buildOperation(ep, components)
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "fieldstream",
			"version":     APIVersion,
			"description": "Streams one string field of a model's JSON output while the model is still writing it.",
		},
		"paths":      paths,
		"components": components,
	}
}

// buildOperation creates an OpenAPI operation object for an endpoint
func buildOperation(ep endpoint, components map[string]any) map[string]any {
	operation := map[string]any{
		"summary": ep.Summary,
		"tags":    ep.Tags,
	}
	if ep.Description != "" {
		operation["description"] = ep.Description
	}

	if len(ep.Query) > 0 {
		params := make([]any, 0, len(ep.Query))
		for _, q := range ep.Query {
			params = append(params, map[string]any{
				"name":        q.Name,
				"in":          "query",
				"required":    false,
				"description": q.Description,
				"schema":      map[string]any{"type": q.Type},
			})
		}
		operation["parameters"] = params
	}

	if ep.Body != nil {
		operation["requestBody"] = map[string]any{
			"required": true,
			"content":  ep.Body,
		}
	}

	responses := make(map[string]any)
	for code, resp := range ep.Responses {
		r := map[string]any{"description": resp.Description}
		if resp.MediaType != "" {
			content := map[string]any{}
			if resp.Type != nil {
				if sch, err := generateSchemaFromType(resp.Type); err == nil {
					addComponent(components, resp.Type.Name(), sch)
					content["schema"] = map[string]any{"$ref": "#/components/schemas/" + resp.Type.Name()}
				}
			}
			r["content"] = map[string]any{resp.MediaType: content}
		} else if resp.Type != nil {
			// Documented for the upgraded connection only.
			if sch, err := generateSchemaFromType(resp.Type); err == nil {
				addComponent(components, resp.Type.Name(), sch)
			}
		}
		responses[strconv.Itoa(code)] = r
	}
	operation["responses"] = responses

	return operation
}

// addComponent stores sch and its definitions under components.schemas.
func addComponent(components map[string]any, name string, sch map[string]any) {
	schemas := components["schemas"].(map[string]any)
	if defs, ok := sch["$defs"].(map[string]any); ok {
		for defName, def := range defs {
			schemas[defName] = FixSchemaRefs(def)
		}
	}
	schemas[name] = removeDefsFromSchema(sch)
}

// removeDefsFromSchema removes $defs from a schema since we move them to components
func removeDefsFromSchema(s map[string]any) map[string]any {
	result := make(map[string]any, len(s))
	for k, v := range s {
		if k != "$defs" {
			result[k] = v
		}
	}
	return result
}

// FixSchemaRefs recursively fixes $ref paths and removes $schema property
func FixSchemaRefs(data any) any {
	switch v := data.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			switch key {
			case "$schema", "$id":
				continue
			case "$ref":
				if ref, ok := val.(string); ok && strings.HasPrefix(ref, "#/$defs/") {
					val = "#/components/schemas/" + ref[len("#/$defs/"):]
				}
				result[key] = val
			default:
				result[key] = FixSchemaRefs(val)
			}
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = FixSchemaRefs(item)
		}
		return result
	default:
		return v
	}
}

// generateSchemaFromType reflects t into an OpenAPI-compatible schema map.
func generateSchemaFromType(t reflect.Type) (map[string]any, error) {
	data, err := json.Marshal(schema.NewGenerator().Reflect(t))
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return FixSchemaRefs(m).(map[string]any), nil
}

func (s *Server) openAPI(c *gin.Context) {
	c.JSON(http.StatusOK, s.GenerateOpenAPI())
}

// SwaggerUI returns a Gin handler that serves Swagger UI for the document
// at openAPIURL.
func SwaggerUI(openAPIURL string) gin.HandlerFunc {
	html := `<!DOCTYPE html>
<html>
<head>
    <link type="text/css" rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
    <title>fieldstream API</title>
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
const ui = SwaggerUIBundle({
    url: '` + openAPIURL + `',
    dom_id: '#swagger-ui',
    layout: 'BaseLayout',
    deepLinking: true,
    presets: [
        SwaggerUIBundle.presets.apis,
        SwaggerUIBundle.SwaggerUIStandalonePreset
    ],
})
</script>
</body>
</html>`

	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, html)
	}
}
