package schema_test

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
	"github.com/deepankarm/fieldstream/pkg/fieldstream/schema"
)

type voiceReply struct {
	SpokenResponse string   `json:"spoken_response" jsonschema:"description=Text read aloud to the user"`
	Mood           string   `json:"mood,omitempty" jsonschema:"enum=calm,enum=excited"`
	Sources        []source `json:"sources"`
}

type source struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

func requiredOf(t *testing.T, m map[string]any) []string {
	t.Helper()
	switch req := m["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, len(req))
		for i, r := range req {
			out[i] = r.(string)
		}
		return out
	default:
		t.Fatalf("required has type %T", m["required"])
		return nil
	}
}

func properties(t *testing.T, m map[string]any) map[string]any {
	t.Helper()
	props, ok := m["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties missing: %v", m)
	}
	return props
}

func TestForField(t *testing.T) {
	s := schema.ForField("response")

	if s["type"] != "object" {
		t.Errorf("type = %v, want object", s["type"])
	}
	if s["additionalProperties"] != false {
		t.Errorf("additionalProperties = %v, want false", s["additionalProperties"])
	}
	prop, ok := properties(t, s)["response"].(map[string]any)
	if !ok || prop["type"] != "string" {
		t.Errorf("response property = %v", prop)
	}
	if req := requiredOf(t, s); !slices.Equal(req, []string{"response"}) {
		t.Errorf("required = %v", req)
	}
}

func TestFor(t *testing.T) {
	s, err := schema.For[voiceReply]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}

	for _, key := range []string{"$defs", "$schema", "$id", "$ref"} {
		if _, ok := s[key]; ok {
			t.Errorf("strict schema should not contain %s", key)
		}
	}
	if s["type"] != "object" || s["additionalProperties"] != false {
		t.Errorf("root = %v", s)
	}

	want := []string{"mood", "sources", "spoken_response"}
	if req := requiredOf(t, s); !slices.Equal(req, want) {
		t.Errorf("required = %v, want %v", req, want)
	}

	props := properties(t, s)
	spoken := props["spoken_response"].(map[string]any)
	if spoken["description"] != "Text read aloud to the user" {
		t.Errorf("description = %v", spoken["description"])
	}

	// Nested types are inlined and closed too.
	items, ok := props["sources"].(map[string]any)["items"].(map[string]any)
	if !ok {
		t.Fatalf("sources.items = %v", props["sources"])
	}
	if items["additionalProperties"] != false {
		t.Errorf("nested additionalProperties = %v", items["additionalProperties"])
	}
	if req := requiredOf(t, items); !slices.Equal(req, []string{"title", "url"}) {
		t.Errorf("nested required = %v", req)
	}

	if _, err := json.Marshal(s); err != nil {
		t.Errorf("schema does not marshal: %v", err)
	}
}

func TestForSchema(t *testing.T) {
	open, err := schema.ForSchema(fieldstream.OpenField("answer"))
	if err != nil {
		t.Fatalf("ForSchema(open): %v", err)
	}
	if _, ok := properties(t, open)["answer"]; !ok {
		t.Errorf("open schema = %v", open)
	}

	typed, err := schema.ForSchema(fieldstream.MustTyped[voiceReply]("spoken_response"))
	if err != nil {
		t.Fatalf("ForSchema(typed): %v", err)
	}
	if _, ok := properties(t, typed)["sources"]; !ok {
		t.Errorf("typed schema = %v", typed)
	}
}

func TestTransformForOpenAIResolvesRefs(t *testing.T) {
	in := map[string]any{
		"$ref": "#/$defs/Reply",
		"$defs": map[string]any{
			"Reply": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"response": map[string]any{"type": "string"},
				},
			},
		},
	}

	out := schema.TransformForOpenAI(in)
	if out["type"] != "object" {
		t.Errorf("type = %v", out["type"])
	}
	if _, ok := out["$ref"]; ok {
		t.Error("$ref not resolved")
	}
	if req := requiredOf(t, out); !slices.Equal(req, []string{"response"}) {
		t.Errorf("required = %v", req)
	}
}
