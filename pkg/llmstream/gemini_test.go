package llmstream_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/deepankarm/fieldstream/pkg/fieldstream/schema"
	"github.com/deepankarm/fieldstream/pkg/llmstream"
)

func geminiChunk(parts ...map[string]any) string {
	data, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": parts},
			"index":   0,
		}},
	})
	return string(data)
}

func TestGemini(t *testing.T) {
	var gotPath string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", geminiChunk(map[string]any{"text": "thinking...", "thought": true}))
		fmt.Fprintf(w, "data: %s\n\n", geminiChunk(map[string]any{"text": `{"response": "Hi`}))
		fmt.Fprintf(w, "data: %s\n\n", geminiChunk(map[string]any{"text": ` there"}`}))
	}))
	defer srv.Close()

	client, err := genai.NewClient(t.Context(), &genai.ClientConfig{
		APIKey:      "test",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	})
	require.NoError(t, err)

	s := llmstream.Gemini(t.Context(), client, "gemini-2.5-flash",
		genai.Text("hi"), llmstream.GeminiConfig(schema.ForField("response")))
	defer s.Close()

	out, err := collect(t, s)
	require.NoError(t, err)
	assert.Equal(t, []string{`{"response": "Hi`, ` there"}`}, out)
	assert.True(t, strings.HasSuffix(gotPath, "gemini-2.5-flash:streamGenerateContent"), gotPath)

	cfg, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing: %v", body)
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.NotNil(t, cfg["responseJsonSchema"])
}

func TestGeminiConfig(t *testing.T) {
	s := schema.ForField("response")
	cfg := llmstream.GeminiConfig(s)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Equal(t, s, cfg.ResponseJsonSchema)
}

func TestGeminiSeq(t *testing.T) {
	boom := errors.New("quota exceeded")
	responses := []*genai.GenerateContentResponse{
		{},
		{Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("a", genai.RoleModel)}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{Text: "plan", Thought: true},
			{Text: "b"},
			{Text: "c"},
		}}}}},
	}
	seq := func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, r := range responses {
			if !yield(r, nil) {
				return
			}
		}
		yield(nil, boom)
	}

	s := llmstream.FromGeminiSeq(seq)
	defer s.Close()

	out, err := collect(t, s)
	assert.Equal(t, []string{"a", "bc"}, out)
	assert.ErrorIs(t, err, boom)
}

func TestGeminiSeqEOF(t *testing.T) {
	s := llmstream.FromGeminiSeq(func(func(*genai.GenerateContentResponse, error) bool) {})
	out, err := collect(t, s)
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, s.Close())
}
