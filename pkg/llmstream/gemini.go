package llmstream

import (
	"context"
	"io"
	"iter"

	"google.golang.org/genai"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

var _ fieldstream.TextStream = (*GeminiStream)(nil)

// GeminiStream yields the text of a streamed Gemini generation.
type GeminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

// Gemini starts a streamed generation. The request is bound to ctx.
func Gemini(ctx context.Context, client *genai.Client, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) *GeminiStream {
	return fromGeminiSeq(client.Models.GenerateContentStream(ctx, model, contents, cfg))
}

func fromGeminiSeq(seq iter.Seq2[*genai.GenerateContentResponse, error]) *GeminiStream {
	next, stop := iter.Pull2(seq)
	return &GeminiStream{next: next, stop: stop}
}

// Next implements fieldstream.TextStream. Responses without text are
// skipped.
func (s *GeminiStream) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		resp, err, ok := s.next()
		if !ok {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		var text string
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" && !part.Thought {
				text += part.Text
			}
		}
		if text != "" {
			return text, nil
		}
	}
}

// Close stops the generation.
func (s *GeminiStream) Close() error {
	s.stop()
	return nil
}

// GeminiConfig asks for JSON matching schema.
func GeminiConfig(schema map[string]any) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: schema,
	}
}
