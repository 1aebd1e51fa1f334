package llmstream

import (
	"context"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

var _ fieldstream.TextStream = (*OpenAIStream)(nil)

// OpenAIStream yields the content deltas of a streamed chat completion.
type OpenAIStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

// OpenAI starts a streamed chat completion. The request is bound to ctx;
// later Next calls only observe it.
func OpenAI(ctx context.Context, client openai.Client, params openai.ChatCompletionNewParams) *OpenAIStream {
	return &OpenAIStream{stream: client.Chat.Completions.NewStreaming(ctx, params)}
}

// Next implements fieldstream.TextStream. Chunks without content, such as
// the role announcement and usage trailer, are skipped.
func (s *OpenAIStream) Next(ctx context.Context) (string, error) {
	for s.stream.Next() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			return text, nil
		}
	}
	if err := s.stream.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the underlying HTTP response.
func (s *OpenAIStream) Close() error {
	return s.stream.Close()
}

// OpenAIResponseFormat asks for strict JSON matching schema.
//
// Example:
//
//	params.ResponseFormat = llmstream.OpenAIResponseFormat("reply", schema.ForField("response"))
func OpenAIResponseFormat(name string, schema map[string]any) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: schema,
				Strict: openai.Bool(true),
			},
		},
	}
}
