package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
	"github.com/deepankarm/fieldstream/pkg/fieldstream/schema"
	"github.com/deepankarm/fieldstream/pkg/llmstream"
)

// modelStream is a provider stream that holds a connection open.
type modelStream interface {
	fieldstream.TextStream
	io.Closer
}

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat PROMPT",
		Short: "Ask a model and stream the reply field as it is generated",
		Long: `Chat sends PROMPT to the configured provider with a JSON response format
and streams the reply field to two consumers at once: "speech" on standard
output and "captions" on standard error. Each consumer keeps its own cursor
over the same model output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.chat(cmd, args[0])
		},
	}
}

func (a *app) chat(cmd *cobra.Command, prompt string) error {
	ctx := cmd.Context()

	opts, err := a.streamOptions()
	if err != nil {
		return err
	}
	s, err := a.cfg.StreamSchema()
	if err != nil {
		return err
	}
	responseSchema, err := schema.ForSchema(s)
	if err != nil {
		return err
	}

	src, err := a.openModel(ctx, prompt, s.Field(), responseSchema)
	if err != nil {
		return err
	}
	defer src.Close()

	start := time.Now()
	replay := llmstream.NewReplay(src)
	targets := []fieldstream.Target{
		{Name: "speech", Sink: fieldstream.WriterSink(cmd.OutOrStdout())},
		{Name: "captions", Sink: fieldstream.WriterSink(cmd.ErrOrStderr())},
	}
	err = fieldstream.FanOut(ctx, replay, targets, opts...)

	a.logger.Info("chat finished",
		zap.String("provider", a.cfg.Model.Provider),
		zap.String("model", a.cfg.ModelName()),
		zap.Int("chunks", replay.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

// openModel starts a streamed generation on the configured provider.
func (a *app) openModel(ctx context.Context, prompt, field string, responseSchema map[string]any) (modelStream, error) {
	m := a.cfg.Model
	apiKey := os.Getenv(a.cfg.APIKeyEnv())
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: set %s", a.cfg.APIKeyEnv())
	}
	system := a.cfg.SystemPrompt(field)

	a.logger.Debug("starting generation",
		zap.String("provider", m.Provider),
		zap.String("model", a.cfg.ModelName()),
		zap.String("field", field),
	)

	switch m.Provider {
	case "gemini":
		cc := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
		if m.BaseURL != "" {
			cc.HTTPOptions.BaseURL = m.BaseURL
		}
		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		cfg := llmstream.GeminiConfig(responseSchema)
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
		return llmstream.Gemini(ctx, client, a.cfg.ModelName(), genai.Text(prompt), cfg), nil

	default:
		clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if m.BaseURL != "" {
			clientOpts = append(clientOpts, option.WithBaseURL(m.BaseURL))
		}
		client := openai.NewClient(clientOpts...)
		params := openai.ChatCompletionNewParams{
			Model: openai.ChatModel(a.cfg.ModelName()),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(prompt),
			},
			ResponseFormat: llmstream.OpenAIResponseFormat("reply", responseSchema),
		}
		return llmstream.OpenAI(ctx, client, params), nil
	}
}
