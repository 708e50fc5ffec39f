package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/zhouzirui/chatdesk/backend/internal/config"
	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

// OpenAIOptions configure the Chat Completions responder.
type OpenAIOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// RequestOptions are appended to the client options.
	RequestOptions []option.RequestOption
}

// OpenAIResponder asks an OpenAI-compatible Chat Completions endpoint for a reply.
type OpenAIResponder struct {
	client    *openai.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

// NewOpenAIResponder creates a responder with its own client.
func NewOpenAIResponder(opts OpenAIOptions) *OpenAIResponder {
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	clientOpts = append(clientOpts, opts.RequestOptions...)
	client := openai.NewClient(clientOpts...)

	model := opts.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	return &OpenAIResponder{client: &client, model: model, maxTokens: int64(opts.MaxTokens), timeout: opts.Timeout}
}

// Reply sends the system prompt and the latest user text.
func (r *OpenAIResponder) Reply(ctx context.Context, text string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	}
	if r.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(r.maxTokens)
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &chat.ResponderError{Provider: config.ProviderOpenAI, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &chat.ResponderError{Provider: config.ProviderOpenAI, Err: fmt.Errorf("no choices in completion %s", resp.ID)}
	}
	return resp.Choices[0].Message.Content, nil
}
