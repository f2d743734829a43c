// Package model wraps the OpenAI chat completion API behind a small
// client that returns task.Output envelopes.
package model

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/easel-ai/easel/shared"
	"github.com/easel-ai/easel/task"
	"github.com/easel-ai/easel/terminal"
)

const apiKeyEnv = "OPENAI_API_KEY"

const defaultModel = openai.ChatModelGPT4o

type Client struct {
	api          openai.Client
	defaultModel string
	retry        RetryConfig
}

type clientOptions struct {
	apiKey  string
	baseURL string
	model   string
	retry   RetryConfig
}

type ClientOption func(*clientOptions)

// WithAPIKey overrides the key otherwise read from OPENAI_API_KEY.
func WithAPIKey(key string) ClientOption {
	return func(o *clientOptions) {
		o.apiKey = key
	}
}

func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		o.model = model
	}
}

func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(o *clientOptions) {
		o.retry = cfg
	}
}

func NewClient(opts ...ClientOption) (*Client, error) {
	options := clientOptions{
		apiKey: os.Getenv(apiKeyEnv),
		model:  defaultModel,
		retry:  DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.apiKey == "" {
		return nil, shared.Errorf(shared.ErrorSourceUser, "openai API key is required: set %s", apiKeyEnv)
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(options.apiKey),
		// The SDK's own retry layer is disabled; completeWithRetry decides.
		option.WithMaxRetries(0),
	}
	if options.baseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(options.baseURL))
	}

	return &Client{
		api:          openai.NewClient(requestOptions...),
		defaultModel: options.model,
		retry:        options.retry,
	}, nil
}

// CompletionRequest describes one unit of agent work sent to the model.
// Description and Agent are carried through into the output envelope.
type CompletionRequest struct {
	Description string
	Agent       string
	Model       string
	System      string
	Prompt      string
}

type completeOptions struct {
	schemaName string
	schema     *jsonschema.Schema
}

type CompleteOption func(*completeOptions)

// WithResponseSchema requests structured output conforming to the JSON
// schema reflected from v. The completion is then parsed (after fence
// stripping) and returned as a FormatJSON envelope.
func WithResponseSchema(name string, v any) CompleteOption {
	return func(o *completeOptions) {
		reflector := jsonschema.Reflector{
			DoNotReference:            true,
			AllowAdditionalProperties: false,
		}
		o.schemaName = name
		o.schema = reflector.Reflect(v)
	}
}

// Complete performs one chat completion and wraps the result into a task
// output envelope. Retryable provider failures (rate limits, overload,
// timeouts) are retried per the client's RetryConfig.
func (c *Client) Complete(ctx context.Context, req CompletionRequest, opts ...CompleteOption) (*task.Output, error) {
	var options completeOptions
	for _, opt := range opts {
		opt(&options)
	}

	if req.Prompt == "" {
		return nil, shared.Errorf(shared.ErrorSourceAgent, "prompt is required")
	}

	modelName := req.Model
	if modelName == "" {
		modelName = c.defaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelName),
		Messages: messages,
	}

	if options.schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   options.schemaName,
					Schema: options.schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	completion, err := c.completeWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(completion.Choices) == 0 {
		return nil, shared.Errorf(shared.ErrorSourceModel, "model returned no choices")
	}

	raw := completion.Choices[0].Message.Content

	output := &task.Output{
		Description: req.Description,
		Raw:         raw,
		Agent:       req.Agent,
		Format:      task.FormatRaw,
	}

	if options.schema == nil {
		return output, nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(terminal.StripFences(raw)), &payload); err != nil {
		return nil, shared.Wrap(shared.ErrorSourceModel, err, "structured response is not valid JSON")
	}

	output.JSONDict = payload
	output.Format = task.FormatJSON

	return output, nil
}

func (c *Client) completeWithRetry(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	attempts := c.retry.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	var lastErr *ProviderError
	for attempt := uint(1); attempt <= attempts; attempt++ {
		completion, err := c.api.Chat.Completions.New(ctx, params)
		if err == nil {
			return completion, nil
		}

		lastErr = classifyError(err)
		if !lastErr.Retryable() || attempt == attempts {
			break
		}

		delay := c.retry.nextDelay(attempt, lastErr.RetryAfter)
		slog.Debug("retrying model call", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return nil, classifyError(ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}
