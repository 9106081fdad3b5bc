package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface checks.
var (
	_ Backend = (*OpenAI)(nil)
	_ Prober  = (*OpenAI)(nil)
)

// OllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama server.
const OllamaBaseURL = "http://localhost:11434/v1"

// Settings configures an OpenAI-compatible backend.
type Settings struct {
	// Provider is "openai" or "ollama"; it only affects defaults.
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// Temperature is passed through when non-nil.
	Temperature *float64
	// HTTPClient overrides the SDK's default client.
	HTTPClient *http.Client
}

// OpenAI talks to any server that implements the chat completions API with
// json_schema response formats.
type OpenAI struct {
	client      openai.Client
	model       string
	name        string
	temperature *float64
}

// NewOpenAI builds a backend from s. The SDK's own retries are disabled; retry
// policy belongs to the caller.
func NewOpenAI(s Settings) (*OpenAI, error) {
	if strings.TrimSpace(s.Model) == "" {
		return nil, errors.New("backend: model is required")
	}
	name := s.Provider
	if name == "" {
		name = "openai"
	}
	baseURL := s.BaseURL
	apiKey := s.APIKey
	if name == "ollama" {
		if baseURL == "" {
			baseURL = OllamaBaseURL
		}
		if apiKey == "" {
			// Ollama ignores the key but the SDK always sends one.
			apiKey = "ollama"
		}
	}
	if apiKey == "" {
		return nil, errors.New("backend: api key is required for provider " + name)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(s.HTTPClient))
	}

	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       s.Model,
		name:        name,
		temperature: s.Temperature,
	}, nil
}

// Model returns the configured model name.
func (o *OpenAI) Model() string { return o.model }

// Generate sends req as a strict json_schema chat completion and returns the
// message content.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instructions),
			openai.UserMessage(req.Content),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		},
	}
	if o.temperature != nil {
		params.Temperature = openai.Float(*o.temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", o.classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", &UnavailableError{Backend: o.name, Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

// Probe checks that the server answers and knows the configured model.
func (o *OpenAI) Probe(ctx context.Context) error {
	if _, err := o.client.Models.Get(ctx, o.model); err != nil {
		return o.classify(ctx, err)
	}
	return nil
}

// classify maps SDK and transport errors onto the backend taxonomy. Context
// errors from the caller pass through unchanged.
func (o *OpenAI) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s backend: %w", o.name, ctxErr)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		return &UnavailableError{
			Backend:   o.name,
			Status:    status,
			Retryable: status == http.StatusTooManyRequests || status >= 500,
			Err:       err,
		}
	}
	return &UnavailableError{Backend: o.name, Retryable: true, Err: err}
}
