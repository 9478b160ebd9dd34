package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiKeyMissingMessageConstant       = "completion API key not configured"
	modelMissingMessageConstant        = "completion model not configured"
	emptyResponseMessageConstant       = "completion response contained no content"
	rateLimitErrorTemplateConstant     = "completion rate limiter: %w"
	requestErrorTemplateConstant       = "completion request to %s failed: %w"
	requestStartedLogMessageConstant   = "completion request started"
	responseReceivedLogMessageConstant = "completion response received"
	requestFailedLogMessageConstant    = "completion request failed"
	logFieldModelConstant              = "model"
	logFieldPromptLengthConstant       = "prompt_length"
	logFieldContentLengthConstant      = "content_length"
	logFieldDurationConstant           = "duration"
	secondsPerMinuteConstant           = 60.0
	limiterBurstConstant               = 1
)

// Environment variable names consulted for the completion API key, in order of preference.
const (
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
)

var (
	// ErrAPIKeyMissing indicates the client was constructed without an API key.
	ErrAPIKeyMissing = errors.New(apiKeyMissingMessageConstant)
	// ErrModelMissing indicates the client was constructed without a model identifier.
	ErrModelMissing = errors.New(modelMissingMessageConstant)
	// ErrEmptyResponse indicates the response had no choices or blank content.
	ErrEmptyResponse = errors.New(emptyResponseMessageConstant)
)

// Configuration describes how to reach an OpenAI-compatible chat completion endpoint.
type Configuration struct {
	BaseURL           string
	Model             string
	APIKey            string
	RequestsPerMinute int
	RequestTimeout    time.Duration
}

// Completer produces a completion for a single user prompt.
type Completer interface {
	Complete(executionContext context.Context, prompt string) (string, error)
}

// Client calls a chat completion API with request pacing.
type Client struct {
	api     *openai.Client
	model   string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient validates the configuration and constructs a Client.
func NewClient(configuration Configuration, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(configuration.APIKey)
	if len(apiKey) == 0 {
		return nil, ErrAPIKeyMissing
	}
	model := strings.TrimSpace(configuration.Model)
	if len(model) == 0 {
		return nil, ErrModelMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfiguration := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(configuration.BaseURL); len(baseURL) > 0 {
		clientConfiguration.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if configuration.RequestTimeout > 0 {
		clientConfiguration.HTTPClient = &http.Client{Timeout: configuration.RequestTimeout}
	}

	return &Client{
		api:     openai.NewClientWithConfig(clientConfiguration),
		model:   model,
		limiter: newLimiter(configuration.RequestsPerMinute),
		logger:  logger,
	}, nil
}

// Model reports the configured model identifier.
func (client *Client) Model() string {
	return client.model
}

// Complete sends prompt as a single user message and returns the first choice's content.
func (client *Client) Complete(executionContext context.Context, prompt string) (string, error) {
	if waitError := client.limiter.Wait(executionContext); waitError != nil {
		return "", fmt.Errorf(rateLimitErrorTemplateConstant, waitError)
	}

	startTime := time.Now()
	client.logger.Debug(requestStartedLogMessageConstant,
		zap.String(logFieldModelConstant, client.model),
		zap.Int(logFieldPromptLengthConstant, len(prompt)),
	)

	request := openai.ChatCompletionRequest{
		Model: client.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	response, requestError := client.api.CreateChatCompletion(executionContext, request)
	if requestError != nil {
		client.logger.Warn(requestFailedLogMessageConstant,
			zap.String(logFieldModelConstant, client.model),
			zap.Duration(logFieldDurationConstant, time.Since(startTime)),
			zap.Error(requestError),
		)
		return "", fmt.Errorf(requestErrorTemplateConstant, client.model, requestError)
	}

	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := response.Choices[0].Message.Content
	if len(strings.TrimSpace(content)) == 0 {
		return "", ErrEmptyResponse
	}

	client.logger.Debug(responseReceivedLogMessageConstant,
		zap.String(logFieldModelConstant, client.model),
		zap.Int(logFieldContentLengthConstant, len(content)),
		zap.Duration(logFieldDurationConstant, time.Since(startTime)),
	)
	return content, nil
}

func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, limiterBurstConstant)
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/secondsPerMinuteConstant), limiterBurstConstant)
}
