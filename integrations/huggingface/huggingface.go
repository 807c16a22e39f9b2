// Package huggingface is the model gateway: it issues chat-completion
// requests against an OpenAI-compatible endpoint (the Hugging Face router by
// default), classifies failures, and post-processes successful text.
package huggingface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	coreconfig "github.com/enfoca-app/assist-api/core/config"
	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
)

// stopSequences keeps small models from rambling into a fake dialogue.
var stopSequences = []string{"\n\n\n", "###", "Usuario:", "User:", "CONSULTA:", "RESPUESTA:"}

type Gateway struct {
	client    openai.Client
	model     string
	timeout   time.Duration
	maxTokens int64
	maxChars  int
}

func NewGateway(cfg coreconfig.ModelConfig) *Gateway {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 350
	}
	maxChars := cfg.MaxResponseChars
	if maxChars <= 0 {
		maxChars = 600
	}

	return &Gateway{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		timeout:   timeout,
		maxTokens: maxTokens,
		maxChars:  maxChars,
	}
}

// Complete sends the prompt upstream. The call is bounded by the configured
// deadline and never holds any pipeline lock.
func (g *Gateway) Complete(ctx context.Context, prompt domainAssistant.Prompt) (domainAssistant.Completion, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(g.model),
		Messages:         messages,
		MaxTokens:        openai.Int(g.maxTokens),
		Temperature:      openai.Float(0.7),
		TopP:             openai.Float(0.9),
		FrequencyPenalty: openai.Float(0.3),
		PresencePenalty:  openai.Float(0.2),
		Stop: openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: stopSequences,
		},
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(cctx, params)
	elapsed := time.Since(start)

	if err != nil {
		return domainAssistant.Completion{}, classify(err)
	}

	if len(resp.Choices) == 0 {
		return domainAssistant.Completion{}, domainAssistant.ErrEmptyResponse
	}

	text := Clean(resp.Choices[0].Message.Content, g.maxChars)
	if text == "" {
		return domainAssistant.Completion{}, domainAssistant.ErrEmptyResponse
	}

	logrus.Debugf("[MODEL] Completion in %dms (%d tokens)", elapsed.Milliseconds(), resp.Usage.TotalTokens)

	return domainAssistant.Completion{
		Text:           text,
		TokensUsed:     resp.Usage.TotalTokens,
		ResponseTimeMs: elapsed.Milliseconds(),
	}, nil
}

// classify maps transport and API errors onto the domain taxonomy. The
// orchestrator treats everything except ErrAuth identically.
func classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 401, 403:
			return fmt.Errorf("%w: status %d", domainAssistant.ErrAuth, apierr.StatusCode)
		case 429:
			return fmt.Errorf("%w: status 429", domainAssistant.ErrUpstreamRateLimited)
		case 503:
			return fmt.Errorf("%w: status 503", domainAssistant.ErrColdStart)
		}
		return fmt.Errorf("%w: status %d", domainAssistant.ErrTransientNetwork, apierr.StatusCode)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domainAssistant.ErrTimeout, err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", domainAssistant.ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", domainAssistant.ErrTransientNetwork, err)
}
