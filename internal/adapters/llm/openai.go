// Package llm provides the OpenAI-compatible chat-completion gateway.
// Clean Architecture: Adapter implementing ports.LLMService.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/0xcro3dile/autorag-go/internal/domain/entities"
)

// OpenAIAdapter implements ports.LLMService against any OpenAI-compatible
// chat-completions endpoint. Synchronous request/response; the response is
// untrusted free text even when the prompt asked for JSON.
type OpenAIAdapter struct {
	client       *openai.Client
	defaultModel string
}

// Config configures the LLM gateway.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

// NewOpenAIAdapter creates a new chat-completion gateway. The client handle is
// stateless and safe to share across requests.
func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIAdapter{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: cfg.DefaultModel,
	}
}

// Complete produces a single response for the prompt. Failures and timeouts
// surface as GatewayError with the timeout kind set; no retries happen here.
func (a *OpenAIAdapter) Complete(ctx context.Context, prompt string, temperature float32, model string) (string, error) {
	if model == "" {
		model = a.defaultModel
	}
	if temperature == 0 {
		// The request encoding drops a zero temperature and the API would then
		// apply its own default. The smallest positive float keeps sampling
		// effectively deterministic while surviving the encoding.
		temperature = math.SmallestNonzeroFloat32
	}

	log.Printf("[DEBUG] Completion request, model %s, temperature %.2f", model, temperature)
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &entities.GatewayError{Op: "complete", Timeout: isTimeout(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &entities.GatewayError{Op: "complete", Err: fmt.Errorf("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
