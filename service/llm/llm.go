// Package llm wraps the completion provider behind a small interface so the
// dispatcher and the HTTP chat handler never import the provider SDK.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sonic-agent/sonicbot/service/metrics"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completer produces assistant replies for a message list. The system prompt
// is owned by the implementation; caller-provided system messages are
// stripped before the prompt is prepended.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	// StreamComplete invokes onChunk for each token chunk as it arrives and
	// returns the full assembled reply.
	StreamComplete(ctx context.Context, messages []Message, onChunk func(chunk string) error) (string, error)
}

// systemPrompt is prepended to every completion request.
const systemPrompt = `You are a helpful assistant for the Sonic ecosystem, a Solana-compatible chain. ` +
	`You can discuss wallets, token prices, liquidity pools, and the SONIC token. ` +
	`Keep answers short and factual. If asked to perform a wallet action you cannot do in conversation, ` +
	`point the user at the /balance, /price, /send, and /faucet commands instead of guessing.`

const defaultModel = openai.GPT4oMini

// OpenAIClient implements Completer against the OpenAI-compatible chat API.
type OpenAIClient struct {
	api     *openai.Client
	model   string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewOpenAIClient(apiKey, model string, m *metrics.Metrics, logger *slog.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("completion provider API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClient{
		api:     openai.NewClient(apiKey),
		model:   model,
		logger:  logger,
		metrics: m,
	}, nil
}

// prepareMessages drops caller-supplied system messages and prepends the
// service's own system prompt.
func prepareMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: prepareMessages(messages),
	})
	duration := time.Since(start)
	if err != nil {
		c.metrics.RecordCompletion("complete", "error", duration.Seconds())
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.metrics.RecordCompletion("complete", "empty", duration.Seconds())
		return "", errors.New("completion provider returned no choices")
	}

	c.metrics.RecordCompletion("complete", "success", duration.Seconds())
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) StreamComplete(ctx context.Context, messages []Message, onChunk func(chunk string) error) (string, error) {
	start := time.Now()
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: prepareMessages(messages),
		Stream:   true,
	})
	if err != nil {
		c.metrics.RecordCompletion("stream", "error", time.Since(start).Seconds())
		return "", fmt.Errorf("completion stream failed: %w", err)
	}
	defer stream.Close()

	var full string
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.metrics.RecordCompletion("stream", "error", time.Since(start).Seconds())
			// A partial reply is still useful to the caller's transcript.
			return full, fmt.Errorf("completion stream interrupted: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		chunk := resp.Choices[0].Delta.Content
		if chunk == "" {
			continue
		}
		full += chunk
		if onChunk != nil {
			if err := onChunk(chunk); err != nil {
				c.metrics.RecordCompletion("stream", "aborted", time.Since(start).Seconds())
				return full, fmt.Errorf("stream consumer failed: %w", err)
			}
		}
	}

	c.metrics.RecordCompletion("stream", "success", time.Since(start).Seconds())
	return full, nil
}
