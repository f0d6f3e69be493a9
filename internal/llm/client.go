// ABOUTME: OpenAI client for intent classification, date extraction, grounded composition, and embeddings
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for chat calls (configurable)
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/welldesk/careline/internal/util"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
	}
}

// Client wraps the OpenAI API with retry logic for the dialogue engine's
// upstream calls. Every method takes a context; a cancelled or timed-out
// context surfaces as an error the caller maps to its own failure outcome.
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewClient creates a new OpenAI-backed client with default configuration
func NewClient(apiKey string) (*Client, error) {
	return NewClientWithConfig(DefaultConfig(apiKey))
}

// NewClientWithConfig creates a new OpenAI-backed client with custom configuration
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		client:         openai.NewClient(config.APIKey),
		chatModel:      config.ChatModel,
		embeddingModel: config.EmbeddingModel,
		timeout:        config.Timeout,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
	}, nil
}

// ClassifyIntent returns the raw one-word intent classification for an utterance
func (c *Client) ClassifyIntent(ctx context.Context, utterance string) (string, error) {
	content, err := c.chat(ctx, classifyIntentSystemPrompt,
		fmt.Sprintf(classifyIntentPrompt, utterance), 0.0)
	if err != nil {
		return "", err
	}
	word := strings.ToLower(strings.TrimSpace(content))
	if fields := strings.Fields(word); len(fields) > 0 {
		word = fields[0]
	}
	return strings.Trim(word, ".,!\"'"), nil
}

// ExtractDateTime extracts an ISO date and HH:MM time from free text,
// resolving relative references against now. Either value may be empty.
func (c *Client) ExtractDateTime(ctx context.Context, text string, now time.Time) (string, string, error) {
	content, err := c.chat(ctx, extractDateTimeSystemPrompt,
		fmt.Sprintf(extractDateTimePrompt, now.Format("2006-01-02 15:04"), text), 0.0)
	if err != nil {
		return "", "", err
	}

	// The model is asked for bare JSON but occasionally fences it
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed struct {
		Date *string `json:"date"`
		Time *string `json:"time"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", "", fmt.Errorf("failed to parse datetime response: %w", err)
	}

	date, clock := "", ""
	if parsed.Date != nil && !strings.EqualFold(*parsed.Date, "null") {
		date = *parsed.Date
	}
	if parsed.Time != nil && !strings.EqualFold(*parsed.Time, "null") {
		clock = *parsed.Time
	}
	return date, clock, nil
}

// ComposeTriageAnswer composes a triage response grounded in the given reference text
func (c *Client) ComposeTriageAnswer(ctx context.Context, symptoms, duration, severity, reference string) (string, error) {
	return c.chat(ctx, composeSystemPrompt,
		fmt.Sprintf(triageComposePrompt, symptoms, duration, severity, reference), 0.3)
}

// ComposeHomeCareAdvice composes home-care guidance grounded in the given reference text
func (c *Client) ComposeHomeCareAdvice(ctx context.Context, symptoms, reference string) (string, error) {
	return c.chat(ctx, composeSystemPrompt,
		fmt.Sprintf(homeCareComposePrompt, symptoms, reference), 0.3)
}

// GenerateEmbedding generates a fixed-length embedding vector for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepOrDone(ctx, util.CalculateBackoff(c.retryDelay, attempt)); err != nil {
				return nil, err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}
		return embedding64, nil
	}

	return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", c.maxRetries+1, lastErr)
}

// chat runs one chat completion with retries and returns the raw content
func (c *Client) chat(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepOrDone(ctx, util.CalculateBackoff(c.retryDelay, attempt)); err != nil {
				return "", err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: temperature,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("chat completion failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// sleepOrDone waits for the backoff delay unless the context ends first
func sleepOrDone(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
