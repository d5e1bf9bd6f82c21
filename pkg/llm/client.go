package llm

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"mojibot/pkg/memory"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// thinkRegex matches <think>...</think> content, including newlines.
// (?s) enables the dot (.) to match new lines.
var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ModelConfig defines the ID and token limits for the prioritized list.
type ModelConfig struct {
	ID       string
	MaxToken int
}

var DefaultModels = []ModelConfig{
	{ID: "gpt-4o-mini", MaxToken: 2000},
	{ID: "gpt-4o", MaxToken: 2000},
	{ID: "gpt-3.5-turbo", MaxToken: 2000},
}

// KeyState tracks the health of an API key
type KeyState struct {
	Key          string
	FailureCount int
	LastUsed     time.Time
	LastSuccess  time.Time
}

type Client struct {
	keys        []*KeyState
	keyMu       sync.RWMutex
	clients     map[string]openai.Client
	clientsMu   sync.RWMutex
	baseURL     string
	temperature float64
	topP        float64
	models      []ModelConfig
}

// NewClient creates a client with support for multiple API keys
// (comma-separated). Keys are rotated based on failure count (least failures
// first). baseURL may be empty for the default OpenAI endpoint.
func NewClient(apiKeys, baseURL string, temperature, topP float64, models []ModelConfig) *Client {
	if len(models) == 0 {
		models = DefaultModels
	}

	keyStrings := strings.Split(apiKeys, ",")
	keys := make([]*KeyState, 0, len(keyStrings))
	for _, k := range keyStrings {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, &KeyState{
				Key:          k,
				FailureCount: 0,
			})
		}
	}

	if len(keys) == 0 {
		log.Println("Warning: No API keys provided")
	} else {
		log.Printf("Loaded %d chat API key(s)", len(keys))
	}

	return &Client{
		keys:        keys,
		clients:     make(map[string]openai.Client),
		baseURL:     baseURL,
		temperature: temperature,
		topP:        topP,
		models:      models,
	}
}

func (c *Client) getClient(key string) openai.Client {
	c.clientsMu.RLock()
	if client, ok := c.clients[key]; ok {
		c.clientsMu.RUnlock()
		return client
	}
	c.clientsMu.RUnlock()

	c.clientsMu.Lock()
	defer c.clientsMu.Unlock()

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	client := openai.NewClient(opts...)
	c.clients[key] = client
	return client
}

// getBestKey returns the API key with the least failures
func (c *Client) getBestKey() *KeyState {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()

	if len(c.keys) == 0 {
		return nil
	}

	best := c.keys[0]
	for _, k := range c.keys[1:] {
		if k.FailureCount < best.FailureCount {
			best = k
		}
	}
	return best
}

func (c *Client) recordSuccess(key *KeyState) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	key.LastSuccess = time.Now()
	key.LastUsed = time.Now()
	// Reduce failure count on success (gradual recovery)
	if key.FailureCount > 0 {
		key.FailureCount--
	}
}

func (c *Client) recordFailure(key *KeyState) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	key.FailureCount++
	key.LastUsed = time.Now()
}

// ChatCompletion relays messages to the first model in the prioritized list
// that answers, rotating to the next-best key on rate-limit or auth errors.
func (c *Client) ChatCompletion(messages []memory.LLMMessage) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	keyState := c.getBestKey()
	if keyState == nil {
		return "", fmt.Errorf("no API keys configured")
	}

	chatMessages := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			chatMessages[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			chatMessages[i] = openai.AssistantMessage(msg.Content)
		default:
			chatMessages[i] = openai.UserMessage(msg.Content)
		}
	}

	var lastErr error

	for _, modelConf := range c.models {
		log.Printf("Attempting model: %s (key failures: %d)", modelConf.ID, keyState.FailureCount)

		client := c.getClient(keyState.Key)

		params := openai.ChatCompletionNewParams{
			Model:       shared.ChatModel(modelConf.ID),
			Messages:    chatMessages,
			Temperature: openai.Float(c.temperature),
			TopP:        openai.Float(c.topP),
			MaxTokens:   openai.Int(int64(modelConf.MaxToken)),
		}

		start := time.Now()
		resp, err := client.Chat.Completions.New(ctx, params)
		if err != nil {
			log.Printf("Model %s error: %v", modelConf.ID, err)
			lastErr = err

			if isRateLimitOrAuthError(err) {
				c.recordFailure(keyState)
				nextKey := c.getBestKey()
				if nextKey != nil && nextKey != keyState {
					log.Printf("Key rate limited/auth failed, trying another key...")
					keyState = nextKey
					client = c.getClient(keyState.Key)
					resp, err = client.Chat.Completions.New(ctx, params)
				}
			}
			if err != nil {
				continue
			}
		}

		if resp == nil || len(resp.Choices) == 0 {
			log.Printf("Model %s returned empty response", modelConf.ID)
			lastErr = fmt.Errorf("empty response from model %s", modelConf.ID)
			continue
		}

		c.recordSuccess(keyState)
		log.Printf("Model %s success (took %v, input_tokens=%d, output_tokens=%d)",
			modelConf.ID, time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

		return cleanResponse(resp.Choices[0].Message.Content), nil
	}

	c.recordFailure(keyState)
	return "", fmt.Errorf("all models exhausted. Last error: %w", lastErr)
}

// cleanResponse strips <think> blocks and surrounding quotes.
func cleanResponse(content string) string {
	content = thinkRegex.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)

	if len(content) >= 2 && strings.HasPrefix(content, "\"") && strings.HasSuffix(content, "\"") {
		content = content[1 : len(content)-1]
		content = strings.TrimSpace(content)
	}
	return content
}

func isRateLimitOrAuthError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "unauthorized")
}
