package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/mud-engine/pkg/world"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 512
)

const enhanceSystemPrompt = `You rewrite room descriptions for a text adventure.
Keep every exit, item and character that the original mentions. Do not add new ones.
Reply with the rewritten description only, in two to four sentences.`

// AnthropicEnhancer rewrites room descriptions with Anthropic Claude.
type AnthropicEnhancer struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ world.Enhancer = (*AnthropicEnhancer)(nil)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AnthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
}

type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicChatResponse struct {
	ID         string                  `json:"id"`
	Content    []AnthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicEnhancer(apiKey, modelName string, logger *slog.Logger) *AnthropicEnhancer {
	return &AnthropicEnhancer{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   anthropicBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL points the client at another host, such as a test server.
func (a *AnthropicEnhancer) WithBaseURL(url string) *AnthropicEnhancer {
	a.baseURL = strings.TrimRight(url, "/")
	return a
}

func enhancePrompt(text string, ec world.EnhanceContext) string {
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\nContext:\n")
	fmt.Fprintf(&b, "time_of_day: %s\n", ec.TimeOfDay)
	fmt.Fprintf(&b, "room_type: %s\n", ec.RoomType)
	fmt.Fprintf(&b, "world: %s", ec.WorldName)
	return b.String()
}

// Enhance returns the rewritten text. An empty or echoed reply yields the
// original text.
func (a *AnthropicEnhancer) Enhance(ctx context.Context, text string, ec world.EnhanceContext) (string, error) {
	prompt := enhancePrompt(text, ec)
	out, err := a.complete(ctx, prompt)
	if err != nil {
		a.logger.Debug("enhance failed", "error", err)
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" || out == prompt {
		return text, nil
	}
	return out, nil
}

func (a *AnthropicEnhancer) complete(ctx context.Context, prompt string) (string, error) {
	temperature := DefaultAnthropicTemperature
	reqBody, err := json.Marshal(AnthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: &temperature,
		System:      enhanceSystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var anthropicResp AnthropicChatResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if anthropicResp.Error != nil {
		return "", fmt.Errorf("API error: %s", anthropicResp.Error.Message)
	}

	var out strings.Builder
	for _, c := range anthropicResp.Content {
		if c.Type == "text" {
			out.WriteString(c.Text)
		}
	}
	return out.String(), nil
}
