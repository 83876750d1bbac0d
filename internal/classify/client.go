// Package classify labels catalog products with a category and
// sub-category by asking an external chat-completion model about each
// title, then recovering structured JSON from its loosely formatted
// replies.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/config"
	"github.com/eco-catalog/backend/internal/domain"
)

// Client calls the classification API. It speaks the OpenAI-compatible
// chat-completion protocol directly over net/http.
type Client struct {
	httpClient *http.Client
	cfg        config.ClassifierConfig
	logger     *zap.Logger
}

// NewClient creates a classification client. A missing API key is a
// fatal configuration error for this component only; the scrape side
// of the pipeline runs fine without it.
func NewClient(cfg config.ClassifierConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatResponse is the minimal slice of the reply envelope we need.
// Some providers put the reply under message.content, others under a
// bare text field.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// Classify asks the model for a category/sub-category label for one
// product title. A reply that cannot be recovered as JSON returns
// domain.ErrParseFailure with the raw text kept for audit.
func (c *Client) Classify(ctx context.Context, title string) (domain.Classification, error) {
	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    buildMessages(title),
		Temperature: 0,
		TopP:        1,
		MaxTokens:   c.cfg.MaxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("failed to read classification response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Classification{}, fmt.Errorf("classification API returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return domain.Classification{}, fmt.Errorf("failed to parse classification envelope: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return domain.Classification{}, domain.ErrEmptyReply
	}

	content := chatResp.Choices[0].Message.Content
	if content == "" {
		content = chatResp.Choices[0].Text
	}
	if content == "" {
		return domain.Classification{}, domain.ErrEmptyReply
	}

	label, ok := recoverLabel(content)
	if !ok {
		c.logger.Warn("Could not recover JSON from model reply",
			zap.String("title", title),
			zap.String("reply", content),
		)
		return domain.Classification{Raw: content}, domain.ErrParseFailure
	}

	return domain.Classification{
		Category:    strings.ToLower(strings.TrimSpace(label.Category)),
		SubCategory: strings.ToLower(strings.TrimSpace(label.SubCategory)),
		Raw:         content,
	}, nil
}

// buildMessages assembles the fixed few-shot prompt: a system
// instruction plus worked examples mapping a title to its label, then
// the target title.
func buildMessages(title string) []chatMessage {
	const system = "You receive a single product title. Predict the best single 'category' " +
		"and 'subcategory' for that title. Output ONLY valid JSON with exactly two keys: " +
		"'category' and 'subcategory'. Use lowercase single words or short phrases. " +
		"Do NOT add any extra text or formatting."

	return []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "title: 'Natural Clean Bamboo Toothbrush - with Charcoal Bristles'"},
		{Role: "assistant", Content: `{"category": "personal care", "subcategory": "toothbrush"}`},
		{Role: "user", Content: "title: 'Ecotyl Cold Pressed Almond Oil - Sweet'"},
		{Role: "assistant", Content: `{"category": "personal care", "subcategory": "haircare"}`},
		{Role: "user", Content: "title: 'Green Leaf Wrap Envelop(5 x 8) inches(PACK OF 12)'"},
		{Role: "assistant", Content: `{"category": "stationary", "subcategory": "envelope"}`},
		{Role: "user", Content: fmt.Sprintf("title: '%s'", title)},
	}
}
