package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/0vg/GoodGit/internal/config"
	"github.com/0vg/GoodGit/internal/llm"
	"github.com/0vg/GoodGit/internal/llm/common"
	"github.com/0vg/GoodGit/internal/prompt"
)

const (
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-3-5-haiku-latest"
	apiURL           = "https://api.anthropic.com/v1/messages"
)

type Client struct {
	apiKey string
	model  string
	url    string
	client *http.Client
	config common.ClientConfig
}

func New(cfg config.Config) *Client {
	clientConfig := common.DefaultConfig()
	clientConfig.Timeout = cfg.Timeout
	clientConfig.Headers = map[string]string{
		"Content-Type":      "application/json",
		"x-api-key":         cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	url := cfg.Endpoint
	if url == "" {
		url = apiURL
	}

	return &Client{
		apiKey: cfg.APIKey,
		model:  model,
		url:    url,
		client: common.NewHTTPClient(clientConfig),
		config: clientConfig,
	}
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
	Type string `json:"type"`
}

func (c *Client) Generate(ctx context.Context, payload prompt.Payload) (llm.RawMessage, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model":      c.model,
		"max_tokens": llm.MaxTokensOutput,
		"system":     payload.System,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": payload.User,
			},
		},
	})
	if err != nil {
		return llm.RawMessage{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := common.NewRequest(ctx, http.MethodPost, c.url, requestBody, c.config)
	if err != nil {
		return llm.RawMessage{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return llm.RawMessage{}, &llm.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.RawMessage{}, &llm.TransportError{Err: err}
	}

	if config.IsDebug() {
		log.Debug().Int("status", resp.StatusCode).Msgf("Anthropic response: %s", string(body))
	}

	if resp.StatusCode != http.StatusOK {
		return llm.RawMessage{}, llm.ClassifyStatus(resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return llm.RawMessage{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// The API reports in-band errors with type "error" even on 200.
	if response.Type == "error" && response.Error != nil {
		return llm.RawMessage{}, &llm.UpstreamError{Status: resp.StatusCode, Body: response.Error.Type + " - " + response.Error.Message}
	}
	if len(response.Content) == 0 {
		return llm.RawMessage{}, &llm.UpstreamError{Status: resp.StatusCode, Body: "no content in response"}
	}

	return llm.RawMessage{Text: response.Content[0].Text}, nil
}
