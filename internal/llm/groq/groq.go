// Package groq implements the llm.Provider against the Groq chat-completions
// API, the default backend.
package groq

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
	defaultModel = "llama-3.3-70b-versatile"
	apiURL       = "https://api.groq.com/openai/v1/chat/completions"
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
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + cfg.APIKey,
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

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, payload prompt.Payload) (llm.RawMessage, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": payload.System,
			},
			{
				"role":    "user",
				"content": payload.User,
			},
		},
		"max_tokens":  llm.MaxTokensOutput,
		"temperature": 0.2,
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
		log.Debug().Int("status", resp.StatusCode).Msgf("Groq response: %s", string(body))
	}

	if resp.StatusCode != http.StatusOK {
		return llm.RawMessage{}, llm.ClassifyStatus(resp.StatusCode, string(body))
	}

	var response groqResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return llm.RawMessage{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if response.Error != nil {
		return llm.RawMessage{}, &llm.UpstreamError{Status: resp.StatusCode, Body: response.Error.Message}
	}
	if len(response.Choices) == 0 {
		return llm.RawMessage{}, &llm.UpstreamError{Status: resp.StatusCode, Body: "no choices in response"}
	}

	return llm.RawMessage{Text: response.Choices[0].Message.Content}, nil
}
