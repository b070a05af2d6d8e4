package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoToken means the inference API token is unconfigured. Callers treat it
// like any other failure and fall back to the deterministic engine.
var ErrNoToken = errors.New("inference token not configured")

const DefaultAPIBase = "https://api-inference.huggingface.co"

// Client calls a hosted text-generation endpoint.
type Client struct {
	Token   string
	Model   string
	APIBase string
	HTTP    *http.Client
}

func New(token, model, apiBase string, timeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		Token:   token,
		Model:   model,
		APIBase: apiBase,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

// Generate sends a prompt and returns the generated text. The API answers
// either with a list of {"generated_text": ...} objects or a single object;
// both shapes are accepted.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.Token == "" {
		return "", ErrNoToken
	}

	body, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens:   maxTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s", c.APIBase, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference API error %d: %s", resp.StatusCode, string(raw))
	}

	// list shape: [{"generated_text": "..."}]
	var list []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 && list[0].GeneratedText != "" {
		return list[0].GeneratedText, nil
	}

	// object shape: {"generated_text": "..."}
	var obj struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.GeneratedText != "" {
		return obj.GeneratedText, nil
	}

	return "", fmt.Errorf("unexpected inference response: %s", string(raw))
}
