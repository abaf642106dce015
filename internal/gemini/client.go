// Package gemini is the planner collaborator: one generateContent call per
// request, structured failures, no retry.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reaperbridge/internal/model"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 30 * time.Second
)

type Client struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

func NewClient(apiKey, modelName string) *Client {
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModel
	}
	return &Client{
		APIKey:     strings.TrimSpace(apiKey),
		BaseURL:    defaultBaseURL,
		Model:      modelName,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type generateRequest struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []roleContent    `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type roleContent struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// PlanToolCalls sends the command and context summary to the model and
// returns the decoded raw plan object. Schema enforcement is the caller's
// job; this boundary only guarantees a JSON object or a structured error.
func (c *Client) PlanToolCalls(ctx context.Context, command string, summary model.ContextSummary) (map[string]any, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "command is empty"}
	}
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return nil, model.ErrNotConfigured
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "failed to encode context summary", Cause: err}
	}

	payload := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemPrompt}}},
		Contents: []roleContent{{
			Role: "user",
			Parts: []part{{Text: "User command:\n" + command +
				"\n\nContext summary:\n" + string(summaryJSON) +
				"\n\nReturn only the required JSON object."}},
		}},
		GenerationConfig: generationConfig{Temperature: 0, ResponseMimeType: "application/json"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "failed to encode request", Cause: err}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	reqURL := baseURL + "/v1beta/models/" + url.PathEscape(c.Model) + ":generateContent"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", apiKey)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "request failed", Retryable: true, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "failed to read response", Retryable: true, StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(string(respBody))
		if message == "" {
			message = fmt.Sprintf("gemini returned status %d", resp.StatusCode)
		}
		return nil, mapProviderError(resp.StatusCode, message)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "response was not valid JSON", Cause: err}
	}
	text, err := extractText(parsed)
	if err != nil {
		return nil, err
	}

	var plan map[string]any
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, &model.ProviderError{Code: "GEMINI_FAILED", Message: "model output was not a JSON object", Cause: err}
	}
	return plan, nil
}

// extractText joins candidate text parts and strips a markdown code fence if
// the model wrapped its JSON despite the response mime type.
func extractText(parsed generateResponse) (string, error) {
	if len(parsed.Candidates) == 0 {
		return "", &model.ProviderError{Code: "GEMINI_FAILED", Message: "response had no candidates"}
	}
	var texts []string
	for _, p := range parsed.Candidates[0].Content.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	if len(texts) == 0 {
		return "", &model.ProviderError{Code: "GEMINI_FAILED", Message: "response had no text content"}
	}

	text := strings.TrimSpace(strings.Join(texts, "\n"))
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		text = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	return text, nil
}

func mapProviderError(statusCode int, message string) error {
	pe := &model.ProviderError{
		Code:       "GEMINI_FAILED",
		Message:    message,
		StatusCode: statusCode,
	}
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		pe.Code = "GEMINI_AUTH"
	case statusCode == http.StatusTooManyRequests:
		pe.Code = "GEMINI_RATE_LIMIT"
		pe.Retryable = true
	case statusCode >= http.StatusInternalServerError:
		pe.Retryable = true
	}
	return pe
}
