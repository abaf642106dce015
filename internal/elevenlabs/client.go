// Package elevenlabs is the speech collaborator: speech-to-text for spoken
// commands and text-to-speech for spoken confirmations.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"reaperbridge/internal/model"
)

const (
	defaultBaseURL  = "https://api.elevenlabs.io"
	defaultTimeout  = 30 * time.Second
	defaultSTTModel = "scribe_v1"
)

type Client struct {
	APIKey          string
	BaseURL         string
	HTTPClient      *http.Client
	VoiceID         string
	TranscribeModel string
}

func NewClient(apiKey, voiceID string) *Client {
	return &Client{
		APIKey:          strings.TrimSpace(apiKey),
		BaseURL:         defaultBaseURL,
		HTTPClient:      &http.Client{Timeout: defaultTimeout},
		VoiceID:         strings.TrimSpace(voiceID),
		TranscribeModel: defaultSTTModel,
	}
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

type transcribeResponse struct {
	Text       string `json:"text"`
	Transcript string `json:"transcript"`
	Segments   []struct {
		Text string `json:"text"`
	} `json:"segments"`
}

type voicesResponse struct {
	Voices []struct {
		VoiceID string `json:"voice_id"`
		ID      string `json:"id"`
	} `json:"voices"`
}

// Transcribe uploads recorded audio and returns the spoken text as a single
// flat string suitable for the command pipeline.
func (c *Client) Transcribe(ctx context.Context, relPath string, data []byte) (string, error) {
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return "", &model.ProviderError{Code: "ELEVENLABS_AUTH", Message: "missing ElevenLabs API key"}
	}
	if len(data) == 0 {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "transcription input is empty"}
	}

	fileName := strings.TrimSpace(filepath.Base(relPath))
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		fileName = "audio.wav"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to build STT request body", Cause: err}
	}
	if _, err := part.Write(data); err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to write STT input", Cause: err}
	}
	modelName := strings.TrimSpace(c.TranscribeModel)
	if modelName == "" {
		modelName = defaultSTTModel
	}
	if err := writer.WriteField("model_id", modelName); err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to set STT model", Cause: err}
	}
	if err := writer.Close(); err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to finalize STT request body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/v1/speech-to-text", bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to build STT request", Cause: err}
	}
	req.Header.Set("xi-api-key", apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "stt request failed", Retryable: true, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to read STT response", Retryable: true, StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(string(respBody))
		if message == "" {
			message = fmt.Sprintf("elevenlabs stt returned status %d", resp.StatusCode)
		}
		return "", mapProviderError(resp.StatusCode, message)
	}

	var parsed transcribeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to decode STT response", Cause: err}
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		text = strings.TrimSpace(parsed.Transcript)
	}
	if text == "" && len(parsed.Segments) > 0 {
		parts := make([]string, 0, len(parsed.Segments))
		for _, segment := range parsed.Segments {
			if s := strings.TrimSpace(segment.Text); s != "" {
				parts = append(parts, s)
			}
		}
		text = strings.Join(parts, " ")
	}
	if text == "" {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "stt response had no text content"}
	}
	return text, nil
}

// Synthesize renders text with the configured voice, discovering a default
// voice from the account when none is configured.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return c.SynthesizeWithVoice(ctx, text, c.VoiceID)
}

func (c *Client) SynthesizeWithVoice(ctx context.Context, text, voiceID string) ([]byte, error) {
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return nil, &model.ProviderError{Code: "ELEVENLABS_AUTH", Message: "missing ElevenLabs API key"}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "text is required"}
	}

	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" {
		discovered, err := c.DiscoverDefaultVoice(ctx)
		if err != nil {
			return nil, err
		}
		voiceID = discovered
	}

	payload, err := json.Marshal(synthesizeRequest{Text: text})
	if err != nil {
		return nil, &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to marshal TTS request", Cause: err}
	}

	reqURL := c.baseURL() + "/v1/text-to-speech/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to build TTS request", Cause: err}
	}
	req.Header.Set("xi-api-key", apiKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "tts request failed", Retryable: true, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to read TTS response", Retryable: true, StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return respBody, nil
	}

	message := strings.TrimSpace(string(respBody))
	if message == "" {
		message = fmt.Sprintf("elevenlabs tts returned status %d", resp.StatusCode)
	}
	return nil, mapProviderError(resp.StatusCode, message)
}

// DiscoverDefaultVoice returns the first voice on the account.
func (c *Client) DiscoverDefaultVoice(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/v1/voices", nil)
	if err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to build voices request", Cause: err}
	}
	req.Header.Set("xi-api-key", strings.TrimSpace(c.APIKey))

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "voices request failed", Retryable: true, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to read voices response", Retryable: true, StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", mapProviderError(resp.StatusCode, fmt.Sprintf("elevenlabs voices returned status %d", resp.StatusCode))
	}

	var parsed voicesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "failed to decode voices response", Cause: err}
	}
	for _, voice := range parsed.Voices {
		id := strings.TrimSpace(voice.VoiceID)
		if id == "" {
			id = strings.TrimSpace(voice.ID)
		}
		if id != "" {
			return id, nil
		}
	}
	return "", &model.ProviderError{Code: "ELEVENLABS_FAILED", Message: "no voice configured and none discoverable on the account"}
}

func (c *Client) baseURL() string {
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return baseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func mapProviderError(statusCode int, message string) error {
	pe := &model.ProviderError{
		Code:       "ELEVENLABS_FAILED",
		Message:    message,
		StatusCode: statusCode,
	}
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		pe.Code = "ELEVENLABS_AUTH"
	case statusCode == http.StatusTooManyRequests:
		pe.Code = "ELEVENLABS_RATE_LIMIT"
		pe.Retryable = true
	case statusCode >= http.StatusInternalServerError:
		pe.Retryable = true
	}
	return pe
}
