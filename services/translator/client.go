package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"slotwise/models"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemini-2.0-flash"
)

// GeminiClient calls the Gemini generateContent API to translate free text
// into structured JSON.
type GeminiClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// NewGeminiClient creates a translator client. An empty apiKey produces a
// client that reports the translator as unavailable on every call.
func NewGeminiClient(apiKey string, httpc *http.Client) *GeminiClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &GeminiClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: geminiBaseURL,
		httpc:   httpc,
	}
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// errTransient marks failures worth retrying: rate limits, 5xx responses
// and transport errors.
var errTransient = errors.New("transient translator failure")

// Translate sends the instructions plus user text and returns the raw reply
// text. Transient failures are retried with backoff; anything else fails
// immediately.
func (c *GeminiClient) Translate(ctx context.Context, instructions, userText string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: api key not configured", models.ErrTranslatorUnavailable)
	}

	reqBody := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: instructions}}},
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: userText}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0,
			MaxOutputTokens:  2048,
			ResponseMIMEType: "application/json",
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal translator request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, geminiModel, c.apiKey)

	var text string
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
			if err != nil {
				return fmt.Errorf("create translator request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", errTransient, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				io.Copy(io.Discard, resp.Body)
				return fmt.Errorf("%w: status %d", errTransient, resp.StatusCode)
			}
			if resp.StatusCode >= 400 {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("translator error %d: %s", resp.StatusCode, string(body))
			}

			var gr geminiResponse
			if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
				return fmt.Errorf("decode translator response: %w", err)
			}
			if gr.Error != nil {
				return fmt.Errorf("translator error: %s", gr.Error.Message)
			}
			if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
				return errors.New("translator returned empty response")
			}

			text = gr.Candidates[0].Content.Parts[0].Text
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errTransient) }),
	)
	if err != nil {
		// Exhausted retries on transient failures mean the translator
		// is effectively unreachable.
		if errors.Is(err, errTransient) {
			return "", fmt.Errorf("%w: %v", models.ErrTranslatorUnavailable, err)
		}
		return "", err
	}
	return text, nil
}
