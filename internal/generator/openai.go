package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lunargale/voidtable/internal/platform/timeouts"
)

// OpenAIConfig configures the OpenAI-compatible responses endpoint adapter.
type OpenAIConfig struct {
	// ResponsesURL is the completion endpoint. Defaults to the public OpenAI
	// responses API.
	ResponsesURL string
	// APIKey is sent as a bearer token, never echoed in errors.
	APIKey string
	// Model names the upstream model.
	Model string
	// HTTPClient allows injection for tests. Defaults to a client bound by
	// timeouts.GeneratorCall.
	HTTPClient *http.Client
}

type openAI struct {
	cfg OpenAIConfig
}

// NewOpenAI builds a Generator speaking the OpenAI responses wire format.
// Failures are classified: 429 → rate_limited, 5xx → overloaded, 401/403 →
// auth, other 4xx → rejected, undecodable bodies → malformed.
func NewOpenAI(cfg OpenAIConfig) (Generator, error) {
	if strings.TrimSpace(cfg.ResponsesURL) == "" {
		cfg.ResponsesURL = "https://api.openai.com/v1/responses"
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: timeouts.GeneratorCall}
	}
	return &openAI{cfg: cfg}, nil
}

func (g *openAI) Generate(ctx context.Context, req Request) (Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return Result{}, newError(ClassRejected, "prompt is required", nil)
	}

	body := map[string]any{
		"model": g.cfg.Model,
		"input": prompt,
	}
	if req.MaxTokens > 0 {
		body["max_output_tokens"] = req.MaxTokens
	}
	requestBody, err := json.Marshal(body)
	if err != nil {
		return Result{}, newError(ClassRejected, "marshal generate request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.ResponsesURL, bytes.NewReader(requestBody))
	if err != nil {
		return Result{}, newError(ClassRejected, "build generate request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Credential material goes only into the Authorization header and is
	// never copied into error messages.
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	res, err := g.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, newError(ClassOverloaded, "generate request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Result{}, classifyStatus(res.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Result{}, newError(ClassMalformed, "decode generate response", err)
	}

	outputText := strings.TrimSpace(payload.OutputText)
	if outputText == "" {
		for _, item := range payload.Output {
			for _, content := range item.Content {
				if strings.TrimSpace(content.Text) != "" {
					outputText = strings.TrimSpace(content.Text)
					break
				}
			}
			if outputText != "" {
				break
			}
		}
	}
	if outputText == "" {
		return Result{}, newError(ClassMalformed, "generate response missing output text", nil)
	}

	return DecodeResult([]byte(outputText), req.Schema)
}

func classifyStatus(status int, detail string) *Error {
	message := fmt.Sprintf("generate request status %d: %s", status, detail)
	switch {
	case status == http.StatusTooManyRequests:
		return newError(ClassRateLimited, message, nil)
	case status >= 500:
		return newError(ClassOverloaded, message, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(ClassAuth, message, nil)
	default:
		return newError(ClassRejected, message, nil)
	}
}
