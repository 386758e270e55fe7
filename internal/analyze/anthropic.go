package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/watch"
)

const anthropicBaseURL = "https://api.anthropic.com"

type anthropicAnalyzer struct {
	log     *zap.Logger
	httpc   *http.Client
	apiKey  string
	model   string
	baseURL string
}

func newAnthropic(log *zap.Logger, httpc *http.Client, cfg Config) *anthropicAnalyzer {
	base := cfg.BaseURL
	if base == "" {
		base = anthropicBaseURL
	}
	return &anthropicAnalyzer{
		log:     log.With(zap.String("component", "analyze.anthropic")),
		httpc:   httpc,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: base,
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *anthropicAnalyzer) Analyze(ctx context.Context, text, name, instructions string) (*watch.CheckResult, error) {
	tr := otel.Tracer("analyze")
	ctx, span := tr.Start(ctx, "analyze.anthropic")
	span.SetAttributes(
		attribute.String("ai.model", a.model),
		attribute.Int("page.text_len", len(text)),
	)
	defer span.End()

	body, _ := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildPrompt(text, name, instructions)},
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpc.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("anthropic status %d: %s", resp.StatusCode, truncate(string(raw), 200))
		span.RecordError(err)
		return nil, err
	}

	var ar anthropicResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(ar.Content) == 0 {
		return nil, fmt.Errorf("anthropic response has no content")
	}

	res, err := parseResult(ar.Content[0].Text)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	a.log.Debug("analysis complete",
		zap.Bool("is_available", res.Available),
		zap.Int("sections_found", len(res.Sections)),
	)
	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
