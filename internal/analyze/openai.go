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

const openAIBaseURL = "https://api.openai.com"

type openAIAnalyzer struct {
	log     *zap.Logger
	httpc   *http.Client
	apiKey  string
	model   string
	baseURL string
}

func newOpenAI(log *zap.Logger, httpc *http.Client, cfg Config) *openAIAnalyzer {
	base := cfg.BaseURL
	if base == "" {
		base = openAIBaseURL
	}
	return &openAIAnalyzer{
		log:     log.With(zap.String("component", "analyze.openai")),
		httpc:   httpc,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: base,
	}
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *openAIAnalyzer) Analyze(ctx context.Context, text, name, instructions string) (*watch.CheckResult, error) {
	tr := otel.Tracer("analyze")
	ctx, span := tr.Start(ctx, "analyze.openai")
	span.SetAttributes(
		attribute.String("ai.model", a.model),
		attribute.Int("page.text_len", len(text)),
	)
	defer span.End()

	body, _ := json.Marshal(openAIRequest{
		Model: a.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(text, name, instructions)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpc.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("openai status %d: %s", resp.StatusCode, truncate(string(raw), 200))
		span.RecordError(err)
		return nil, err
	}

	var or openAIResponse
	if err := json.Unmarshal(raw, &or); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(or.Choices) == 0 {
		return nil, fmt.Errorf("openai response has no choices")
	}

	res, err := parseResult(or.Choices[0].Message.Content)
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
