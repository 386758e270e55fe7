// Package analyze implements the LLM-backed analysis collaborator. The
// provider variant is fixed at construction time from configuration.
package analyze

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/domain/watch"
)

type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New selects the analyzer variant named by cfg.Provider.
func New(log *zap.Logger, cfg Config) (watch.Analyzer, error) {
	httpc := &http.Client{Timeout: cfg.Timeout}
	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		return newAnthropic(log, httpc, cfg), nil
	case "openai":
		return newOpenAI(log, httpc, cfg), nil
	default:
		return nil, fmt.Errorf("analyze: unknown provider %q", cfg.Provider)
	}
}

// parseResult decodes the model's JSON answer. Models occasionally wrap the
// object in prose or code fences, so decoding starts at the first brace.
func parseResult(raw string) (*watch.CheckResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output")
	}
	var res watch.CheckResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &res); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	return &res, nil
}
