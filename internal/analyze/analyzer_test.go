package analyze

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const modelAnswer = `{"is_available": true, "sections": [{"section_id": "0101", "open_seats": 2, "total_seats": 30, "waitlist": 0}], "raw_text_summary": "one open section"}`

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(zap.NewNop(), Config{Provider: "bard"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bard")
}

func TestParseResult(t *testing.T) {
	res, err := parseResult(modelAnswer)
	require.NoError(t, err)
	assert.True(t, res.Available)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, "0101", res.Sections[0].SectionID)
	assert.Equal(t, 2, res.Sections[0].OpenSeats)
}

func TestParseResult_ToleratesFences(t *testing.T) {
	res, err := parseResult("Here you go:\n```json\n" + modelAnswer + "\n```")
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestParseResult_NoObject(t *testing.T) {
	_, err := parseResult("sorry, I cannot help with that")
	require.Error(t, err)
}

func TestAnthropic_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-api-key"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-haiku-20240307", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "CMSC216")
		assert.Contains(t, req.Messages[0].Content, "watch for open seats")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": modelAnswer}},
		})
	}))
	defer srv.Close()

	a, err := New(zap.NewNop(), Config{
		Provider: "anthropic",
		APIKey:   "key-123",
		Model:    "claude-3-haiku-20240307",
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)

	res, err := a.Analyze(context.Background(), "page text", "CMSC216", "watch for open seats")
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, "one open section", res.Summary)
}

func TestAnthropic_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a, err := New(zap.NewNop(), Config{Provider: "anthropic", BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), "text", "X", "check this page for seats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAI_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-456", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": modelAnswer}},
			},
		})
	}))
	defer srv.Close()

	a, err := New(zap.NewNop(), Config{
		Provider: "openai",
		APIKey:   "key-456",
		Model:    "gpt-4o-mini",
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)

	res, err := a.Analyze(context.Background(), "page text", "CMSC216", "watch for open seats")
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestBuildPrompt_TruncatesLongText(t *testing.T) {
	text := strings.Repeat("x", maxTextLen+500)
	p := buildPrompt(text, "CMSC216", "check seats")
	assert.Contains(t, p, "[Content truncated...]")
	assert.Less(t, len(p), maxTextLen+1000)
}
