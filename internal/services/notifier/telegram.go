package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const telegramBaseURL = "https://api.telegram.org"

// TelegramChannel delivers alerts through the Telegram bot API. The
// recipient is a chat id.
type TelegramChannel struct {
	log     *zap.Logger
	httpc   *http.Client
	token   string
	baseURL string
}

func NewTelegramChannel(log *zap.Logger, token, baseURL string, timeout time.Duration) *TelegramChannel {
	if baseURL == "" {
		baseURL = telegramBaseURL
	}
	return &TelegramChannel{
		log:     log.With(zap.String("component", "notifier.telegram")),
		httpc:   &http.Client{Timeout: timeout},
		token:   token,
		baseURL: baseURL,
	}
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (c *TelegramChannel) Send(ctx context.Context, recipient, text string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"chat_id": recipient,
		"text":    text,
	})
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var tr telegramResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return "", fmt.Errorf("decode telegram response: %w", err)
	}
	if !tr.OK {
		return "", fmt.Errorf("telegram status %d: %s", resp.StatusCode, tr.Description)
	}

	c.log.Debug("message sent",
		zap.String("chat_id", recipient),
		zap.Duration("elapsed", time.Since(start)),
	)
	return strconv.FormatInt(tr.Result.MessageID, 10), nil
}
