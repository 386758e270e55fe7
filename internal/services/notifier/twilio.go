package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const twilioBaseURL = "https://api.twilio.com"

// TwilioChannel delivers alerts as SMS through the Twilio REST API. The
// recipient is a phone number.
type TwilioChannel struct {
	log        *zap.Logger
	httpc      *http.Client
	accountSID string
	authToken  string
	from       string
	baseURL    string
}

func NewTwilioChannel(log *zap.Logger, accountSID, authToken, from, baseURL string, timeout time.Duration) *TwilioChannel {
	if baseURL == "" {
		baseURL = twilioBaseURL
	}
	return &TwilioChannel{
		log:        log.With(zap.String("component", "notifier.twilio")),
		httpc:      &http.Client{Timeout: timeout},
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    baseURL,
	}
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

func (c *TwilioChannel) Send(ctx context.Context, recipient, text string) (string, error) {
	form := url.Values{}
	form.Set("To", recipient)
	form.Set("From", c.from)
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var twr twilioResponse
	if err := json.Unmarshal(raw, &twr); err != nil {
		return "", fmt.Errorf("decode twilio response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("twilio status %d: %s", resp.StatusCode, twr.Message)
	}

	c.log.Debug("sms sent",
		zap.String("to", recipient),
		zap.Duration("elapsed", time.Since(start)),
	)
	return twr.SID, nil
}
