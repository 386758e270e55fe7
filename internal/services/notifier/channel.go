package notifier

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/config"
	"github.com/testudo/seatwatch/internal/domain/watch"
)

// NewChannel selects the delivery channel variant named by cfg.Type.
func NewChannel(log *zap.Logger, cfg config.ChannelCfg) (watch.MessageChannel, error) {
	switch strings.ToLower(cfg.Type) {
	case "telegram":
		return NewTelegramChannel(log, cfg.Telegram.Token, cfg.Telegram.BaseURL, cfg.Timeout), nil
	case "twilio":
		return NewTwilioChannel(log, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken,
			cfg.Twilio.From, cfg.Twilio.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("notifier: unknown channel type %q", cfg.Type)
	}
}
