package config

import (
	"time"

	"github.com/testudo/seatwatch/internal/obs"
)

type FetchCfg struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type AICfg struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type TelegramCfg struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

type TwilioCfg struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	BaseURL    string `mapstructure:"base_url"`
}

type ChannelCfg struct {
	Type             string        `mapstructure:"type"`
	DefaultRecipient string        `mapstructure:"default_recipient"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Telegram         TelegramCfg   `mapstructure:"telegram"`
	Twilio           TwilioCfg     `mapstructure:"twilio"`
}

type ServerCfg struct {
	StatusAddr string `mapstructure:"status_addr"`
}

type LogCfg struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (c LogCfg) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Level,
		Pretty: c.Pretty,
		App:    "seatwatch",
		Env:    "prod",
		Ver:    "dev",
	}
}

type OTELCfg struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func (c OTELCfg) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      c.Enable,
		Endpoint:    c.Endpoint,
		ServiceName: c.ServiceName,
		SampleRatio: c.SampleRatio,
	}
}

type Config struct {
	Fetch       FetchCfg   `mapstructure:"fetch"`
	AI          AICfg      `mapstructure:"ai"`
	Channel     ChannelCfg `mapstructure:"channel"`
	Server      ServerCfg  `mapstructure:"server"`
	Log         LogCfg     `mapstructure:"log"`
	OTEL        OTELCfg    `mapstructure:"otel"`
	TargetsPath string     `mapstructure:"targets_path"`
}
