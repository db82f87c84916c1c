package config

import "time"

const defaultTelegramTimeoutSeconds = 5

type TelegramConfig struct {
	ApiToken       string  `yaml:"token"`
	NotifyChats    []int64 `yaml:"notify-chat-ids"`
	TimeoutSeconds int64   `yaml:"timeout-seconds"`
}

func (t *TelegramConfig) setDefaults() {
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = defaultTelegramTimeoutSeconds
	}
}

func (t *TelegramConfig) Token() string {
	return t.ApiToken
}

func (t *TelegramConfig) NotifyChatIDs() []int64 {
	return t.NotifyChats
}

func (t *TelegramConfig) HandleTimeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}
