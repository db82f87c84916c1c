package config

import "time"

const (
	defaultFeedBaseURL        = "https://www.tcmb.gov.tr/kurlar"
	defaultFeedTimeoutSeconds = 30
)

type FeedConfig struct {
	URL              string `yaml:"base-url"`
	TimeoutSeconds   int64  `yaml:"timeout-seconds"`
	Retries          int    `yaml:"retries"`
	FallbackToSample bool   `yaml:"fallback-to-sample"`
}

func (f *FeedConfig) setDefaults() {
	if f.URL == "" {
		f.URL = defaultFeedBaseURL
	}
	if f.TimeoutSeconds <= 0 {
		f.TimeoutSeconds = defaultFeedTimeoutSeconds
	}
	if f.Retries < 0 {
		f.Retries = 0
	}
}

func (f *FeedConfig) BaseURL() string {
	return f.URL
}

func (f *FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func (f *FeedConfig) RetryCount() int {
	return f.Retries
}

func (f *FeedConfig) SampleFallback() bool {
	return f.FallbackToSample
}
