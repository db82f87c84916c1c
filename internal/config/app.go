package config

import (
	"time"
)

const (
	defaultTimezone      = "Europe/Istanbul"
	defaultIngestAt      = "04:00"
	defaultIngestTimeout = 120
)

type AppConfig struct {
	TimezoneName         string `yaml:"timezone"`
	IngestTime           string `yaml:"ingest-at"`
	IngestOnStartup      bool   `yaml:"ingest-on-start"`
	IngestTimeoutSeconds int64  `yaml:"ingest-timeout-seconds"`
}

func (s *AppConfig) setDefaults() {
	if s.TimezoneName == "" {
		s.TimezoneName = defaultTimezone
	}
	if s.IngestTime == "" {
		s.IngestTime = defaultIngestAt
	}
	if s.IngestTimeoutSeconds <= 0 {
		s.IngestTimeoutSeconds = defaultIngestTimeout
	}
}

// Location falls back to UTC when the zone database has no entry for the name.
func (s *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.TimezoneName)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *AppConfig) IngestAt() string {
	return s.IngestTime
}

func (s *AppConfig) IngestOnStart() bool {
	return s.IngestOnStartup
}

func (s *AppConfig) IngestTimeout() time.Duration {
	return time.Duration(s.IngestTimeoutSeconds) * time.Second
}
