package config

import "time"

const (
	defaultHTTPAddr        = ":8000"
	defaultShutdownSeconds = 10
	defaultGRPCPort        = 9090
	defaultProbeSeconds    = 15
)

type HTTPConfig struct {
	ListenAddr      string `yaml:"addr"`
	ShutdownSeconds int64  `yaml:"shutdown-timeout-seconds"`
}

func (s *HTTPConfig) setDefaults() {
	if s.ListenAddr == "" {
		s.ListenAddr = defaultHTTPAddr
	}
	if s.ShutdownSeconds <= 0 {
		s.ShutdownSeconds = defaultShutdownSeconds
	}
}

func (s *HTTPConfig) Addr() string {
	return s.ListenAddr
}

func (s *HTTPConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownSeconds) * time.Second
}

type GRPCConfig struct {
	ListenPort   int   `yaml:"port"`
	ProbeSeconds int64 `yaml:"probe-interval-seconds"`
}

func (s *GRPCConfig) setDefaults() {
	if s.ListenPort == 0 {
		s.ListenPort = defaultGRPCPort
	}
	if s.ProbeSeconds <= 0 {
		s.ProbeSeconds = defaultProbeSeconds
	}
}

func (s *GRPCConfig) Port() int {
	return s.ListenPort
}

func (s *GRPCConfig) ProbeInterval() time.Duration {
	return time.Duration(s.ProbeSeconds) * time.Second
}
