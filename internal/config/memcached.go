package config

import "time"

const (
	defaultCacheBackend        = "redis"
	defaultCacheTTLSeconds     = 300
	defaultCacheTimeoutSeconds = 1
	defaultRedisURL            = "redis://localhost:6379"
)

type CacheConfig struct {
	BackendName    string `yaml:"backend"`
	TTLSeconds     int64  `yaml:"ttl-seconds"`
	TimeoutSeconds int64  `yaml:"timeout-seconds"`
}

func (s *CacheConfig) setDefaults() {
	if s.BackendName == "" {
		s.BackendName = defaultCacheBackend
	}
	if s.TTLSeconds <= 0 {
		s.TTLSeconds = defaultCacheTTLSeconds
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = defaultCacheTimeoutSeconds
	}
}

func (s *CacheConfig) Backend() string {
	return s.BackendName
}

func (s *CacheConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

func (s *CacheConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type MemcachedConfig struct {
	NodeHosts []string `yaml:"hosts"`
}

func (s *MemcachedConfig) Hosts() []string {
	return s.NodeHosts
}

type RedisConfig struct {
	ConnURL string `yaml:"url"`
}

func (s *RedisConfig) setDefaults() {
	if s.ConnURL == "" {
		s.ConnURL = defaultRedisURL
	}
}

func (s *RedisConfig) URL() string {
	return s.ConnURL
}
