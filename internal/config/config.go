package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "data/config.yaml"

	configFileEnvKey = "CONFIG_FILE"
	databaseEnvKey   = "DATABASE_URL"
	redisEnvKey      = "REDIS_URL"
	telegramEnvKey   = "TELEGRAM_TOKEN"
	httpAddrEnvKey   = "HTTP_ADDR"
)

type config struct {
	App       AppConfig       `yaml:"app"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Cache     CacheConfig     `yaml:"cache"`
	Memcached MemcachedConfig `yaml:"memcached"`
	Redis     RedisConfig     `yaml:"redis"`
	Feed      FeedConfig      `yaml:"feed"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type Service struct {
	config config
}

// New reads the yaml file named by CONFIG_FILE (data/config.yaml by default).
// A missing file is not an error: defaults and env overrides still apply.
func New() (*Service, error) {
	// .env is optional
	_ = godotenv.Load()

	path := os.Getenv(configFileEnvKey)
	if path == "" {
		path = defaultConfigFile
	}
	return Load(path)
}

// Load is New with an explicit file path.
func Load(path string) (*Service, error) {
	rawYAML, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "reading config file")
	}
	return parse(rawYAML)
}

func parse(rawYAML []byte) (*Service, error) {
	s := &Service{}
	if len(rawYAML) > 0 {
		if err := yaml.Unmarshal(rawYAML, &s.config); err != nil {
			return nil, errors.Wrap(err, "parsing yaml")
		}
	}

	s.applyEnv()
	s.applyDefaults()
	return s, nil
}

func (s *Service) applyEnv() {
	if v := os.Getenv(databaseEnvKey); v != "" {
		s.config.Postgres.ConnURL = v
	}
	if v := os.Getenv(redisEnvKey); v != "" {
		s.config.Redis.ConnURL = v
	}
	if v := os.Getenv(telegramEnvKey); v != "" {
		s.config.Telegram.ApiToken = v
	}
	if v := os.Getenv(httpAddrEnvKey); v != "" {
		s.config.HTTP.ListenAddr = v
	}
}

func (s *Service) applyDefaults() {
	s.config.App.setDefaults()
	s.config.HTTP.setDefaults()
	s.config.GRPC.setDefaults()
	s.config.Postgres.setDefaults()
	s.config.Cache.setDefaults()
	s.config.Redis.setDefaults()
	s.config.Feed.setDefaults()
	s.config.Kafka.setDefaults()
	s.config.Telegram.setDefaults()
	s.config.Tracing.setDefaults()
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) HTTP() *HTTPConfig {
	return &s.config.HTTP
}

func (s *Service) GRPC() *GRPCConfig {
	return &s.config.GRPC
}

func (s *Service) Postgres() *PostgresConfig {
	return &s.config.Postgres
}

func (s *Service) Cache() *CacheConfig {
	return &s.config.Cache
}

func (s *Service) Memcached() *MemcachedConfig {
	return &s.config.Memcached
}

func (s *Service) Redis() *RedisConfig {
	return &s.config.Redis
}

func (s *Service) Feed() *FeedConfig {
	return &s.config.Feed
}

func (s *Service) Kafka() *KafkaConfig {
	return &s.config.Kafka
}

func (s *Service) Telegram() *TelegramConfig {
	return &s.config.Telegram
}

func (s *Service) Tracing() *TracingConfig {
	return &s.config.Tracing
}
