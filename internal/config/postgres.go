package config

import "fmt"

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

type PostgresConfig struct {
	ConnURL  string `yaml:"url"`
	Hostname string `yaml:"host"`
	Db       string `yaml:"db"`
	User     string `yaml:"username"`
	Pswd     string `yaml:"password"`
}

func (s *PostgresConfig) setDefaults() {
	if s.Hostname == "" {
		s.Hostname = "localhost"
	}
	if s.Db == "" {
		s.Db = "doviz_db"
	}
	if s.User == "" {
		s.User = "doviz_user"
	}
	if s.Pswd == "" {
		s.Pswd = "doviz_password"
	}
}

// DSN prefers a full connection URL (DATABASE_URL) over the separate fields.
func (s *PostgresConfig) DSN() string {
	if s.ConnURL != "" {
		return s.ConnURL
	}
	return fmt.Sprintf(dsnTemplate, s.User, s.Pswd, s.Hostname, s.Db)
}
