package config

import (
	"time"

	"github.com/habiliai/inbox/errors"
	"github.com/jcooky/go-din"
)

type ServerConfig struct {
	Host                string `env:"HOST,default=0.0.0.0"`
	Port                int    `env:"PORT,default=8080"`
	DatabaseUrl         string `env:"DATABASE_URL,default=sqlite://inbox.db"`
	DatabaseAutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE,default=true"`

	JwtSecret string        `env:"JWT_SECRET"`
	JwtIssuer string        `env:"JWT_ISSUER,default=inbox"`
	JwtTTL    time.Duration `env:"JWT_TTL,default=24h"`

	MaxContentLength int `env:"MAX_CONTENT_LENGTH,default=10000"`
	ThreadPageSize   int `env:"THREAD_PAGE_SIZE,default=20"`
	MessagePageSize  int `env:"MESSAGE_PAGE_SIZE,default=50"`
}

const (
	MaxThreadPageSize  = 100
	MaxMessagePageSize = 200
)

func (c *ServerConfig) Validate() error {
	if c.DatabaseUrl == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "DATABASE_URL is required")
	}
	if c.MaxContentLength <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "MAX_CONTENT_LENGTH must be positive")
	}
	if c.ThreadPageSize <= 0 || c.ThreadPageSize > MaxThreadPageSize {
		return errors.Wrapf(errors.ErrInvalidConfig, "THREAD_PAGE_SIZE must be in 1..%d", MaxThreadPageSize)
	}
	if c.MessagePageSize <= 0 || c.MessagePageSize > MaxMessagePageSize {
		return errors.Wrapf(errors.ErrInvalidConfig, "MESSAGE_PAGE_SIZE must be in 1..%d", MaxMessagePageSize)
	}
	return nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*ServerConfig, error) {
		conf := &ServerConfig{}
		if err := resolveConfig(conf, c.Env == din.EnvTest); err != nil {
			return nil, err
		}
		if c.Env == din.EnvTest && conf.JwtSecret == "" {
			conf.JwtSecret = "inbox-test-secret"
		}

		return conf, conf.Validate()
	})
}
