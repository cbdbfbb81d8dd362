package config

import (
	"github.com/jcooky/go-din"
)

type LogConfig struct {
	LogLevel   string `env:"LOG_LEVEL,default=debug"`
	LogHandler string `env:"LOG_HANDLER,default=default"`
}

func init() {
	din.RegisterT(func(c *din.Container) (*LogConfig, error) {
		conf := &LogConfig{}
		if err := resolveConfig(conf, c.Env == din.EnvTest); err != nil {
			return nil, err
		}

		return conf, nil
	})
}
