package config

import (
	"os"

	env "github.com/Netflix/go-env"
	"github.com/habiliai/inbox/errors"
	"github.com/joho/godotenv"
)

// resolveConfig fills config from the process environment. Values already in
// the environment win over .env.test, which wins over .env.
func resolveConfig[T any](config *T, testing bool) error {
	if config == nil {
		return errors.New("config is nil")
	}

	if testing {
		filename := ".env.test"
		if v := os.Getenv("ENV_TEST_FILE"); v != "" {
			filename = v
		}
		if _, err := os.Stat(filename); !os.IsNotExist(err) {
			if err := godotenv.Load(filename); err != nil {
				return errors.Wrapf(err, "failed to load %s", filename)
			}
		}
	}

	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(".env"); err != nil {
			return errors.Wrapf(err, "failed to load .env")
		}
	}

	if _, err := env.UnmarshalFromEnviron(config); err != nil {
		return errors.Wrapf(err, "failed to load config")
	}

	return nil
}
