package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/habiliai/inbox/config"
	"github.com/habiliai/inbox/errors"
	"github.com/jcooky/go-din"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfigDefaults(t *testing.T) {
	t.Setenv("ENV_TEST_FILE", "testdata/none.env")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "90m")

	c := din.NewContainer(context.Background(), din.EnvTest)
	conf, err := din.GetT[*config.ServerConfig](c)
	require.NoError(t, err)

	assert.Equal(t, 9090, conf.Port)
	assert.Equal(t, "0.0.0.0", conf.Host)
	assert.Equal(t, 90*time.Minute, conf.JwtTTL)
	assert.Equal(t, 20, conf.ThreadPageSize)
	assert.Equal(t, "inbox-test-secret", conf.JwtSecret)
}

func TestServerConfigValidate(t *testing.T) {
	conf := config.ServerConfig{
		DatabaseUrl:      "sqlite://inbox.db",
		MaxContentLength: 100,
		ThreadPageSize:   config.MaxThreadPageSize + 1,
		MessagePageSize:  10,
	}
	assert.True(t, errors.Is(conf.Validate(), errors.ErrInvalidConfig))

	conf.ThreadPageSize = 10
	assert.NoError(t, conf.Validate())
}
