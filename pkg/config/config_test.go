package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingsocial/authkit/pkg/config"
)

type testConfig struct {
	BaseURL string        `env:"TEST_CFG_BASE_URL,required"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"10s"`
	Debug   bool          `env:"TEST_CFG_DEBUG" envDefault:"false"`
}

func TestLoad(t *testing.T) {
	t.Run("populates fields and defaults", func(t *testing.T) {
		t.Setenv("TEST_CFG_BASE_URL", "https://auth.example.com")
		t.Setenv("TEST_CFG_DEBUG", "true")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "https://auth.example.com", cfg.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Timeout, "default applies")
		assert.True(t, cfg.Debug)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil target is rejected", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg testConfig
			config.MustLoad(&cfg)
		})
	})
}
