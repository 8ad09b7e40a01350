package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jburnford/geo-linked-open-data-kg/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":       "DEBUG",
		"warn":        "WARN",
		"error":       "ERROR",
		"info":        "INFO",
		"unrecognized": "INFO",
	}
	for input, want := range cases {
		assert.Equal(t, want, parseLevel(input).String())
	}
}

func TestNewLogger_DoesNotPanicForEitherFormat(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		cfg := &config.Config{LogLevel: "info", LogFormat: format}
		logger := NewLogger(cfg)
		assert.NotNil(t, logger)
		logger.Info("smoke test")
	}
}
