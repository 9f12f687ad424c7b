package logger_test

import (
	"net/http/httptest"
	"testing"

	"cern-sync/core/logger"
	"cern-sync/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  logger.Config
	}{
		{"production json", logger.Config{Level: "info", Format: "json"}},
		{"development console", logger.Config{Level: "debug", Format: "console"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := logger.New(&tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestWithRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := logger.WithRunID(zap.New(core), "run-123")

	l.Info("users_sync")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "run-123", entries[0].ContextMap()["run_id"])
}

func TestWithRunIDEmpty(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := logger.WithRunID(zap.New(core), "")

	l.Info("users_sync")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].ContextMap(), "run_id")
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Use(rayid.New())
	app.Get("/", func(c *fiber.Ctx) error {
		logger.WithRayID(base, c).Info("request")
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(rayid.HeaderName, "ray-42")

	_, err := app.Test(req)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ray-42", entries[0].ContextMap()["ray_id"])
}
