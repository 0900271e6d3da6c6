package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/createdbygabi/Blocks-sub001/internal/log"
)

func TestAttrs(t *testing.T) {
	assertAttrEqual(t, log.UserID("u1"), "user_id", "u1")
	assertAttrEqual(t, log.RunID("r1"), "run_id", "r1")
	assertAttrEqual(t, log.StepID("branding"), "step_id", "branding")
	assertAttrEqual(t, log.SubstepID("logo"), "substep_id", "logo")
	assertAttrEqual(t, log.Status("completed"), "status", "completed")
	assertAttrEqual(t, log.Handler("names"), "handler", "names")
}

func TestError(t *testing.T) {
	assertAttrEqual(t, log.Error(nil), "error", "")
	assertAttrEqual(t, log.Error(errors.New("boom")), "error", "boom")
}

func TestNewUsesInfoLevel(t *testing.T) {
	logger := log.New("svc", "dev", "1.0.0")
	ctx := context.Background()

	assert.False(t, logger.Handler().Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Handler().Enabled(ctx, slog.LevelInfo))
}

func TestNewToOutputsBaseAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewTo(&buf, "blocks", "prod", "2.3.4", slog.LevelDebug)
	logger.Info("hello", log.SubstepID("logo"))

	var got map[string]any
	assert.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))
	assert.Equal(t, "blocks", got["service"])
	assert.Equal(t, "prod", got["env"])
	assert.Equal(t, "2.3.4", got["version"])
	assert.Equal(t, "logo", got["substep_id"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, log.ParseLevel(in), in)
	}
}

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
