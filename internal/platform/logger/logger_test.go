package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"":        Info,
		" INFO ":  Info,
		"warning": Warn,
		"error":   Error,
		"bogus":   Info,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat(""))
	assert.Equal(t, FormatText, ParseFormat("console"))
}

func TestZapLogger_WithMergesFieldsAndFiltersLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core, "rostersync")

	l.Debug("hidden", nil)
	l.With(map[string]any{"shelter_id": "s1", " ": "ignored"}).
		Warn("fetch failed", map[string]any{"provider": "asm", "error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "fetch failed", e.Message)
	assert.Equal(t, zapcore.WarnLevel, e.Level)

	ctx := e.ContextMap()
	assert.Equal(t, "rostersync", ctx["app"])
	assert.Equal(t, "s1", ctx["shelter_id"])
	assert.Equal(t, "asm", ctx["provider"])
	assert.Equal(t, "boom", ctx["error"])
	_, hasBlank := ctx[" "]
	assert.False(t, hasBlank)
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.With(map[string]any{"a": 1}).Error("x", map[string]any{"b": 2})
}
