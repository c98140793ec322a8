package logging

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithZeroLoggerDiscards(t *testing.T) {
	l := New(logr.Logger{})
	assert.NotPanics(t, func() {
		l.WithName("review").Info("dropped", "pr", 7)
	})
	assert.False(t, l.Logr().Enabled())
}

func TestLoggerForwardsValues(t *testing.T) {
	var lines []string
	base := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{Verbosity: 1})

	l := New(base).WithName("review").WithValues("pr", 7)
	l.Info("posted")
	l.Debug("details")
	l.Warn("label failed")
	l.Error(errors.New("boom"), "post failed")

	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "review")
	assert.Contains(t, lines[0], `"pr"=7`)
	assert.Contains(t, lines[2], `"warning"=true`)
	assert.Contains(t, lines[3], "boom")
}

func TestNewZapLevels(t *testing.T) {
	l, sync, err := NewZap("production", "info")
	require.NoError(t, err)
	defer sync()
	assert.False(t, l.Logr().V(1).Enabled())

	dl, dsync, err := NewZap("development", "debug")
	require.NoError(t, err)
	defer dsync()
	assert.True(t, dl.Logr().V(1).Enabled())
}
