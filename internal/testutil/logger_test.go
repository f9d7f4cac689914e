package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCaptureLogger(t *testing.T) {
	logger, buf := NewCaptureLogger(slog.LevelWarn)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Warn("captured", "k", "v")
			logger.Debug("dropped")
		}()
	}
	wg.Wait()

	out := buf.String()
	assert.Contains(t, out, "msg=captured")
	assert.Contains(t, out, "k=v")
	assert.NotContains(t, out, "dropped")
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
}
