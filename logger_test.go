package mixloop

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerTo(t *testing.T) {
	saved := logger
	t.Cleanup(func() { logger = saved })

	var buf bytes.Buffer
	l, err := InitLoggerTo(&buf, "warn")
	require.NoError(t, err)
	assert.Same(t, l, Logger())

	_, err = TriggerLooper{Clock: Never(), Length: 4}.Build()
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	l.Warn("loud", "key", "value")
	assert.Contains(t, buf.String(), "level=WARN msg=loud key=value")

	_, err = InitLoggerTo(&buf, "nope")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Same(t, l, Logger())
}

func TestLoggerDefault(t *testing.T) {
	assert.NotNil(t, Logger())
	level, err := ResolveLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}
