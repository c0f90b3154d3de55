package zaplog

import (
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerMapsLevelsAndFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := New(zap.New(core))

	require.NoError(t, logger.Log(log.LevelWarn, "msg", "recompute failed", "movie_id", "abc", "attempt", 2))
	require.NoError(t, logger.Log(log.LevelDebug, "msg", "cache hit"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "recompute failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["movie_id"])
	assert.EqualValues(t, 2, fields["attempt"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestLoggerOddKeyvals(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := New(zap.New(core))

	require.NoError(t, logger.Log(log.LevelInfo, "dangling"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestHelperIntegration(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	helper := log.NewHelper(New(zap.New(core)))

	helper.Infof("movie %s created", "Dune")

	entries := logs.FilterMessage("movie Dune created").All()
	assert.Len(t, entries, 1)
}
