package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level slog.Level) (*ChanneledLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := NewChanneledLogger(&LoggerConfig{
		Writer:       &buf,
		JSONFormat:   true,
		DefaultLevel: level,
	})
	require.NoError(t, err)
	return logger, &buf
}

func TestSetChannelLevel(t *testing.T) {
	logger, buf := newBufferLogger(t, slog.LevelInfo)

	logger.Content().Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	require.NoError(t, logger.SetChannelLevel(ChannelContent, slog.LevelDebug))
	buf.Reset()

	logger.Content().Debug("now visible")
	logger.Database().Debug("still hidden")
	assert.Contains(t, buf.String(), "now visible")
	assert.NotContains(t, buf.String(), "still hidden")

	levels := logger.GetChannelLevels()
	assert.Len(t, levels, len(allChannels))
	assert.Equal(t, "DEBUG", levels["content"])
	assert.Equal(t, "INFO", levels["database"])

	err := logger.SetChannelLevel(Channel("billing"), slog.LevelDebug)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestWithContext(t *testing.T) {
	logger, buf := newBufferLogger(t, slog.LevelInfo)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	logger.WithContext(ChannelContent, ctx).Info("rendered")
	assert.Contains(t, buf.String(), `"requestId":"req-42"`)
	assert.Contains(t, buf.String(), `"channel":"content"`)

	buf.Reset()
	logger.WithContext(ChannelContent, context.Background()).Info("rendered")
	assert.NotContains(t, buf.String(), "requestId")
}

func TestLookupLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warning ", slog.LevelWarn, true},
		{"fatal", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, known := LookupLevel(tt.name)
			assert.Equal(t, tt.want, level)
			assert.Equal(t, tt.known, known)
			assert.Equal(t, tt.want, ParseLevel(tt.name))
		})
	}
}

func TestParseChannelLevels(t *testing.T) {
	levels := ParseChannelLevels("database=debug, auth=warn,billing=error,broken")
	assert.Equal(t, map[Channel]slog.Level{
		ChannelDatabase: slog.LevelDebug,
		ChannelAuth:     slog.LevelWarn,
	}, levels)
}
