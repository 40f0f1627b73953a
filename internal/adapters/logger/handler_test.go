package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/rbuild/internal/adapters/logger"
)

func TestPrettyHandler(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name string
		log  func(*slog.Logger)
		want string
	}{
		{
			name: "attributes follow the message",
			log:  func(l *slog.Logger) { l.Info("bumped", "file", "VERSION", "version", "1.2.4") },
			want: "bumped file=VERSION version=1.2.4\n",
		},
		{
			name: "groups nest",
			log: func(l *slog.Logger) {
				l.With("task", "build").WithGroup("cmd").WithGroup("env").Warn("unset", "name", "ANDROID_HOME")
			},
			want: "! unset task=build cmd.env.name=ANDROID_HOME\n",
		},
		{
			name: "empty attributes are dropped",
			log:  func(l *slog.Logger) { l.Error("failed", slog.Attr{}, "exit_code", 2) },
			want: "✗ failed exit_code=2\n",
		},
		{
			name: "below the level",
			log:  func(l *slog.Logger) { l.Debug("hidden") },
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(logger.NewPrettyHandler(&buf, nil)))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := logger.NewPrettyHandler(nil, &slog.HandlerOptions{Level: slog.LevelWarn})
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
