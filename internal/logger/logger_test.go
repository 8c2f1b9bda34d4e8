package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestAppLogger_Level(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		l := NewAppLogger(&Config{LogLevel: tt.level})
		assert.Equal(t, tt.expected, l.getLoggerLevel(), tt.level)
	}
}

func TestAppLogger_InitLogger(t *testing.T) {
	l := NewAppLogger(&Config{LogLevel: "warn", Encoder: "json"})
	l.InitLogger()

	assert.NotNil(t, l.Logger())
	assert.False(t, l.Logger().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Logger().Core().Enabled(zapcore.ErrorLevel))

	child := l.With("component", "test")
	assert.NotNil(t, child.Logger())
	child.Infof("ignored %d", 1)
}

func TestNewNopLogger(t *testing.T) {
	l := NewNopLogger()

	assert.NotPanics(t, func() {
		l.Warnf("dropped %s", "message")
		l.Error("dropped")
	})
}
