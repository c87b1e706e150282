package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		wantLevel zapcore.Level
	}{
		{name: "debug", level: "debug", wantLevel: zapcore.DebugLevel},
		{name: "warn", level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "unknown falls back to info", level: "chatty", wantLevel: zapcore.InfoLevel},
		{name: "empty falls back to info", level: "", wantLevel: zapcore.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.level)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tc.wantLevel))
			if tc.wantLevel > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tc.wantLevel-1))
			}
		})
	}
}
