package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("loud")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestNewCLI_Quiet(t *testing.T) {
	l, err := NewCLI(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	l, err = NewCLI(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
