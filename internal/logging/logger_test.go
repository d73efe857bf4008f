package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, TRACE, ParseLevel("trace"))
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestWriterLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("playback", &buf, WARN)

	l.Info("скрыто")
	l.Warn("промахов: %d", 3)
	assert.NotContains(t, buf.String(), "скрыто")
	assert.Contains(t, buf.String(), "[WARN] [playback] промахов: 3")

	l.SetLevel(DEBUG)
	l.Debug("видно")
	assert.Contains(t, buf.String(), "[DEBUG] [playback] видно")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Error("ничего") })
}

func TestLoggerManager_ReusesComponent(t *testing.T) {
	m := GetLoggerManager()
	a := m.MustGetLogger("test-component")
	b := m.MustGetLogger("test-component")
	assert.Same(t, a, b)
	assert.Contains(t, m.Components(), "test-component")
	assert.NoError(t, m.SetLogLevel("test-component", ERROR, ERROR))
	assert.Error(t, m.SetLogLevel("missing-component", ERROR, ERROR))
}

func TestLoggerManager_SetLevelAll(t *testing.T) {
	m := GetLoggerManager()
	m.SetLevelAll(ERROR)
	defer m.SetLevelAll(INFO)

	l := m.MustGetLogger("level-component")
	l.mu.Lock()
	level := l.minConsoleLevel
	l.mu.Unlock()
	assert.Equal(t, ERROR, level, "уровень применяется и к новым логгерам")
}
