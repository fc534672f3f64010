package server

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHookedLogger(hook *ConsoleHook) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(hook)
	return logger
}

func TestConsoleHook_BasicLogging(t *testing.T) {
	hook := NewConsoleHook()
	messageChan := make(chan ConsoleMessage, 10)
	hook.Subscribe("test-render-123", messageChan)
	logger := newHookedLogger(hook)

	logger.Infof("Loading %s with %d shapes...\n", "scene.yaml", 3)

	select {
	case msg := <-messageChan:
		assert.Equal(t, "Loading scene.yaml with 3 shapes...", msg.Message)
		assert.Equal(t, "info", msg.Level)
		assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Second)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for console message")
	}
}

func TestConsoleHook_Levels(t *testing.T) {
	hook := NewConsoleHook()
	messageChan := make(chan ConsoleMessage, 10)
	hook.Subscribe("levels", messageChan)
	logger := newHookedLogger(hook)
	logger.SetLevel(logrus.DebugLevel)

	logger.Debug("hidden")
	logger.Warn("careful")
	logger.Error("broken")

	require.Len(t, messageChan, 2)
	assert.Equal(t, "warning", (<-messageChan).Level)
	assert.Equal(t, "error", (<-messageChan).Level)
}

func TestConsoleHook_ChannelFull(t *testing.T) {
	hook := NewConsoleHook()
	messageChan := make(chan ConsoleMessage, 1)
	hook.Subscribe("full", messageChan)
	logger := newHookedLogger(hook)

	// Sends beyond the channel capacity must not block
	logger.Info("Message 1")
	logger.Info("Message 2")
	logger.Info("Message 3")
	assert.Equal(t, "Message 1", (<-messageChan).Message)
}

func TestConsoleHook_Unsubscribe(t *testing.T) {
	hook := NewConsoleHook()
	first := make(chan ConsoleMessage, 10)
	second := make(chan ConsoleMessage, 10)
	hook.Subscribe("first", first)
	hook.Subscribe("second", second)
	logger := newHookedLogger(hook)

	logger.Info("both")
	hook.Unsubscribe("first")
	logger.Info("second only")

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
}
