package server

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// ConsoleHook is a logrus hook that copies log entries to every subscribed
// render stream. Sends never block: a full channel drops the message.
type ConsoleHook struct {
	mu          sync.Mutex
	subscribers map[string]chan<- ConsoleMessage
}

// NewConsoleHook creates a hook without subscribers
func NewConsoleHook() *ConsoleHook {
	return &ConsoleHook{subscribers: make(map[string]chan<- ConsoleMessage)}
}

// Subscribe forwards subsequent entries to ch until Unsubscribe(id)
func (h *ConsoleHook) Subscribe(id string, ch chan<- ConsoleMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[id] = ch
}

// Unsubscribe stops forwarding to the channel registered under id
func (h *ConsoleHook) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, id)
}

// Levels implements logrus.Hook
func (h *ConsoleHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}
}

// Fire implements logrus.Hook
func (h *ConsoleHook) Fire(entry *logrus.Entry) error {
	msg := ConsoleMessage{
		Message:   strings.TrimRight(entry.Message, "\n"),
		Timestamp: entry.Time,
		Level:     entry.Level.String(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			// Channel full, skip (don't block)
		}
	}
	return nil
}
