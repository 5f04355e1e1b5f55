package errors

import (
	"sync"
	"time"
)

// MessageType is the severity of a Message.
type MessageType int

const (
	MessageTypeError MessageType = iota
	MessageTypeWarning
	MessageTypeInfo
	MessageTypeSuccess
)

// Message is one entry shown in the browser status line.
type Message struct {
	Text      string
	Type      MessageType
	Timestamp time.Time
}

// MessageHandler keeps messages in memory for an interactive view to render.
// Only the newest limit messages are kept.
type MessageHandler struct {
	mu       sync.RWMutex
	messages []Message
	limit    int
	now      func() time.Time
}

var _ ErrorHandler = (*MessageHandler)(nil)

// NewMessageHandler creates a handler keeping up to limit messages.
func NewMessageHandler(limit int) *MessageHandler {
	if limit <= 0 {
		limit = 1
	}
	return &MessageHandler{limit: limit, now: time.Now}
}

func (h *MessageHandler) Error(msg string)   { h.add(msg, MessageTypeError) }
func (h *MessageHandler) Warning(msg string) { h.add(msg, MessageTypeWarning) }
func (h *MessageHandler) Info(msg string)    { h.add(msg, MessageTypeInfo) }
func (h *MessageHandler) Success(msg string) { h.add(msg, MessageTypeSuccess) }

func (h *MessageHandler) add(text string, typ MessageType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, Message{Text: text, Type: typ, Timestamp: h.now()})
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append([]Message(nil), h.messages[over:]...)
	}
}

// Last returns the newest message.
func (h *MessageHandler) Last() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.messages) == 0 {
		return Message{}, false
	}
	return h.messages[len(h.messages)-1], true
}

// Messages returns a copy of the kept messages, oldest first.
func (h *MessageHandler) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Message(nil), h.messages...)
}

// Clear drops every message.
func (h *MessageHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
