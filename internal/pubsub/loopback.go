package pubsub

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

var _ PubSubClient = (*Loopback)(nil)

// NewLoopback returns a client that needs no broker. It is used when no
// cloud project is configured.
func NewLoopback() *Loopback {
	return &Loopback{handlers: make(map[EventType]Handler)}
}

// Subscribe sets the handler for topic, replacing any previous one.
func (l *Loopback) Subscribe(topic EventType, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[topic] = h
}

// SendMessage encodes data exactly as the cloud client would and hands it
// to the topic's handler before returning. A topic without a handler drops
// the message.
func (l *Loopback) SendMessage(ctx context.Context, topic EventType, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	l.mu.RLock()
	h, ok := l.handlers[topic]
	l.mu.RUnlock()
	if !ok {
		log.Debug("No subscriber for topic, dropping message", "topic", topic)
		return nil
	}
	if err := h(ctx, payload); err != nil {
		return fmt.Errorf("deliver %s: %w", topic, err)
	}
	log.Info("SendMessage", "topic", topic, "transport", "loopback")
	return nil
}

func (l *Loopback) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}
