package bus

import (
	"context"
	"sync"
)

// MessageBus connects the transport to the router: the transport publishes
// inbound events and subscribes for outbound messages; the router consumes
// inbound events and publishes outbound messages. Both directions are
// buffered Go channels.
type MessageBus struct {
	inbound  chan InboundEvent
	outbound chan OutboundMessage
	subs     []func(OutboundMessage)
	mu       sync.RWMutex
}

// NewMessageBus creates a MessageBus with the given buffer size.
// If bufSize is 0 or negative, defaults to 100.
func NewMessageBus(bufSize int) *MessageBus {
	if bufSize <= 0 {
		bufSize = 100
	}
	return &MessageBus{
		inbound:  make(chan InboundEvent, bufSize),
		outbound: make(chan OutboundMessage, bufSize),
	}
}

// PublishInbound sends an inbound event onto the bus.
func (b *MessageBus) PublishInbound(ev InboundEvent) {
	b.inbound <- ev
}

// PublishOutbound sends an outbound message onto the bus.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	b.outbound <- msg
}

// ConsumeInbound blocks until an inbound event is available or ctx is cancelled.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundEvent, error) {
	select {
	case ev, ok := <-b.inbound:
		if !ok {
			return InboundEvent{}, context.Canceled
		}
		return ev, nil
	case <-ctx.Done():
		return InboundEvent{}, ctx.Err()
	}
}

// Subscribe registers fn to receive outbound messages.
func (b *MessageBus) Subscribe(fn func(OutboundMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// DispatchOutbound reads outbound messages and delivers them to all
// subscribers. Returns when ctx is cancelled or the outbound channel closes.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg, ok := <-b.outbound:
			if !ok {
				return
			}
			b.dispatch(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (b *MessageBus) dispatch(msg OutboundMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(msg)
	}
}

// Close closes both the inbound and outbound channels.
func (b *MessageBus) Close() {
	close(b.inbound)
	close(b.outbound)
}
