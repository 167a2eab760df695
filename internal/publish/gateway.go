// Package publish turns a post record into one outbound channel message.
package publish

import (
	"log/slog"

	"postbot/internal/bus"
	"postbot/internal/store"
)

// Gateway publishes posts to their destination channel via the message bus.
// The transport layer reports its own send failures; nothing here can abort
// the scheduling timeline or touch any other job.
type Gateway struct {
	bus *bus.MessageBus
}

// NewGateway creates a Gateway over the given bus.
func NewGateway(msgBus *bus.MessageBus) *Gateway {
	return &Gateway{bus: msgBus}
}

// Publish emits one outbound message for the post. An unknown content kind
// is logged and skipped.
func (g *Gateway) Publish(post store.Post) {
	switch post.Content.Kind {
	case store.KindText:
		g.bus.PublishOutbound(bus.OutboundMessage{
			ChatID: post.ChannelID,
			Text:   post.Content.Body,
		})
	case store.KindImage:
		g.bus.PublishOutbound(bus.OutboundMessage{
			ChatID:   post.ChannelID,
			PhotoRef: post.Content.MediaRef,
			Caption:  post.Content.Caption,
		})
	default:
		slog.Warn("unknown content kind in scheduled post", "id", post.ID, "kind", post.Content.Kind)
	}
}
