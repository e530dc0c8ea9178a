package chat

import (
	"log/slog"
)

// Broadcaster delivers one logical event to every connection currently
// subscribed to a room, synchronously with respect to the call. Because
// it only runs on the session loop and each client send channel is
// FIFO, delivery order matches invocation order for this process
// instance; no cross-instance ordering is promised.
type Broadcaster struct {
	logger *slog.Logger
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{logger: slog.Default()}
}

// Broadcast marshals once and fans the frame out to every subscriber.
// A client whose send buffer is full is returned as dropped; the
// session loop unsubscribes it after the sweep - fanout never blocks
// and an in-flight broadcast is never cancelled.
func (b *Broadcaster) Broadcast(room *roomState, event string, data any) []*Client {
	payload, err := marshalFrame(event, data)
	if err != nil {
		b.logger.Error("failed_to_marshal_broadcast",
			"room_id", room.id,
			"event", event,
			"error", err.Error(),
		)
		return nil
	}

	var dropped []*Client
	for _, client := range room.clients {
		if !client.enqueue(payload) {
			b.logger.Warn("send_buffer_full_dropping_client",
				"room_id", room.id,
				"client_id", client.ID,
			)
			dropped = append(dropped, client)
		}
	}
	return dropped
}

// BroadcastMessage sends a chat message as a new-message event. Gift
// messages additionally trigger a gift-animation event alongside the
// message broadcast, not instead of it.
func (b *Broadcaster) BroadcastMessage(room *roomState, msg *Message) []*Client {
	dropped := b.Broadcast(room, EventNewMessage, msg)
	if msg.Type == TypeGift && msg.Gift != nil {
		more := b.Broadcast(room, EventGiftAnimation, map[string]any{
			"room_id": msg.RoomID,
			"sender":  msg.Sender,
			"gift":    msg.Gift,
		})
		dropped = append(dropped, more...)
	}
	return dropped
}
