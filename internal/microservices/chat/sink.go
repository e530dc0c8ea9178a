package chat

import (
	"context"
	"log/slog"
	"sync/atomic"

	"chathub/internal/microservices/http-api/models"
)

// MessageSink persists confirmed messages without ever blocking fanout.
// Submissions go into a buffered channel drained by one background
// worker; a write failure is logged and dropped, never retried inline
// and never surfaced to the sender. Durability is best-effort: a crash
// loses whatever is still queued (at most the channel capacity).
type MessageSink struct {
	store   ChatMessageRepository
	writeCh chan *Message
	logger  *slog.Logger
	closed  atomic.Bool
}

func NewMessageSink(store ChatMessageRepository, buffer int) *MessageSink {
	if buffer <= 0 {
		buffer = 1024
	}
	return &MessageSink{
		store:   store,
		writeCh: make(chan *Message, buffer),
		logger:  slog.Default(),
	}
}

// Submit queues a message for durable storage. Only message and gift
// types are durable; everything else is silently skipped. When the
// queue is full the message is dropped with a log line - the send path
// must never block on storage.
func (s *MessageSink) Submit(msg *Message) {
	if s.closed.Load() {
		return
	}
	if msg.Type != TypeMessage && msg.Type != TypeGift {
		return
	}

	queueDepth := len(s.writeCh)
	if queueDepth > cap(s.writeCh)/2 {
		s.logger.Warn("sink_queue_high_watermark",
			"queue_depth", queueDepth,
		)
	}

	select {
	case s.writeCh <- msg:
		// queued
	default:
		s.logger.Error("sink_queue_full_message_dropped",
			"room_id", msg.RoomID,
			"message_id", msg.ID,
		)
	}
}

// Run drains the queue until ctx is cancelled, then flushes whatever is
// still buffered. Writes use a background context on purpose: a slow
// store finishes whenever it finishes, it is never timed out or retried.
func (s *MessageSink) Run(ctx context.Context) {
	s.logger.Info("message_sink_started", "buffer", cap(s.writeCh))
	for {
		select {
		case <-ctx.Done():
			s.closed.Store(true)
			s.drain()
			return
		case msg := <-s.writeCh:
			s.persist(msg)
		}
	}
}

func (s *MessageSink) drain() {
	remaining := len(s.writeCh)
	if remaining > 0 {
		s.logger.Info("message_sink_flushing", "remaining", remaining)
	}
	for {
		select {
		case msg := <-s.writeCh:
			s.persist(msg)
		default:
			return
		}
	}
}

func (s *MessageSink) persist(msg *Message) {
	record := &models.ChatMessage{
		MessageID: msg.ID,
		RoomID:    msg.RoomID,
		UserID:    msg.SenderID,
		UserName:  msg.Sender,
		Content:   msg.Content,
		Type:      string(msg.Type),
		IsPrivate: msg.IsPrivate,
		CreatedAt: msg.Timestamp,
	}
	if msg.Gift != nil {
		record.GiftName = msg.Gift.Name
		record.GiftIcon = msg.Gift.Icon
		record.GiftPrice = msg.Gift.Price
	}

	if err := s.store.Insert(context.Background(), record); err != nil {
		// the message was already delivered live; history just lost it
		s.logger.Error("persist_failed",
			"room_id", msg.RoomID,
			"message_id", msg.ID,
			"error", err.Error(),
		)
	}
}
