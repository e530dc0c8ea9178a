package chat

import (
	"log/slog"
	"strings"
	"time"
)

// Message classification grammar.
// BotInstallTrigger is matched exactly against the raw content;
// BotSigil is a prefix match on the first character. Classification
// looks at nothing but the raw content, so a user whose literal text
// starts with the sigil cannot send it as plain chat. Known and
// accepted limitation.
const (
	BotInstallTrigger = "install bot"
	BotSigil          = "!"
	botInitCommand    = "!install"
)

// Router classifies each inbound chat event, in strict precedence
// order: install trigger, bot command, ordinary message. Bot-classified
// input is never also broadcast as chat and never persisted.
type Router struct {
	bot         BotAdapter
	broadcaster *Broadcaster
	sink        *MessageSink
	logger      *slog.Logger
}

func NewRouter(bot BotAdapter, broadcaster *Broadcaster, sink *MessageSink) *Router {
	return &Router{
		bot:         bot,
		broadcaster: broadcaster,
		sink:        sink,
		logger:      slog.Default(),
	}
}

// Route runs on the session loop. Returns clients dropped during any
// broadcast it performed, for the loop to sweep.
func (r *Router) Route(room *roomState, e sendMessageEvent) []*Client {
	if !e.client.Identity.Authenticated {
		e.client.sendFrame(EventError, map[string]string{
			"error": "sign in to send messages",
		})
		return nil
	}

	// 1. exact install trigger
	if e.content == BotInstallTrigger {
		return r.installBot(room, e)
	}

	// 2. bot command sigil
	if strings.HasPrefix(e.content, BotSigil) {
		return r.forwardToBot(room, e)
	}

	// 3. ordinary message path
	return r.relay(room, e)
}

func (r *Router) installBot(room *roomState, e sendMessageEvent) []*Client {
	if r.bot == nil {
		return r.botUnavailable(room)
	}
	if err := r.bot.HandleCommand(room.id, botInitCommand, e.client.Identity.UserID, e.client.Identity.Username); err != nil {
		r.logger.Warn("bot_install_failed",
			"room_id", room.id,
			"error", err.Error(),
		)
		return r.botUnavailable(room)
	}
	// one system acknowledgment, then stop - no fall-through to relay
	ack := NewSystemMessage(room.id, "Card game bot installed. Commands start with "+BotSigil)
	return r.broadcaster.Broadcast(room, EventNewMessage, ack)
}

func (r *Router) forwardToBot(room *roomState, e sendMessageEvent) []*Client {
	if r.bot == nil {
		return r.botUnavailable(room)
	}
	// forwarded verbatim; the adapter drives any broadcasts itself and
	// the router takes no further action
	if err := r.bot.HandleCommand(room.id, e.content, e.client.Identity.UserID, e.client.Identity.Username); err != nil {
		r.logger.Warn("bot_command_failed",
			"room_id", room.id,
			"command", e.content,
			"error", err.Error(),
		)
		return r.botUnavailable(room)
	}
	return nil
}

// botUnavailable reports adapter failure to the room as a visible
// system message; it is never an error to the caller and never fatal.
func (r *Router) botUnavailable(room *roomState) []*Client {
	msg := NewSystemMessage(room.id, "The game bot is unavailable right now")
	return r.broadcaster.Broadcast(room, EventNewMessage, msg)
}

// relay is the ordinary path: assign an id, stamp sender identity,
// broadcast immediately, then queue async persistence. Delivery never
// waits on - and is never rolled back by - the durable write.
func (r *Router) relay(room *roomState, e sendMessageEvent) []*Client {
	now := time.Now().UTC()
	msg := &Message{
		ID:        confirmedMessageID(e.tempID, e.client.Identity.Username, now),
		RoomID:    room.id,
		Sender:    e.client.Identity.Username,
		SenderID:  e.client.Identity.UserID,
		Role:      e.client.Identity.Role,
		Level:     e.client.Identity.Level,
		Content:   e.content,
		Type:      e.msgType,
		Gift:      e.gift,
		Timestamp: now,
		IsPrivate: IsPrivateRoom(room.id),
	}

	dropped := r.broadcaster.BroadcastMessage(room, msg)
	r.sink.Submit(msg)
	return dropped
}
