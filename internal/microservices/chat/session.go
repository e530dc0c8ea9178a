package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// roomState is everything the session manager holds for one live room:
// the presence table, the fanout subscription set and the recorded
// mute flags. Owned exclusively by the event loop.
type roomState struct {
	id       string
	presence *presenceTable
	clients  map[string]*Client // connection id -> subscribed client
	muted    map[string]bool    // recorded by mute-user; not consulted on the send path
}

// SessionManager owns every room's in-memory state and processes all
// inbound events (join, leave, message, kick, mute, disconnect) one at
// a time, in arrival order, on a single goroutine. Presence mutations
// are race-free by construction; ordering across two users' concurrent
// actions is whatever order their events arrive in. Anything that does
// I/O (persistence, Redis mirroring) is dispatched off the loop.
type SessionManager struct {
	events      chan sessionEvent
	rooms       map[string]*roomState
	registry    *Registry
	broadcaster *Broadcaster
	router      *Router
	moderator   *Moderator
	sink        *MessageSink
	store       ChatMessageRepository
	mirror      *PresenceMirror
	logger      *slog.Logger
}

// NewSessionManager wires the chat core together. bot and mirror may be
// nil: a nil bot degrades commands to a visible system message, a nil
// mirror disables Redis presence mirroring.
func NewSessionManager(registry *Registry, store ChatMessageRepository, sink *MessageSink, bot BotAdapter, mirror *PresenceMirror) *SessionManager {
	broadcaster := NewBroadcaster()
	return &SessionManager{
		events:      make(chan sessionEvent, 512),
		rooms:       make(map[string]*roomState),
		registry:    registry,
		broadcaster: broadcaster,
		router:      NewRouter(bot, broadcaster, sink),
		moderator:   NewModerator(broadcaster),
		sink:        sink,
		store:       store,
		mirror:      mirror,
		logger:      slog.Default(),
	}
}

// Dispatch queues an event for the loop. The buffered channel is the
// single ordering point of the whole subsystem; when it fills, senders
// block (backpressure) rather than reordering or dropping events.
func (m *SessionManager) Dispatch(ev sessionEvent) {
	m.events <- ev
}

// Run processes events until ctx is cancelled. Everything that touches
// room state happens here and only here.
func (m *SessionManager) Run(ctx context.Context) {
	m.logger.Info("session_manager_started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session_manager_stopped")
			return
		case ev := <-m.events:
			m.handle(ev)
		}
	}
}

func (m *SessionManager) handle(ev sessionEvent) {
	switch e := ev.(type) {
	case joinRoomEvent:
		m.handleJoin(e)
	case leaveRoomEvent:
		m.handleLeave(e)
	case sendMessageEvent:
		m.handleSend(e)
	case kickUserEvent:
		m.handleKick(e)
	case muteUserEvent:
		m.handleMute(e)
	case deleteMessageEvent:
		m.handleDelete(e)
	case disconnectEvent:
		m.handleDisconnect(e)
	case snapshotRequest:
		m.handleSnapshot(e)
	}
}

// getOrCreateRoom: first join bootstraps the table. There is no
// "room does not exist" error at this layer - that check belongs to the
// room-metadata lookup collaborator.
func (m *SessionManager) getOrCreateRoom(roomID string) *roomState {
	if room, ok := m.rooms[roomID]; ok {
		return room
	}
	room := &roomState{
		id:       roomID,
		presence: newPresenceTable(),
		clients:  make(map[string]*Client),
		muted:    make(map[string]bool),
	}
	m.rooms[roomID] = room
	m.logger.Info("room_session_created", "room_id", roomID)
	return room
}

func (m *SessionManager) handleJoin(e joinRoomEvent) {
	room := m.getOrCreateRoom(e.roomID)
	username := e.client.Identity.Username

	participant := room.presence.join(username, e.client.Identity.Role)
	room.clients[e.client.ID] = e.client
	e.client.rooms[e.roomID] = true

	m.logger.Info("user_joined_room",
		"room_id", e.roomID,
		"username", username,
		"member_count", room.presence.size(),
	)

	joined := NewSystemMessage(e.roomID, fmt.Sprintf("%s joined the room", username))
	joined.Type = TypeJoin
	joined.Sender = username
	m.sweepDropped(room, m.broadcaster.Broadcast(room, EventUserJoined, joined))
	m.broadcastParticipants(room)

	m.mirror.MarkOnline(e.roomID, *participant)
}

func (m *SessionManager) handleLeave(e leaveRoomEvent) {
	room, ok := m.rooms[e.roomID]
	if !ok {
		return
	}
	username := e.client.Identity.Username

	room.presence.leave(username)
	delete(room.clients, e.client.ID)
	delete(e.client.rooms, e.roomID)

	left := NewSystemMessage(e.roomID, fmt.Sprintf("%s left the room", username))
	left.Type = TypeLeave
	left.Sender = username
	m.sweepDropped(room, m.broadcaster.Broadcast(room, EventUserLeft, left))
	m.broadcastParticipants(room)

	m.mirror.MarkOffline(e.roomID, username)
}

func (m *SessionManager) handleSend(e sendMessageEvent) {
	room := m.getOrCreateRoom(e.roomID)
	m.sweepDropped(room, m.router.Route(room, e))
}

func (m *SessionManager) handleKick(e kickUserEvent) {
	if !m.requireModerator(e.client, "kick-user") {
		return
	}
	room, ok := m.rooms[e.roomID]
	if !ok {
		return // nothing to kick; not an error
	}

	removed := m.moderator.Kick(room, e.targetUser, e.client.Identity.Username)
	if removed == nil {
		return // target already gone; no-op
	}

	// unsubscribe every connection of the kicked user after the
	// user-kicked broadcast so their own connection saw the event
	for id, c := range room.clients {
		if c.Identity.Username == e.targetUser {
			delete(room.clients, id)
			delete(c.rooms, e.roomID)
		}
	}
	m.broadcastParticipants(room)
	m.mirror.MarkOffline(e.roomID, e.targetUser)
}

func (m *SessionManager) handleMute(e muteUserEvent) {
	if !m.requireModerator(e.client, "mute-user") {
		return
	}
	room, ok := m.rooms[e.roomID]
	if !ok {
		return
	}
	m.moderator.Mute(room, e.targetUser, e.client.Identity.Username, e.action)
}

func (m *SessionManager) handleDelete(e deleteMessageEvent) {
	if !m.requireModerator(e.client, "delete-message") {
		return
	}
	room, ok := m.rooms[e.roomID]
	if !ok {
		return
	}

	m.sweepDropped(room, m.broadcaster.Broadcast(room, EventMessageDeleted, map[string]any{
		"room_id":    e.roomID,
		"message_id": e.messageID,
		"deleted_by": e.client.Identity.Username,
	}))

	// best-effort store delete, same contract as the sink: the
	// broadcast already happened and is never rolled back
	go func() {
		if err := m.store.DeleteByMessageID(context.Background(), e.roomID, e.messageID); err != nil {
			m.logger.Error("message_delete_failed",
				"room_id", e.roomID,
				"message_id", e.messageID,
				"error", err.Error(),
			)
		}
	}()
}

// handleDisconnect covers the implicit disconnect: no client message
// required, presence flips to offline in every subscribed room.
func (m *SessionManager) handleDisconnect(e disconnectEvent) {
	username := e.client.Identity.Username
	for roomID := range e.client.rooms {
		room, ok := m.rooms[roomID]
		if !ok {
			continue
		}
		room.presence.leave(username)
		delete(room.clients, e.client.ID)

		left := NewSystemMessage(roomID, fmt.Sprintf("%s went offline", username))
		left.Type = TypeLeave
		left.Sender = username
		m.sweepDropped(room, m.broadcaster.Broadcast(room, EventUserLeft, left))
		m.broadcastParticipants(room)

		m.mirror.MarkOffline(roomID, username)
	}
	e.client.rooms = make(map[string]bool)
	m.registry.RemoveConnection(e.client)
}

func (m *SessionManager) handleSnapshot(e snapshotRequest) {
	room, ok := m.rooms[e.roomID]
	if !ok {
		e.reply <- nil
		return
	}
	e.reply <- room.presence.snapshot()
}

// requireModerator gates moderation events on the acting identity.
// Failures go back to the actor only; the room never sees them.
func (m *SessionManager) requireModerator(c *Client, action string) bool {
	role := c.Identity.Role
	if role == "admin" || role == "manager" {
		return true
	}
	c.sendFrame(EventError, map[string]string{
		"error": fmt.Sprintf("%s requires a moderator role", action),
	})
	return false
}

// broadcastParticipants pushes the full presence snapshot. The member
// count is always the table size at read time - derived, never counted.
func (m *SessionManager) broadcastParticipants(room *roomState) {
	m.sweepDropped(room, m.broadcaster.Broadcast(room, EventParticipants, map[string]any{
		"room_id":      room.id,
		"member_count": room.presence.size(),
		"participants": room.presence.snapshot(),
	}))
}

// sweepDropped unsubscribes clients whose send buffers overflowed
// during a broadcast and closes their connections; the read pump then
// reports a normal disconnect which finishes the presence cleanup.
func (m *SessionManager) sweepDropped(room *roomState, dropped []*Client) {
	for _, c := range dropped {
		delete(room.clients, c.ID)
		delete(c.rooms, room.id)
		c.Close()
	}
}

// Snapshot returns the presence table of a room for display. Safe to
// call from any goroutine: the read goes through the event loop. An
// unknown room or a stalled loop yields an empty snapshot.
func (m *SessionManager) Snapshot(roomID string) []Participant {
	req := snapshotRequest{roomID: roomID, reply: make(chan []Participant, 1)}
	select {
	case m.events <- req:
	case <-time.After(time.Second):
		return nil
	}
	select {
	case ps := <-req.reply:
		return ps
	case <-time.After(time.Second):
		return nil
	}
}

// MemberCount reports the live member count of a room: the presence
// table size, by definition.
func (m *SessionManager) MemberCount(roomID string) int {
	return len(m.Snapshot(roomID))
}

// GameStatus reports whether the card-game bot has an active game in
// the room, plus its opaque status blob. With no adapter wired there is
// never a game.
func (m *SessionManager) GameStatus(roomID string) (bool, any) {
	bot := m.router.bot
	if bot == nil || !bot.IsActive(roomID) {
		return false, nil
	}
	return true, bot.Status(roomID)
}
