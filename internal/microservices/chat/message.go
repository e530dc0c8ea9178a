package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wire protocol definitions

// MessageType discriminates what a room message is.
// Only TypeMessage and TypeGift are durable; the rest are ephemeral
// presence/moderation notifications that live only on the wire.
type MessageType string

const (
	TypeMessage MessageType = "message"
	TypeGift    MessageType = "gift"
	TypeSystem  MessageType = "system"
	TypeJoin    MessageType = "join"
	TypeLeave   MessageType = "leave"
	TypeKick    MessageType = "kick"
	TypeMute    MessageType = "mute"
)

// Outbound event names pushed to clients
const (
	EventNewMessage     = "new-message"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventParticipants   = "participants-updated"
	EventUserKicked     = "user-kicked"
	EventUserMuted      = "user-muted"
	EventGiftAnimation  = "gift-animation"
	EventMessageDeleted = "message-deleted"
	EventError          = "error"
)

// Inbound event names accepted from clients
const (
	eventJoinRoom      = "join-room"
	eventLeaveRoom     = "leave-room"
	eventSendMessage   = "send-message"
	eventKickUser      = "kick-user"
	eventMuteUser      = "mute-user"
	eventDeleteMessage = "delete-message"
)

// Gift payload carried by gift-type messages
type Gift struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Price int    `json:"price,omitempty"`
}

// Message is one room event as delivered to clients.
type Message struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"room_id"`
	Sender    string      `json:"sender"`
	SenderID  string      `json:"sender_id,omitempty"`
	Role      string      `json:"role,omitempty"`
	Level     int         `json:"level,omitempty"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Gift      *Gift       `json:"gift,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	IsPrivate bool        `json:"is_private,omitempty"`
}

// Frame is the outbound envelope: event name + payload.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func marshalFrame(event string, data any) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: data})
}

// clientFrame is the raw inbound shape. It is validated at the boundary
// and converted into one of the typed session events below before it
// ever reaches the router.
type clientFrame struct {
	Event      string `json:"event"`
	RoomID     string `json:"room_id"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	Gift       *Gift  `json:"gift"`
	TempID     string `json:"temp_id"`
	TargetUser string `json:"target_user"`
	Action     string `json:"action"`     // mute | unmute
	MessageID  string `json:"message_id"` // delete-message target
}

// sessionEvent is the tagged union of everything the single event loop
// processes, in arrival order.
type sessionEvent interface {
	isSessionEvent()
}

type joinRoomEvent struct {
	client *Client
	roomID string
}

type leaveRoomEvent struct {
	client *Client
	roomID string
}

type sendMessageEvent struct {
	client  *Client
	roomID  string
	content string
	msgType MessageType
	gift    *Gift
	tempID  string
}

type kickUserEvent struct {
	client     *Client
	roomID     string
	targetUser string
}

type muteUserEvent struct {
	client     *Client
	roomID     string
	targetUser string
	action     string
}

type deleteMessageEvent struct {
	client    *Client
	roomID    string
	messageID string
}

type disconnectEvent struct {
	client *Client
}

// snapshotRequest lets HTTP handlers read presence state without
// touching it off the event loop; the reply channel is buffered so the
// loop never blocks on a slow reader.
type snapshotRequest struct {
	roomID string
	reply  chan []Participant
}

func (joinRoomEvent) isSessionEvent()      {}
func (leaveRoomEvent) isSessionEvent()     {}
func (sendMessageEvent) isSessionEvent()   {}
func (kickUserEvent) isSessionEvent()      {}
func (muteUserEvent) isSessionEvent()      {}
func (deleteMessageEvent) isSessionEvent() {}
func (disconnectEvent) isSessionEvent()    {}
func (snapshotRequest) isSessionEvent()    {}

// parseClientFrame validates a raw inbound frame and converts it to a
// typed session event. Unknown or malformed frames return an error that
// the read pump reports back to the sender only.
func parseClientFrame(c *Client, raw []byte) (sessionEvent, error) {
	var f clientFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	switch f.Event {
	case eventJoinRoom:
		if f.RoomID == "" {
			return nil, fmt.Errorf("join-room: room_id is required")
		}
		return joinRoomEvent{client: c, roomID: f.RoomID}, nil

	case eventLeaveRoom:
		if f.RoomID == "" {
			return nil, fmt.Errorf("leave-room: room_id is required")
		}
		return leaveRoomEvent{client: c, roomID: f.RoomID}, nil

	case eventSendMessage:
		if f.RoomID == "" {
			return nil, fmt.Errorf("send-message: room_id is required")
		}
		msgType := TypeMessage
		if f.Type == string(TypeGift) {
			if f.Gift == nil {
				return nil, fmt.Errorf("send-message: gift payload is required for gift type")
			}
			msgType = TypeGift
		}
		if msgType == TypeMessage && f.Content == "" {
			return nil, fmt.Errorf("send-message: content is required")
		}
		return sendMessageEvent{
			client:  c,
			roomID:  f.RoomID,
			content: f.Content,
			msgType: msgType,
			gift:    f.Gift,
			tempID:  f.TempID,
		}, nil

	case eventKickUser:
		if f.RoomID == "" || f.TargetUser == "" {
			return nil, fmt.Errorf("kick-user: room_id and target_user are required")
		}
		return kickUserEvent{client: c, roomID: f.RoomID, targetUser: f.TargetUser}, nil

	case eventMuteUser:
		if f.RoomID == "" || f.TargetUser == "" {
			return nil, fmt.Errorf("mute-user: room_id and target_user are required")
		}
		action := f.Action
		if action != "unmute" {
			action = "mute"
		}
		return muteUserEvent{client: c, roomID: f.RoomID, targetUser: f.TargetUser, action: action}, nil

	case eventDeleteMessage:
		if f.RoomID == "" || f.MessageID == "" {
			return nil, fmt.Errorf("delete-message: room_id and message_id are required")
		}
		return deleteMessageEvent{client: c, roomID: f.RoomID, messageID: f.MessageID}, nil

	default:
		return nil, fmt.Errorf("unknown event %q", f.Event)
	}
}

// Message id scheme.
// A client may attach a temp_-prefixed id for optimistic UI; the
// confirmed id is derived from it so the client can reconcile without a
// lookup table. Otherwise ids are timestamp+sender+random suffix -
// collision-tolerant, not collision-free.
const (
	tempIDMarker  = "temp_"
	confirmSuffix = "_confirmed"
)

func confirmedMessageID(tempID, sender string, ts time.Time) string {
	if tempID != "" && strings.HasPrefix(tempID, tempIDMarker) {
		return strings.TrimPrefix(tempID, tempIDMarker) + confirmSuffix
	}
	return fmt.Sprintf("%d_%s_%s", ts.UnixMilli(), sender, uuid.NewString()[:8])
}

// IsPrivateRoom reports whether roomID is a private_<a>_<b> 1:1 room.
func IsPrivateRoom(roomID string) bool {
	return strings.HasPrefix(roomID, "private_")
}

// NewSystemMessage builds a system notification for a room.
func NewSystemMessage(roomID, content string) *Message {
	now := time.Now().UTC()
	return &Message{
		ID:        confirmedMessageID("", "system", now),
		RoomID:    roomID,
		Sender:    "System",
		Content:   content,
		Type:      TypeSystem,
		Timestamp: now,
		IsPrivate: IsPrivateRoom(roomID),
	}
}
