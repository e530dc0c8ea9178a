package chat

import (
	"fmt"
	"log/slog"
	"time"
)

// Moderator applies kick and mute actions to a room. Runs on the
// session loop; the session manager handles the subscription cleanup
// and participant rebroadcast afterwards.
type Moderator struct {
	broadcaster *Broadcaster
	logger      *slog.Logger
}

func NewModerator(broadcaster *Broadcaster) *Moderator {
	return &Moderator{
		broadcaster: broadcaster,
		logger:      slog.Default(),
	}
}

// Kick removes the target from the presence table and notifies the
// room with one system message and one dedicated user-kicked event,
// both delivered while the target is still subscribed so their own
// connection sees the kick. An absent target is a no-op, not an error -
// the user may have already left.
func (mod *Moderator) Kick(room *roomState, targetUser, actingUser string) *Participant {
	removed := room.presence.kick(targetUser)
	if removed == nil {
		mod.logger.Debug("kick_target_absent",
			"room_id", room.id,
			"target", targetUser,
		)
		return nil
	}

	mod.logger.Info("user_kicked",
		"room_id", room.id,
		"target", targetUser,
		"by", actingUser,
		"member_count", room.presence.size(),
	)

	notice := NewSystemMessage(room.id, fmt.Sprintf("%s was kicked by %s", targetUser, actingUser))
	mod.broadcaster.Broadcast(room, EventNewMessage, notice)
	mod.broadcaster.Broadcast(room, EventUserKicked, map[string]any{
		"room_id":     room.id,
		"kicked_user": targetUser,
		"kicked_by":   actingUser,
		"timestamp":   time.Now().UTC(),
	})
	return removed
}

// Mute records the flag and notifies the room; presence membership is
// untouched. Nothing in the send path consults the flag - whether a
// muted user's messages should actually be suppressed is still an open
// product question, so the router does not guess.
func (mod *Moderator) Mute(room *roomState, targetUser, actingUser, action string) {
	muted := action != "unmute"
	room.muted[targetUser] = muted

	verb := "muted"
	if !muted {
		verb = "unmuted"
	}

	mod.logger.Info("user_mute_changed",
		"room_id", room.id,
		"target", targetUser,
		"by", actingUser,
		"action", action,
	)

	notice := NewSystemMessage(room.id, fmt.Sprintf("%s was %s by %s", targetUser, verb, actingUser))
	mod.broadcaster.Broadcast(room, EventNewMessage, notice)
	mod.broadcaster.Broadcast(room, EventUserMuted, map[string]any{
		"room_id":    room.id,
		"muted_user": targetUser,
		"muted_by":   actingUser,
		"action":     action,
		"timestamp":  time.Now().UTC(),
	})
}
