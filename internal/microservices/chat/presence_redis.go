package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceMirror keeps a best-effort copy of each room's online users
// in a Redis hash so external services (feed, profile) can read
// presence without touching the in-process table. The in-memory
// presence table stays the source of truth; mirror failures are logged
// and ignored. A nil mirror disables mirroring.
type PresenceMirror struct {
	rdb    *redis.Client
	logger *slog.Logger
}

const presenceMirrorTTL = 24 * time.Hour

func NewPresenceMirror(rdb *redis.Client) *PresenceMirror {
	return &PresenceMirror{
		rdb:    rdb,
		logger: slog.Default(),
	}
}

func presenceKey(roomID string) string {
	return fmt.Sprintf("chat:room:%s:online_users", roomID)
}

// MarkOnline mirrors a participant into the room's online hash.
// Runs off the event loop; the loop never waits on Redis.
func (m *PresenceMirror) MarkOnline(roomID string, p Participant) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		data, err := json.Marshal(map[string]any{
			"id":       p.ID,
			"username": p.Username,
			"role":     p.Role,
		})
		if err != nil {
			m.logger.Error("presence_mirror_marshal_failed", "error", err.Error())
			return
		}

		key := presenceKey(roomID)
		if err := m.rdb.HSet(ctx, key, p.Username, data).Err(); err != nil {
			m.logger.Warn("presence_mirror_set_failed",
				"room_id", roomID,
				"username", p.Username,
				"error", err.Error(),
			)
			return
		}
		m.rdb.Expire(ctx, key, presenceMirrorTTL)
	}()
}

// MarkOffline removes a participant from the room's online hash.
func (m *PresenceMirror) MarkOffline(roomID, username string) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := m.rdb.HDel(ctx, presenceKey(roomID), username).Err(); err != nil {
			m.logger.Warn("presence_mirror_del_failed",
				"room_id", roomID,
				"username", username,
				"error", err.Error(),
			)
		}
	}()
}
