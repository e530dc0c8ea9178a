package chat

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Participant is one presence table entry: a (room, username) pair.
// The id is assigned at first join and stays stable for the room's
// in-memory lifetime, so a reconnecting user resumes the same identity.
type Participant struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	IsOnline bool      `json:"is_online"`
	JoinedAt time.Time `json:"joined_at"`
	LastSeen time.Time `json:"last_seen"`
}

// presenceTable is the per-room mapping username -> participant state.
// It is owned exclusively by the session manager's event loop; every
// access happens on that one goroutine, so no locking is needed here.
type presenceTable struct {
	participants map[string]*Participant
}

func newPresenceTable() *presenceTable {
	return &presenceTable{
		participants: make(map[string]*Participant),
	}
}

// join is an idempotent upsert: a rejoin flips the existing record back
// online and refreshes last_seen instead of creating a duplicate.
func (t *presenceTable) join(username, role string) *Participant {
	now := time.Now().UTC()
	if p, ok := t.participants[username]; ok {
		p.IsOnline = true
		p.LastSeen = now
		if role != "" {
			p.Role = role
		}
		return p
	}
	p := &Participant{
		ID:       uuid.NewString(),
		Username: username,
		Role:     role,
		IsOnline: true,
		JoinedAt: now,
		LastSeen: now,
	}
	t.participants[username] = p
	return p
}

// leave keeps the record so the member history (and the participant id)
// survives for the room's in-memory lifetime.
func (t *presenceTable) leave(username string) *Participant {
	p, ok := t.participants[username]
	if !ok {
		return nil
	}
	p.IsOnline = false
	p.LastSeen = time.Now().UTC()
	return p
}

// kick removes the record entirely.
func (t *presenceTable) kick(username string) *Participant {
	p, ok := t.participants[username]
	if !ok {
		return nil
	}
	delete(t.participants, username)
	return p
}

// size is the member count reported to clients. Always the table size,
// never an incrementing counter that could drift on missed leaves.
func (t *presenceTable) size() int {
	return len(t.participants)
}

// snapshot returns the table ordered by join time for stable display.
func (t *presenceTable) snapshot() []Participant {
	out := make([]Participant, 0, len(t.participants))
	for _, p := range t.participants {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}
