package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceJoinIsIdempotentUpsert(t *testing.T) {
	table := newPresenceTable()

	first := table.join("alice", "user")
	second := table.join("alice", "user")

	// rejoin returns the same record with a stable id, never a duplicate
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, table.size())
	assert.True(t, second.IsOnline)
}

func TestPresenceLeaveRetainsRecord(t *testing.T) {
	table := newPresenceTable()
	joined := table.join("alice", "user")

	left := table.leave("alice")
	require.NotNil(t, left)
	assert.False(t, left.IsOnline)

	// the record survives offline so member count includes it
	assert.Equal(t, 1, table.size())

	// rejoining flips back online and keeps the id
	rejoined := table.join("alice", "user")
	assert.Equal(t, joined.ID, rejoined.ID)
	assert.True(t, rejoined.IsOnline)
	assert.Equal(t, 1, table.size())
}

func TestPresenceKickRemovesRecord(t *testing.T) {
	table := newPresenceTable()
	table.join("alice", "user")
	table.join("bob", "user")

	removed := table.kick("bob")
	require.NotNil(t, removed)
	assert.Equal(t, 1, table.size())

	for _, p := range table.snapshot() {
		assert.NotEqual(t, "bob", p.Username)
	}
}

func TestPresenceLeaveUnknownUserIsNil(t *testing.T) {
	table := newPresenceTable()
	assert.Nil(t, table.leave("ghost"))
	assert.Nil(t, table.kick("ghost"))
	assert.Equal(t, 0, table.size())
}

func TestPresenceCountEqualsTableSize(t *testing.T) {
	table := newPresenceTable()

	// arbitrary join/leave sequence: the reported count always equals
	// the number of retained records, never a drifting counter
	table.join("alice", "user")
	table.join("bob", "user")
	table.leave("alice")
	table.join("carol", "user")
	table.leave("alice") // double leave
	table.join("alice", "user")

	assert.Equal(t, 3, table.size())
	assert.Len(t, table.snapshot(), table.size())
}
