package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmedIDFromTempID(t *testing.T) {
	// the confirmed id is derived from the client temp id so the
	// client reconciles its optimistic message without a lookup table
	id := confirmedMessageID("temp_abc123", "alice", time.Now())
	assert.Equal(t, "abc123_confirmed", id)
}

func TestConfirmedIDGeneratedWithoutMarker(t *testing.T) {
	ts := time.Now()
	a := confirmedMessageID("", "alice", ts)
	b := confirmedMessageID("", "alice", ts)

	assert.Contains(t, a, "alice")
	// random suffix keeps concurrent senders from colliding
	assert.NotEqual(t, a, b)

	// an id the client made up without the marker is not trusted
	c := confirmedMessageID("my-own-id", "alice", ts)
	assert.True(t, strings.Contains(c, "alice"))
}

func TestIsPrivateRoom(t *testing.T) {
	assert.True(t, IsPrivateRoom("private_7_42"))
	assert.False(t, IsPrivateRoom("42"))
	assert.False(t, IsPrivateRoom("lobby"))
}

func TestParseClientFrameValidation(t *testing.T) {
	sm, _ := newTestSession(&fakeStore{}, nil)
	c := newTestClient(sm, "alice", "user", true)

	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"unknown event", `{"event":"fly-away"}`},
		{"join without room", `{"event":"join-room"}`},
		{"message without content", `{"event":"send-message","room_id":"1"}`},
		{"gift without payload", `{"event":"send-message","room_id":"1","type":"gift"}`},
		{"kick without target", `{"event":"kick-user","room_id":"1"}`},
		{"delete without id", `{"event":"delete-message","room_id":"1"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseClientFrame(c, []byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestParseClientFrameSendMessage(t *testing.T) {
	sm, _ := newTestSession(&fakeStore{}, nil)
	c := newTestClient(sm, "alice", "user", true)

	ev, err := parseClientFrame(c, []byte(`{"event":"send-message","room_id":"42","content":"hello","temp_id":"temp_x"}`))
	require.NoError(t, err)

	send, ok := ev.(sendMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "42", send.roomID)
	assert.Equal(t, "hello", send.content)
	assert.Equal(t, TypeMessage, send.msgType)
	assert.Equal(t, "temp_x", send.tempID)
}

func TestParseClientFrameGift(t *testing.T) {
	sm, _ := newTestSession(&fakeStore{}, nil)
	c := newTestClient(sm, "alice", "user", true)

	ev, err := parseClientFrame(c, []byte(`{"event":"send-message","room_id":"42","type":"gift","gift":{"id":9,"name":"rose","price":10}}`))
	require.NoError(t, err)

	send, ok := ev.(sendMessageEvent)
	require.True(t, ok)
	assert.Equal(t, TypeGift, send.msgType)
	require.NotNil(t, send.gift)
	assert.Equal(t, "rose", send.gift.Name)
}
