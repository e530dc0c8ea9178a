package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotCommandNeverBroadcastAsChat(t *testing.T) {
	bot := &fakeBot{}
	sm, sink := newTestSession(&fakeStore{}, bot)
	alice := newTestClient(sm, "alice", "user", true)
	bob := newTestClient(sm, "bob", "user", true)

	sm.handle(joinRoomEvent{client: alice, roomID: "7"})
	sm.handle(joinRoomEvent{client: bob, roomID: "7"})
	drainFrames(t, alice)
	drainFrames(t, bob)

	sm.handle(sendMessageEvent{client: alice, roomID: "7", content: "!draw", msgType: TypeMessage})

	// the adapter got the raw command, verbatim
	assert.Equal(t, []string{"!draw"}, bot.received())

	// nobody saw it as chat and nothing was queued for persistence
	assert.Empty(t, framesFor(drainFrames(t, alice), EventNewMessage))
	assert.Empty(t, framesFor(drainFrames(t, bob), EventNewMessage))
	assert.Equal(t, 0, len(sink.writeCh))
}

// !draw with no bot adapter: one visible system
// message, nothing persisted, nothing crashes.
func TestBotCommandWithNoAdapter(t *testing.T) {
	sm, sink := newTestSession(&fakeStore{}, nil)
	alice := newTestClient(sm, "alice", "user", true)
	sm.handle(joinRoomEvent{client: alice, roomID: "7"})
	drainFrames(t, alice)

	sm.handle(sendMessageEvent{client: alice, roomID: "7", content: "!draw", msgType: TypeMessage})

	msgs := framesFor(drainFrames(t, alice), EventNewMessage)
	require.Len(t, msgs, 1)
	got := decodeMessage(t, msgs[0])
	assert.Equal(t, TypeSystem, got.Type)
	assert.Contains(t, got.Content, "unavailable")
	assert.Equal(t, 0, len(sink.writeCh))
}

func TestInstallTriggerExactMatchOnly(t *testing.T) {
	bot := &fakeBot{}
	sm, sink := newTestSession(&fakeStore{}, bot)
	alice := newTestClient(sm, "alice", "user", true)
	sm.handle(joinRoomEvent{client: alice, roomID: "7"})
	drainFrames(t, alice)

	sm.handle(sendMessageEvent{client: alice, roomID: "7", content: BotInstallTrigger, msgType: TypeMessage})

	// the adapter received the init pseudo-command and the room got
	// exactly one system acknowledgment
	assert.Equal(t, []string{botInitCommand}, bot.received())
	msgs := framesFor(drainFrames(t, alice), EventNewMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeSystem, decodeMessage(t, msgs[0]).Type)
	assert.Equal(t, 0, len(sink.writeCh))

	// anything other than the exact phrase is ordinary chat
	sm.handle(sendMessageEvent{client: alice, roomID: "7", content: "install bot please", msgType: TypeMessage})
	msgs = framesFor(drainFrames(t, alice), EventNewMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeMessage, decodeMessage(t, msgs[0]).Type)
	assert.Equal(t, 1, len(sink.writeCh))
}

func TestTempIDReconciliation(t *testing.T) {
	sm, _ := newTestSession(&fakeStore{}, nil)
	alice := newTestClient(sm, "alice", "user", true)
	sm.handle(joinRoomEvent{client: alice, roomID: "7"})
	drainFrames(t, alice)

	sm.handle(sendMessageEvent{client: alice, roomID: "7", content: "hi", msgType: TypeMessage, tempID: "temp_xyz"})

	msgs := framesFor(drainFrames(t, alice), EventNewMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, "xyz_confirmed", decodeMessage(t, msgs[0]).ID)
}

func TestGiftTriggersAnimationAlongsideMessage(t *testing.T) {
	sm, sink := newTestSession(&fakeStore{}, nil)
	alice := newTestClient(sm, "alice", "user", true)
	bob := newTestClient(sm, "bob", "user", true)
	sm.handle(joinRoomEvent{client: alice, roomID: "7"})
	sm.handle(joinRoomEvent{client: bob, roomID: "7"})
	drainFrames(t, alice)
	drainFrames(t, bob)

	gift := &Gift{ID: 3, Name: "rose", Price: 5}
	sm.handle(sendMessageEvent{client: alice, roomID: "7", content: "a rose for you", msgType: TypeGift, gift: gift})

	frames := drainFrames(t, bob)
	// the animation event is carried alongside the message, not instead
	require.Len(t, framesFor(frames, EventNewMessage), 1)
	require.Len(t, framesFor(frames, EventGiftAnimation), 1)

	// gifts are durable
	assert.Equal(t, 1, len(sink.writeCh))
}

func TestFailingBotDegradesToSystemMessage(t *testing.T) {
	bot := &fakeBot{err: assert.AnError}
	sm, _ := newTestSession(&fakeStore{}, bot)
	alice := newTestClient(sm, "alice", "user", true)
	sm.handle(joinRoomEvent{client: alice, roomID: "7"})
	drainFrames(t, alice)

	sm.handle(sendMessageEvent{client: alice, roomID: "7", content: "!deal", msgType: TypeMessage})

	msgs := framesFor(drainFrames(t, alice), EventNewMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeSystem, decodeMessage(t, msgs[0]).Type)
}

func TestGameStatusReflectsAdapter(t *testing.T) {
	bot := &fakeBot{active: true}
	sm, _ := newTestSession(&fakeStore{}, bot)

	active, _ := sm.GameStatus("7")
	assert.True(t, active)

	smNone, _ := newTestSession(&fakeStore{}, nil)
	active, status := smNone.GameStatus("7")
	assert.False(t, active)
	assert.Nil(t, status)
}
