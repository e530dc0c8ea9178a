package chat

// BotAdapter is the surface the chat core consumes from the embedded
// turn-based card-game bot. Its internal game state machine is opaque
// here; the router only forwards commands and must tolerate the adapter
// being entirely unavailable.
type BotAdapter interface {
	// HandleCommand receives a raw sigil-prefixed command verbatim. The
	// adapter drives any broadcasts it wants to make itself.
	HandleCommand(roomID, rawCommand, userID, username string) error
	// IsActive reports whether a game is running in the room.
	IsActive(roomID string) bool
	// Status returns an opaque game status blob for display.
	Status(roomID string) any
}
