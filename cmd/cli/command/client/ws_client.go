package client

// ws_client.go = handles WebSocket client functionality for the chathubCLI application.

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

// JoinChatRoom connects to the chat server, joins the room and runs an
// interactive send/receive loop until interrupted or /quit.
func JoinChatRoom(apiURL, roomID, token string) error {
	base, err := url.Parse(apiURL)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}

	// Build WebSocket URL
	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     base.Host,
		Path:     "/ws/chat",
		RawQuery: url.Values{"token": {token}}.Encode(),
	}

	fmt.Printf("\n🔌 Connecting to chat room %s...\n", roomID)
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	fmt.Printf("✅ Connected! Type your messages (or /quit to exit)\n\n")

	// Send join-room event
	joinMsg := map[string]any{
		"event":   "join-room",
		"room_id": roomID,
	}
	if err := conn.WriteJSON(joinMsg); err != nil {
		return err
	}

	// Channel for interrupt signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Goroutine to receive messages
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var frame struct {
				Event string         `json:"event"`
				Data  map[string]any `json:"data"`
			}
			if err := conn.ReadJSON(&frame); err != nil {
				log.Println("Read error:", err)
				return
			}
			PrintFrame(frame.Event, frame.Data)
		}
	}()

	// Goroutine to send messages
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			text := scanner.Text()
			if text == "/quit" {
				interrupt <- os.Interrupt
				return
			}

			chatMsg := map[string]any{
				"event":   "send-message",
				"room_id": roomID,
				"content": text,
				"type":    "message",
			}
			if err := conn.WriteJSON(chatMsg); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}()

	// Wait for interrupt
	<-interrupt
	log.Println("Closing connection...")

	// Send leave-room event before closing
	leaveMsg := map[string]any{
		"event":   "leave-room",
		"room_id": roomID,
	}
	conn.WriteJSON(leaveMsg)

	return nil
}

// PrintFrame pretty prints one server frame
func PrintFrame(event string, data map[string]any) {
	switch event {
	case "new-message":
		msgType, _ := data["type"].(string)
		sender, _ := data["sender"].(string)
		content, _ := data["content"].(string)
		switch msgType {
		case "system":
			color.Yellow("🔔 %s", content)
		case "gift":
			color.Magenta("🎁 [%s] sent a gift: %s", sender, content)
		default:
			color.Cyan("[%s] %s", sender, content)
		}

	case "user-joined":
		sender, _ := data["sender"].(string)
		color.Green("→ %s joined", sender)

	case "user-left":
		sender, _ := data["sender"].(string)
		color.HiBlack("← %s left", sender)

	case "participants-updated":
		count, _ := data["member_count"].(float64)
		color.HiBlack("👥 %d member(s) in room", int(count))

	case "user-kicked":
		target, _ := data["kicked_user"].(string)
		by, _ := data["kicked_by"].(string)
		color.Red("⛔ %s was kicked by %s", target, by)

	case "user-muted":
		target, _ := data["muted_user"].(string)
		action, _ := data["action"].(string)
		color.Red("🔇 %s: %s", action, target)

	case "gift-animation":
		pretty, _ := json.Marshal(data["gift"])
		color.Magenta("✨ gift animation: %s", strings.TrimSpace(string(pretty)))

	case "error":
		msg, _ := data["error"].(string)
		color.Red("⚠ %s", msg)
	}
}
