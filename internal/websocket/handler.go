package websocket

import (
	"encoding/json"

	"github.com/gofiber/websocket/v2"
)

// Outbound frame types
const (
	FrameTyping  = "typing"
	FrameMessage = "message"
	FrameError   = "error"
)

type Frame struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func EncodeFrame(f Frame) []byte {
	data, err := json.Marshal(f)
	if err != nil {
		data, _ = json.Marshal(Frame{Type: FrameError, Error: "unencodable frame"})
	}
	return data
}

// ServeWs attaches a connection to a session and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID, userID string, onMessage MessageHandler) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		SessionID: sessionID,
		UserID:    userID,
		Send:      make(chan []byte, 256),
		onMessage: onMessage,
	}
	client.Hub.Register(client)

	go client.writePump()
	client.readPump()
}
