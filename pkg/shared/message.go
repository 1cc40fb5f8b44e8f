package shared

// MessageType identifies a websocket message.
type MessageType int

const (
	MessageTypeText    MessageType = 0  // screen output
	MessageTypeSession MessageType = 8  // session id handed to the browser
	MessageTypeKey     MessageType = 16 // typed characters
)

// Message is the JSON frame exchanged with the browser terminal.
type Message struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	SessionID string      `json:"sessionId,omitempty"`
}
