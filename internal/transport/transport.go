package transport

// Message is one record exchanged with the game server. System
// messages carry protocol events in Text; the rest is chat.
type Message struct {
	Sender   string `json:"sender"`
	Text     string `json:"text"`
	IsSystem bool   `json:"isSystem"`
}

// Transport moves messages between the client and the server. Messages
// is closed when the connection dies; Send is safe to call from any
// goroutine.
type Transport interface {
	Messages() <-chan Message
	Send(opcode string, args ...string) error
	Close() error
}
