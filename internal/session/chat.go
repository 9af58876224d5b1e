package session

// MessageLevel distinguishes user chat from system notices.
type MessageLevel int

const (
	LevelInformation MessageLevel = iota
	LevelSystem
	LevelWarning
)

// ChatMessage is one entry of the session chat log. System replics
// carry an empty sender.
type ChatMessage struct {
	Sender string
	Text   string
	Level  MessageLevel
}

// AddChat appends to the chat log.
func (s *Session) AddChat(sender, text string, level MessageLevel) {
	s.Chat = append(s.Chat, ChatMessage{Sender: sender, Text: text, Level: level})
}
