package model

// ChatSender tags who produced a chat turn.
type ChatSender string

const (
	SenderUser      ChatSender = "user"
	SenderAssistant ChatSender = "assistant"
)

// ChatTurn is one entry in the conversational transcript. The transcript is
// append-only and never truncated for the lifetime of the session.
type ChatTurn struct {
	Sender ChatSender
	Text   string
}

// ChatReply is the assistant's answer to a chat turn. A non-empty
// Recommendations list replaces the authoritative movie list.
type ChatReply struct {
	Message         string  `json:"message"`
	Recommendations []Movie `json:"recommendations"`
}
