package models

// change feed event, broadcast over TCP as newline-delimited JSON
type ChangeEvent struct {
	Op         string `json:"op"` // add|set|update|delete|increment
	Collection string `json:"collection"`
	DocID      string `json:"doc_id"`
	Timestamp  int64  `json:"timestamp"`
}

// UDP notification payload
type Notification struct {
	Type      string `json:"type"` // "contact" | "guestbook" | "notice"
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// chat turn exchanged with /api/chat
type ChatMessage struct {
	Text  string `json:"text"`
	IsBot bool   `json:"is_bot"`
}

// frame pushed over /ws
type Frame struct {
	Type    string `json:"type"` // "snapshot" | "view" | "notice" | "error"
	Target  string `json:"target,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}
