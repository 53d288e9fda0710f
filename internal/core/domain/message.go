package domain

// ChatMessage is one chat message as delivered to every connection in the
// sender's room. Text is passed through unsanitized; output encoding is the
// consumer's responsibility.
type ChatMessage struct {
	ID        string `json:"id"`
	UserID    UserID `json:"userId"`
	UserName  string `json:"userName"`
	UserIcon  string `json:"userIcon"`
	TextColor string `json:"userTextColor,omitempty"`
	BgColor   string `json:"userBgColor,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"` // server-assigned, ISO-8601
	RoomID    RoomID `json:"roomId"`
}
