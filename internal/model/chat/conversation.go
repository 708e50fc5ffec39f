package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTitle is used when the opening message carries no text.
const DefaultTitle = "New Chat"

const titleLimit = 40

// Conversation is one ongoing exchange owned by exactly one user.
type Conversation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// TitleFrom derives a conversation title from the opening user message.
// The text is cut as sent; only blank input falls back to DefaultTitle.
func TitleFrom(text string) string {
	if strings.TrimSpace(text) == "" {
		return DefaultTitle
	}
	if utf8.RuneCountInString(text) <= titleLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleLimit]) + "..."
}
