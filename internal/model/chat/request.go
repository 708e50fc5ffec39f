package chat

// Request is the inbound chat payload. A nil ConversationID starts a new conversation.
type Request struct {
	UserID         int64  `json:"userId"`
	ConversationID *int64 `json:"conversationId,omitempty"`
	UserMessage    string `json:"userMessage"`
}

// Response echoes the user's text next to the reply it produced.
type Response struct {
	ConversationID int64  `json:"conversationId"`
	UserMessage    string `json:"userMessage"`
	AIResponse     string `json:"aiResponse"`
}
