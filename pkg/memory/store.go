package memory

// LLMMessage represents a message for LLM chat completions
type LLMMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecentMessageItem is one conversation turn kept for chat context.
type RecentMessageItem struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Store keeps a sliding window of recent conversation turns per channel.
type Store interface {
	AddRecentMessage(channelID, role, text string) error
	GetRecentMessages(channelID string) ([]RecentMessageItem, error)
	ClearRecentMessages(channelID string) error
}
