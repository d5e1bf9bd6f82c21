package memory

import (
	"sync"
	"time"
)

// MemStore is an in-memory Store used in tests and when no database is
// configured. History is lost on restart.
type MemStore struct {
	mu       sync.Mutex
	messages map[string][]RecentMessageItem
}

func NewMemStore() *MemStore {
	return &MemStore{
		messages: make(map[string][]RecentMessageItem),
	}
}

func (s *MemStore) AddRecentMessage(channelID, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := append(s.messages[channelID], RecentMessageItem{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UnixNano(),
	})
	if len(items) > maxRecentMessages {
		items = items[len(items)-maxRecentMessages:]
	}
	s.messages[channelID] = items
	return nil
}

func (s *MemStore) GetRecentMessages(channelID string) ([]RecentMessageItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.messages[channelID]
	out := make([]RecentMessageItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemStore) ClearRecentMessages(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, channelID)
	return nil
}
