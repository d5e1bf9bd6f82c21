package memory

import (
	"fmt"
	"time"

	"mojibot/pkg/surreal"
)

// maxRecentMessages is the per-channel history window.
const maxRecentMessages = 20

type SurrealStore struct {
	client *surreal.Client
}

func NewSurrealStore(client *surreal.Client) *SurrealStore {
	store := &SurrealStore{
		client: client,
	}
	if err := store.Init(); err != nil {
		// Don't fail startup; the schema may already exist or the DB may
		// become reachable later.
		fmt.Printf("Warning: Failed to initialize SurrealDB schema: %v\n", err)
	}
	return store
}

func (s *SurrealStore) Init() error {
	query := `
		DEFINE TABLE IF NOT EXISTS recent_messages SCHEMAFULL;
		DEFINE FIELD IF NOT EXISTS channel_id ON recent_messages TYPE string;
		DEFINE FIELD IF NOT EXISTS role ON recent_messages TYPE string;
		DEFINE FIELD IF NOT EXISTS text ON recent_messages TYPE string;
		DEFINE FIELD IF NOT EXISTS timestamp ON recent_messages TYPE int;
	`
	_, err := s.client.Query(query, map[string]interface{}{})
	return err
}

func (s *SurrealStore) AddRecentMessage(channelID, role, text string) error {
	item := map[string]interface{}{
		"channel_id": channelID,
		"role":       role,
		"text":       text,
		"timestamp":  time.Now().UnixNano(),
	}

	_, err := s.client.Create("recent_messages", item)
	if err != nil {
		return err
	}

	// Cleanup old messages beyond the window
	query := fmt.Sprintf(`
		DELETE recent_messages
		WHERE channel_id = $channel_id
		AND id NOT IN (
			SELECT VALUE id FROM (
				SELECT id, timestamp FROM recent_messages
				WHERE channel_id = $channel_id
				ORDER BY timestamp DESC
				LIMIT %d
			)
		);
	`, maxRecentMessages)
	_, err = s.client.Query(query, map[string]interface{}{"channel_id": channelID})
	return err
}

func (s *SurrealStore) GetRecentMessages(channelID string) ([]RecentMessageItem, error) {
	query := `
		SELECT role, text, timestamp FROM recent_messages
		WHERE channel_id = $channel_id
		ORDER BY timestamp ASC;
	`

	result, err := s.client.Query(query, map[string]interface{}{"channel_id": channelID})
	if err != nil {
		return nil, err
	}

	rows, ok := result.([]interface{})
	if !ok || len(rows) == 0 {
		return []RecentMessageItem{}, nil
	}

	var messages []RecentMessageItem
	for _, row := range rows {
		if rowMap, ok := row.(map[string]interface{}); ok {
			msg := RecentMessageItem{}
			if role, ok := rowMap["role"].(string); ok {
				msg.Role = role
			}
			if text, ok := rowMap["text"].(string); ok {
				msg.Text = text
			}
			// Timestamp may come back as float64, int or uint depending on
			// the driver's decoding path.
			switch t := rowMap["timestamp"].(type) {
			case float64:
				msg.Timestamp = int64(t)
			case int64:
				msg.Timestamp = t
			case uint64:
				msg.Timestamp = int64(t)
			case int:
				msg.Timestamp = int64(t)
			}

			messages = append(messages, msg)
		}
	}

	return messages, nil
}

func (s *SurrealStore) ClearRecentMessages(channelID string) error {
	query := `DELETE recent_messages WHERE channel_id = $channel_id;`
	_, err := s.client.Query(query, map[string]interface{}{"channel_id": channelID})
	return err
}
