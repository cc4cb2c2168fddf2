package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// DefaultLanguage is used whenever a preference or detection result is
// unavailable.
const DefaultLanguage = "en"

// TokenList holds a user's registered device tokens, stored as JSONB.
// Order is irrelevant; deduplication is the writer's responsibility.
type TokenList []string

// Value implements driver.Valuer for JSONB storage.
func (t TokenList) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB storage.
func (t *TokenList) Scan(src any) error {
	if src == nil {
		*t = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, t)
	case string:
		return json.Unmarshal([]byte(data), t)
	default:
		return errors.New("push_tokens: unsupported scan type")
	}
}

// UserProfile carries the per-user fields the delivery backend reads.
type UserProfile struct {
	UserID            string    `db:"user_id" json:"userId"`
	PreferredLanguage string    `db:"preferred_language" json:"preferredLanguage"`
	PushTokens        TokenList `db:"push_tokens" json:"pushTokens"`
}

// PresenceRecord is the live indicator written by client heartbeats and only
// read here. A user is actively viewing a chat iff IsOnline and ActiveChatID
// equals that chat's id exactly.
type PresenceRecord struct {
	IsOnline     bool   `json:"isOnline"`
	ActiveChatID string `json:"activeChatId,omitempty"`
}
