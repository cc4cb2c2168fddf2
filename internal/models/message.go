package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// MessageTypeText marks the only message type the translation pipeline acts on.
const MessageTypeText = "text"

// TranslationMap maps a language code to translated text. It is stored as a
// JSONB column on both message mirrors.
type TranslationMap map[string]string

// Value implements driver.Valuer for JSONB storage.
func (t TranslationMap) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB storage.
func (t *TranslationMap) Scan(src any) error {
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
		return errors.New("translations: unsupported scan type")
	}
}

// Message is one physical copy of a chat message. A text message logically
// exists once but is mirrored twice, once under each participant's record
// tree; after translation both copies must carry identical translations and
// detected language.
type Message struct {
	OwnerUserID      string         `db:"owner_user_id" json:"ownerUserId"`
	ChatID           string         `db:"chat_id" json:"chatId"`
	MessageID        string         `db:"message_id" json:"messageId"`
	Type             string         `db:"type" json:"type"`
	TextMsg          string         `db:"text_msg" json:"textMsg"`
	IsDeleted        bool           `db:"is_deleted" json:"isDeleted"`
	Translations     TranslationMap `db:"translations" json:"translations,omitempty"`
	DetectedLanguage string         `db:"detected_language" json:"detectedLanguage,omitempty"`
	TranslatedAt     *time.Time     `db:"translated_at" json:"translatedAt,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
}

// MessageCreatedEvent is the envelope delivered on the message.created
// routing key when a client stores a new message. OwnerUserID and ChatID
// identify the sender-side copy; in a 1-to-1 chat the chat id is the other
// party's user id, so ChatID also names the receiver.
type MessageCreatedEvent struct {
	OwnerUserID string `json:"ownerUserId"`
	ChatID      string `json:"chatId"`
	MessageID   string `json:"messageId"`
	Type        string `json:"type"`
	TextMsg     string `json:"textMsg"`
	IsDeleted   bool   `json:"isDeleted"`
}
