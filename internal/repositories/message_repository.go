package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"klink-backend/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions with the mirrored message store.
type MessageRepository interface {
	GetMessage(ctx context.Context, ownerUserID, chatID, messageID string) (models.Message, error)
	ApplyTranslation(ctx context.Context, ownerUserID, chatID, messageID string, translations models.TranslationMap, detectedLanguage string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// GetMessage retrieves one physical copy of a message.
func (r *MessageRepo) GetMessage(ctx context.Context, ownerUserID, chatID, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT owner_user_id, chat_id, message_id, type, text_msg, is_deleted, translations, detected_language, translated_at, created_at
        FROM messages WHERE owner_user_id=$1 AND chat_id=$2 AND message_id=$3`, ownerUserID, chatID, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ApplyTranslation writes the translation fields onto one physical copy of a
// message. The update is idempotent: re-applying the same inputs yields the
// same state, which is what makes the dual mirror writes safe without a
// transaction under at-least-once event delivery.
func (r *MessageRepo) ApplyTranslation(ctx context.Context, ownerUserID, chatID, messageID string, translations models.TranslationMap, detectedLanguage string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET translations=$4, detected_language=$5, translated_at=NOW()
        WHERE owner_user_id=$1 AND chat_id=$2 AND message_id=$3`, ownerUserID, chatID, messageID, translations, detectedLanguage)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
