package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            preferred_language TEXT NOT NULL DEFAULT 'en',
            push_tokens JSONB NOT NULL DEFAULT '[]'::jsonb
        );`,
		// One row per physical copy of a message. The same logical message
		// appears twice, once per participant's tree.
		`CREATE TABLE IF NOT EXISTS messages (
            owner_user_id TEXT NOT NULL,
            chat_id TEXT NOT NULL,
            message_id TEXT NOT NULL,
            type TEXT NOT NULL DEFAULT 'text',
            text_msg TEXT NOT NULL DEFAULT '',
            is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
            translations JSONB,
            detected_language TEXT NOT NULL DEFAULT '',
            translated_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY(owner_user_id, chat_id, message_id)
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
