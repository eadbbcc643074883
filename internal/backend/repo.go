package backend

import (
	"context"
	"database/sql"
	"errors"
)

type botRepo struct {
	db *sql.DB
}

// NewBotRepo returns a BotStore backed by the bots table.
func NewBotRepo(db *sql.DB) BotStore {
	return &botRepo{db: db}
}

func (r *botRepo) LookupBot(ctx context.Context, id string) (*Bot, error) {
	var b Bot
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, coalesce(system_prompt, '')
		FROM bots
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.SystemPrompt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownBot
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Schema creates the bots table.
const Schema = `
CREATE TABLE IF NOT EXISTS bots (
	id            text PRIMARY KEY,
	name          text NOT NULL,
	system_prompt text,
	created_at    timestamptz NOT NULL DEFAULT now()
)`
