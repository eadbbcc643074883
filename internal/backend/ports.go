package backend

import (
	"context"
	"errors"
)

// ErrUnknownBot is returned when a bot id is not registered.
var ErrUnknownBot = errors.New("unknown bot")

// Bot is a registered bot.
type Bot struct {
	ID           string
	Name         string
	SystemPrompt string
}

// BotStore looks bots up by id. It returns ErrUnknownBot for missing bots.
type BotStore interface {
	LookupBot(ctx context.Context, id string) (*Bot, error)
}

// Replier produces the bot's answer to one message.
type Replier interface {
	Reply(ctx context.Context, bot *Bot, message string) (string, error)
}
