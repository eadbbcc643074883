package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Service answers chat messages on behalf of registered bots.
type Service struct {
	store   BotStore
	replier Replier
	logger  zerolog.Logger
}

// NewService creates a service. A nil store accepts every bot id.
func NewService(store BotStore, replier Replier, logger zerolog.Logger) *Service {
	return &Service{store: store, replier: replier, logger: logger}
}

// Chat returns the reply of botID to message.
func (s *Service) Chat(ctx context.Context, botID, message string) (string, error) {
	bot := &Bot{ID: botID, Name: botID}
	if s.store != nil {
		var err error
		bot, err = s.store.LookupBot(ctx, botID)
		if err != nil {
			return "", fmt.Errorf("lookup bot %q: %w", botID, err)
		}
	}

	reply, err := s.replier.Reply(ctx, bot, message)
	if err != nil {
		return "", fmt.Errorf("reply for bot %q: %w", botID, err)
	}
	s.logger.Debug().Str("bot_id", botID).Int("reply_len", len(reply)).Msg("reply produced")
	return reply, nil
}
