package notification

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/varoOP/seasonshare/internal/domain"
)

// Service is a composite notifier: notices always go to the log and, when a
// webhook is configured, to Discord as well
type Service struct {
	log     zerolog.Logger
	discord *DiscordService
}

// NewService creates a new notification service
func NewService(log zerolog.Logger, webhookURL string) *Service {
	var discord *DiscordService
	if webhookURL != "" {
		discord = NewDiscordService(log, webhookURL)
	}

	return &Service{
		log:     log.With().Str("module", "notification").Logger(),
		discord: discord,
	}
}

var _ domain.Notifier = (*Service)(nil)

// Notify logs n and forwards it to the configured channels. A failing
// channel is logged, never returned, so a notice can't break the session.
func (s *Service) Notify(ctx context.Context, n domain.Notice) error {
	event := s.log.Info()
	switch n.Level {
	case domain.NoticeWarning:
		event = s.log.Warn()
	case domain.NoticeError:
		event = s.log.Error()
	}
	event.Str("level", string(n.Level)).Str("title", n.Title).Msg(n.Text)

	if s.discord != nil {
		if err := s.discord.Notify(ctx, n); err != nil {
			s.log.Warn().Err(err).Msg("Failed to send discord notification")
		}
	}
	return nil
}
