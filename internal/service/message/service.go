package message

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/db"
	svcErr "github.com/oggyb/blinder/internal/errors"
	"github.com/oggyb/blinder/internal/observability"
	"github.com/oggyb/blinder/internal/realtime"
	"github.com/oggyb/blinder/internal/repository"
	"github.com/oggyb/blinder/internal/service"
	"github.com/oggyb/blinder/internal/service/match"
)

// Publisher fans a realtime event out to the listeners of a match.
type Publisher interface {
	Publish(matchID string, evt realtime.Event)
}

// Service implements match-scoped messaging.
type Service struct {
	log      *slog.Logger
	messages *repository.MessageRepository
	matches  match.MatchStore
	hub      Publisher
}

// NewMessageService creates a new Message service with dependencies from AppContext.
func NewMessageService(appCtx *app.AppContext) *Service {
	return NewService(appCtx, appCtx.Hub)
}

// NewService is NewMessageService with an explicit realtime publisher.
func NewService(appCtx *app.AppContext, hub Publisher) *Service {
	return &Service{
		log:      appCtx.Logger,
		messages: appCtx.Repos.Messages,
		matches:  appCtx.Repos.Matches,
		hub:      hub,
	}
}

// View is a message as returned to clients.
type View struct {
	MessageID   string    `json:"message_id"`
	MatchID     string    `json:"match_id"`
	SenderID    string    `json:"sender_id"`
	MessageText string    `json:"message_text"`
	Timestamp   time.Time `json:"timestamp"`
}

func toView(m *db.Message) View {
	return View{
		MessageID:   service.FormatID(m.ID),
		MatchID:     m.MatchID,
		SenderID:    service.FormatID(m.SenderID),
		MessageText: m.Text,
		Timestamp:   m.CreatedAt.UTC(),
	}
}

// GetConversation returns the thread of matchID, oldest first.
// Only the two parties of the match may read it.
func (s *Service) GetConversation(ctx context.Context, userID uint64, matchID string) ([]View, error) {
	if _, err := match.Authorize(ctx, s.matches, userID, matchID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByMatch(ctx, matchID)
	if err != nil {
		s.log.Error("ListByMatch failed", "match_id", matchID, "err", err)
		return nil, svcErr.Map(err)
	}

	out := make([]View, 0, len(msgs))
	for i := range msgs {
		out = append(out, toView(&msgs[i]))
	}
	return out, nil
}

// SendMessage appends a message to matchID and pushes it to realtime listeners.
//
// Behavior:
//   - text is trimmed and must be non-empty.
//   - userID must be a party of the match.
//
// Example:
//
//	svc.SendMessage(ctx, 1, matchID, "selam")
func (s *Service) SendMessage(ctx context.Context, userID uint64, matchID, text string) (*View, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, svcErr.InvalidArgument("message_text is required")
	}
	if _, err := match.Authorize(ctx, s.matches, userID, matchID); err != nil {
		return nil, err
	}

	msg := &db.Message{
		MatchID:   matchID,
		SenderID:  userID,
		Text:      text,
		CreatedAt: db.NowFunc(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		s.log.Error("message create failed", "match_id", matchID, "err", err)
		return nil, svcErr.Map(err)
	}
	observability.MessagesSentTotal.Inc()

	view := toView(msg)
	if s.hub != nil {
		s.hub.Publish(matchID, realtime.Event{
			Type: realtime.EventMessage,
			From: view.SenderID,
			Data: view,
		})
	}
	return &view, nil
}
