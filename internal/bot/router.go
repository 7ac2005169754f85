package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"docbot/internal/dispatch"
	"docbot/internal/domain"
	"docbot/internal/services"
	"docbot/internal/state"
)

// Router consumes classified events and drives the store, the conversation
// state machine, the search engine, and the dispatcher. One Router serves
// all conversations; Handle is safe to call concurrently, one call per
// inbound event.
type Router struct {
	Archive    *services.ArchiveService
	Search     *services.SearchService
	States     *state.Tracker
	Dispatcher *dispatch.Dispatcher

	// StartedAt is the immutable process start time, captured once at
	// bootstrap. Used only to render the greeting.
	StartedAt time.Time

	// Trigger is the search-trigger command named in the greeting.
	Trigger string

	Log zerolog.Logger

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time
}

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Handle processes one inbound event. Expected conditions (duplicate file,
// unsupported type, empty query, failed reply delivery) are absorbed here;
// the returned error is reserved for unexpected storage failures, which
// concern only the current event.
func (r *Router) Handle(ctx context.Context, ev Event) error {
	lg := r.Log.With().
		Str("event_id", uuid.NewString()).
		Str("kind", ev.Kind.String()).
		Int64("chat_id", ev.ChatID).
		Int64("user_id", ev.UserID).
		Logger()

	switch ev.Kind {
	case KindStart:
		r.Dispatcher.Deliver(ctx, []dispatch.Reply{{
			ChatID:  ev.ChatID,
			ReplyTo: ev.MessageID,
			Text:    r.Greeting(ev.SenderName),
		}})
		return nil

	case KindFileSubmission:
		doc := domain.Document{
			ID:              ev.File.ID,
			Name:            ev.File.Name,
			ReceivedAt:      r.now(),
			OriginMessageID: ev.MessageID,
			OriginChatID:    ev.ChatID,
			Note:            ev.File.Caption,
		}
		status, err := r.Archive.Ingest(ctx, doc)
		if err != nil {
			lg.Error().Err(err).Str("document_id", doc.ID).Msg("ingest failed")
			return err
		}
		lg.Info().
			Str("document_id", doc.ID).
			Str("name", doc.Name).
			Str("status", status.String()).
			Msg("file submission")
		return nil

	case KindSearchTrigger:
		r.States.Arm(state.Key{ChatID: ev.ChatID, UserID: ev.UserID})
		lg.Info().Msg("search armed")
		r.Dispatcher.Deliver(ctx, []dispatch.Reply{{
			ChatID:  ev.ChatID,
			ReplyTo: ev.MessageID,
			Text:    "Send the document name, or part of it.",
		}})
		return nil

	default: // KindFreeText
		// Consume the awaiting state before anything else, so a failure
		// further down can never leave the conversation stuck awaiting.
		if !r.States.Take(state.Key{ChatID: ev.ChatID, UserID: ev.UserID}) {
			return nil
		}

		outcome, err := r.Search.Search(ctx, ev.ChatID, ev.UserID, ev.Text, r.now())
		if err != nil {
			lg.Error().Err(err).Msg("search failed")
			return err
		}
		lg.Info().
			Str("outcome", outcome.Kind.String()).
			Int("matches", len(outcome.Records)).
			Msg("search")

		replies := r.Dispatcher.ToReplies(outcome, ev.ChatID, ev.MessageID)
		r.Dispatcher.Deliver(ctx, replies)
		return nil
	}
}

// Greeting renders the start-of-session reply for a sender. The shown start
// time is the process epoch; it plays no part in any time computation.
func (r *Router) Greeting(senderName string) string {
	trigger := r.Trigger
	if trigger == "" {
		trigger = "/search"
	}
	return fmt.Sprintf(
		"Hello, %s!\n\n"+
			"I archive documents and find them again.\n"+
			"Send me PDF files, with a caption if you like.\n"+
			"Use %s to look one up by name or caption.\n\n"+
			"Running since %s.",
		senderName, trigger, r.StartedAt.Format("2006-01-02 15:04:05"),
	)
}
