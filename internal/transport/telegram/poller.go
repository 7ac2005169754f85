package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"docbot/internal/bot"
)

// Handler consumes one classified event. Satisfied by bot.Router.Handle.
type Handler func(ctx context.Context, ev bot.Event) error

// Poller drives the long-poll loop: fetch updates, classify each message,
// and hand every event to the handler in its own goroutine. Events are
// independent units of work; nothing orders their handling.
type Poller struct {
	Client  *Client
	Handler Handler

	// Trigger is the search-trigger command token (e.g. "/search").
	Trigger string

	// Timeout is the long-poll timeout per getUpdates call.
	// Defaults to 30s when zero.
	Timeout time.Duration

	Log zerolog.Logger
}

// Run polls until ctx is cancelled. Transport errors are logged and retried
// after a short backoff; handler errors are logged per event.
func (p *Poller) Run(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var offset int64
	for {
		updates, err := p.Client.GetUpdates(ctx, offset, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			in, ok := ToInbound(u)
			if !ok {
				continue
			}
			ev := bot.Classify(in, p.Trigger)
			go func(ev bot.Event) {
				if err := p.Handler(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
					p.Log.Error().
						Err(err).
						Str("kind", ev.Kind.String()).
						Int64("chat_id", ev.ChatID).
						Msg("event handling failed")
				}
			}(ev)
		}
	}
}
