// Package dispatch maps search outcomes to outbound reply instructions and
// delivers them through the messaging transport.
//
// Building and delivering are split on purpose: ToReplies is pure and fully
// testable without a transport, while Deliver owns the failure policy:
// each reply is sent independently, failures are logged and counted but never
// abort the remaining deliveries, and outbound traffic is rate limited to
// stay inside the transport's send quota.
package dispatch

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"docbot/internal/search"
)

var repliesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "docbot_replies_total",
		Help: "Total number of outbound replies by delivery status.",
	},
	[]string{"status"},
)

func init() {
	prometheus.MustRegister(repliesTotal)
}

// Sender is the outbound capability of the messaging transport. Sends may
// fail (target message deleted, permission error) without aborting the caller.
type Sender interface {
	// SendReply delivers text to chatID, threaded as a reply to replyTo
	// when replyTo is non-zero.
	SendReply(ctx context.Context, chatID, replyTo int64, text string) error
}

// Reply is one outbound reply instruction.
type Reply struct {
	ChatID  int64
	ReplyTo int64
	Text    string
}

// Dispatcher builds reply instructions from search outcomes and delivers
// them through a Sender.
type Dispatcher struct {
	Sender Sender

	// Limiter throttles outbound sends when non-nil.
	Limiter *rate.Limiter

	// WindowDays is the recency window named in user-facing texts.
	// Defaults to 7 when zero.
	WindowDays int

	Log zerolog.Logger
}

func (d *Dispatcher) windowDays() int {
	if d.WindowDays > 0 {
		return d.WindowDays
	}
	return 7
}

// ToReplies converts a search outcome into reply instructions.
//
//   - EmptyQuery: one notice to the requester.
//   - NoMatches: one notice naming the query and the window.
//   - Matches: one acknowledgement to the requester, then one reply per
//     record targeted at the record's origin chat and threaded under the
//     message that originally submitted the file. The record's note, when
//     present, is appended as a separate annotated line.
//
// reqChat/reqMsg identify the message that carried the query; notices and
// the acknowledgement are threaded under it.
func (d *Dispatcher) ToReplies(outcome search.Outcome, reqChat, reqMsg int64) []Reply {
	switch outcome.Kind {
	case search.KindEmptyQuery:
		return []Reply{{
			ChatID:  reqChat,
			ReplyTo: reqMsg,
			Text:    "No search text was given. Please try again.",
		}}
	case search.KindNoMatches:
		return []Reply{{
			ChatID:  reqChat,
			ReplyTo: reqMsg,
			Text:    fmt.Sprintf("No documents matching %q in the last %d days.", outcome.Query, d.windowDays()),
		}}
	}

	out := make([]Reply, 0, len(outcome.Records)+1)
	out = append(out, Reply{
		ChatID:  reqChat,
		ReplyTo: reqMsg,
		Text:    fmt.Sprintf("Found documents matching %q in the last %d days.", outcome.Query, d.windowDays()),
	})
	for _, rec := range outcome.Records {
		text := rec.Name
		if rec.HasNote() {
			text += "\n\nNote: " + rec.Note
		}
		out = append(out, Reply{
			ChatID:  rec.OriginChatID,
			ReplyTo: rec.OriginMessageID,
			Text:    text,
		})
	}
	return out
}

// Deliver sends each reply independently and returns the number delivered.
// A failed send is logged and counted, then delivery continues with the next
// reply; failures are never propagated to the caller. Delivery stops early
// only when ctx is cancelled.
func (d *Dispatcher) Deliver(ctx context.Context, replies []Reply) int {
	sent := 0
	for _, r := range replies {
		if d.Limiter != nil {
			if err := d.Limiter.Wait(ctx); err != nil {
				d.Log.Warn().Err(err).Int("remaining", len(replies)-sent).Msg("delivery cancelled")
				return sent
			}
		}
		if err := d.Sender.SendReply(ctx, r.ChatID, r.ReplyTo, r.Text); err != nil {
			repliesTotal.WithLabelValues("failed").Inc()
			d.Log.Error().
				Err(err).
				Int64("chat_id", r.ChatID).
				Int64("reply_to", r.ReplyTo).
				Msg("reply delivery failed")
			continue
		}
		repliesTotal.WithLabelValues("sent").Inc()
		sent++
	}
	return sent
}
