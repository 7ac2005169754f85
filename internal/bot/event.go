// Package bot contains the conversation-facing core: the inbound event model,
// the classification step that turns raw transport messages into tagged
// events, and the router that drives ingestion, search state, and replies.
package bot

import (
	"strings"
	"time"
)

// StartCommand is the token that triggers the greeting.
const StartCommand = "/start"

// Kind discriminates inbound events.
type Kind int

const (
	// KindStart is the start-of-session command.
	KindStart Kind = iota
	// KindFileSubmission is a message carrying a file.
	KindFileSubmission
	// KindSearchTrigger is the command that arms the search flow.
	KindSearchTrigger
	// KindFreeText is any other text message.
	KindFreeText
)

// String returns a label for logs.
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindFileSubmission:
		return "file_submission"
	case KindSearchTrigger:
		return "search_trigger"
	default:
		return "free_text"
	}
}

// FileInfo describes a submitted file as reported by the transport.
type FileInfo struct {
	ID      string
	Name    string
	Caption string
}

// Event is one classified inbound event, scoped to a conversation.
type Event struct {
	Kind       Kind
	ChatID     int64
	UserID     int64
	MessageID  int64
	SenderName string
	Text       string
	File       *FileInfo
	ReceivedAt time.Time
}

// Inbound is a transport-neutral description of one received message, before
// classification. The transport adapter fills it from the wire format; it
// carries no transport types.
type Inbound struct {
	ChatID     int64
	UserID     int64
	MessageID  int64
	SenderName string
	Text       string
	FileID     string
	FileName   string
	Caption    string
	ReceivedAt time.Time
}

// Classify turns an inbound message into a tagged event. trigger is the
// search-trigger command token (e.g. "/search"); a bot-address suffix
// ("/search@somebot") is accepted as the same command. The presence of a
// file wins over any text, matching how file submissions arrive with
// captions rather than standalone text.
func Classify(in Inbound, trigger string) Event {
	ev := Event{
		ChatID:     in.ChatID,
		UserID:     in.UserID,
		MessageID:  in.MessageID,
		SenderName: in.SenderName,
		Text:       in.Text,
		ReceivedAt: in.ReceivedAt,
	}

	if in.FileID != "" {
		ev.Kind = KindFileSubmission
		ev.File = &FileInfo{ID: in.FileID, Name: in.FileName, Caption: in.Caption}
		return ev
	}

	cmd := strings.TrimSpace(in.Text)
	if at := strings.IndexByte(cmd, '@'); at > 0 && strings.HasPrefix(cmd, "/") {
		cmd = cmd[:at]
	}
	switch cmd {
	case StartCommand:
		ev.Kind = KindStart
	case trigger:
		ev.Kind = KindSearchTrigger
	default:
		ev.Kind = KindFreeText
	}
	return ev
}
