package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"docbot/internal/dispatch"
	"docbot/internal/domain"
	"docbot/internal/repo"
	"docbot/internal/search"
	"docbot/internal/services"
	"docbot/internal/state"
)

type capturedReply struct {
	ChatID  int64
	ReplyTo int64
	Text    string
}

type captureSender struct {
	sent []capturedReply
}

func (c *captureSender) SendReply(_ context.Context, chatID, replyTo int64, text string) error {
	c.sent = append(c.sent, capturedReply{ChatID: chatID, ReplyTo: replyTo, Text: text})
	return nil
}

func newRouter(t *testing.T, now time.Time) (*Router, *captureSender, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("router_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Document{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	sender := &captureSender{}
	r := &Router{
		Archive: &services.ArchiveService{DB: db},
		Search: &services.SearchService{
			Engine: &search.Engine{Store: repo.DocumentStore{DB: db}},
		},
		States:     state.NewTracker(),
		Dispatcher: &dispatch.Dispatcher{Sender: sender},
		StartedAt:  time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC),
		Now:        func() time.Time { return now },
	}
	return r, sender, db
}

func submit(t *testing.T, r *Router, id, name, note string, chatID, msgID int64) {
	t.Helper()
	err := r.Handle(context.Background(), Event{
		Kind:      KindFileSubmission,
		ChatID:    chatID,
		UserID:    chatID,
		MessageID: msgID,
		File:      &FileInfo{ID: id, Name: name, Caption: note},
	})
	if err != nil {
		t.Fatalf("submit %s: %v", id, err)
	}
}

func trigger(t *testing.T, r *Router, chatID, userID int64) {
	t.Helper()
	err := r.Handle(context.Background(), Event{
		Kind: KindSearchTrigger, ChatID: chatID, UserID: userID, MessageID: 1000,
	})
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
}

func freeText(t *testing.T, r *Router, chatID, userID, msgID int64, text string) {
	t.Helper()
	err := r.Handle(context.Background(), Event{
		Kind: KindFreeText, ChatID: chatID, UserID: userID, MessageID: msgID, Text: text,
	})
	if err != nil {
		t.Fatalf("free text %q: %v", text, err)
	}
}

func TestHandle_Start_GreetsWithStartTime(t *testing.T) {
	now := time.Now().UTC()
	r, sender, _ := newRouter(t, now)

	err := r.Handle(context.Background(), Event{
		Kind: KindStart, ChatID: 5, UserID: 6, MessageID: 7, SenderName: "Ada",
	})
	if err != nil {
		t.Fatalf("Handle start: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one greeting, got %d", len(sender.sent))
	}
	g := sender.sent[0]
	if g.ChatID != 5 || g.ReplyTo != 7 {
		t.Fatalf("greeting not threaded to requester: %+v", g)
	}
	if !strings.Contains(g.Text, "Ada") || !strings.Contains(g.Text, "2025-01-01 09:30:00") {
		t.Fatalf("greeting missing sender or start time: %q", g.Text)
	}
}

func TestHandle_ScenarioA_MatchWithNote(t *testing.T) {
	now := time.Now().UTC()
	r, sender, _ := newRouter(t, now)

	submit(t, r, "1", "Notes.pdf", "v1", 50, 5)
	trigger(t, r, 50, 60)
	sender.sent = nil

	freeText(t, r, 50, 60, 8, "note")

	if len(sender.sent) != 2 {
		t.Fatalf("expected ack + 1 record reply, got %d: %+v", len(sender.sent), sender.sent)
	}
	rec := sender.sent[1]
	if rec.ChatID != 50 || rec.ReplyTo != 5 {
		t.Fatalf("record reply not threaded to the submission: %+v", rec)
	}
	if !strings.Contains(rec.Text, "Notes.pdf") || !strings.Contains(rec.Text, "v1") {
		t.Fatalf("record reply missing name or note: %q", rec.Text)
	}
}

func TestHandle_ScenarioB_OldRecordNoMatch(t *testing.T) {
	now := time.Now().UTC()
	r, sender, db := newRouter(t, now)

	// Submitted 10 days ago: outside the window.
	old := domain.Document{
		ID: "2", Name: "Old.pdf", ReceivedAt: now.Add(-10 * 24 * time.Hour),
		OriginMessageID: 9, OriginChatID: 50,
	}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	trigger(t, r, 50, 60)
	sender.sent = nil
	freeText(t, r, 50, 60, 8, "old")

	if len(sender.sent) != 1 {
		t.Fatalf("expected a single no-match notice, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Text, "No documents") {
		t.Fatalf("unexpected notice: %q", sender.sent[0].Text)
	}
}

func TestHandle_ScenarioC_BlankQueryClearsState(t *testing.T) {
	now := time.Now().UTC()
	r, sender, _ := newRouter(t, now)

	trigger(t, r, 50, 60)
	sender.sent = nil
	freeText(t, r, 50, 60, 8, "   ")

	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].Text, "No search text") {
		t.Fatalf("expected empty-query guidance, got %+v", sender.sent)
	}

	// State was consumed: the next free text is ordinary chat, no reply.
	sender.sent = nil
	freeText(t, r, 50, 60, 9, "anything")
	if len(sender.sent) != 0 {
		t.Fatalf("free text without a trigger must not search: %+v", sender.sent)
	}
}

func TestHandle_FreeTextOutsideAwaiting_IsIgnored(t *testing.T) {
	now := time.Now().UTC()
	r, sender, _ := newRouter(t, now)

	submit(t, r, "1", "Notes.pdf", "", 50, 5)
	freeText(t, r, 50, 60, 8, "note")
	if len(sender.sent) != 0 {
		t.Fatalf("unarmed free text must be ignored: %+v", sender.sent)
	}
}

func TestHandle_TriggerPrompts(t *testing.T) {
	now := time.Now().UTC()
	r, sender, _ := newRouter(t, now)

	trigger(t, r, 50, 60)
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].Text, "document name") {
		t.Fatalf("expected a search prompt, got %+v", sender.sent)
	}
}

func TestHandle_UnsupportedSubmission_Silent(t *testing.T) {
	now := time.Now().UTC()
	r, sender, db := newRouter(t, now)

	submit(t, r, "3", "notes.txt", "", 50, 5)
	if len(sender.sent) != 0 {
		t.Fatalf("unsupported submissions must not produce replies: %+v", sender.sent)
	}
	var total int64
	db.Model(&domain.Document{}).Count(&total)
	if total != 0 {
		t.Fatalf("unsupported submission stored: %d rows", total)
	}
}

func TestHandle_DuplicateSubmission_Silent(t *testing.T) {
	now := time.Now().UTC()
	r, sender, db := newRouter(t, now)

	submit(t, r, "4", "Plan.pdf", "first", 50, 5)
	submit(t, r, "4", "Plan.pdf", "second", 50, 6)

	if len(sender.sent) != 0 {
		t.Fatalf("submissions must not produce replies: %+v", sender.sent)
	}
	var got domain.Document
	if err := db.First(&got, "file_id = ?", "4").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Note != "first" || got.OriginMessageID != 5 {
		t.Fatalf("duplicate overwrote the stored record: %+v", got)
	}
}
