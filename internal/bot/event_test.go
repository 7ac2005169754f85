package bot

import (
	"testing"
	"time"
)

func TestClassify_FileSubmission(t *testing.T) {
	in := Inbound{
		ChatID:     1,
		UserID:     2,
		MessageID:  3,
		FileID:     "f1",
		FileName:   "Report.pdf",
		Caption:    "v1",
		ReceivedAt: time.Now(),
	}
	ev := Classify(in, "/search")
	if ev.Kind != KindFileSubmission {
		t.Fatalf("expected file submission, got %v", ev.Kind)
	}
	if ev.File == nil || ev.File.ID != "f1" || ev.File.Name != "Report.pdf" || ev.File.Caption != "v1" {
		t.Fatalf("file info not carried: %+v", ev.File)
	}
}

func TestClassify_FileWinsOverText(t *testing.T) {
	in := Inbound{FileID: "f1", FileName: "a.pdf", Text: "/search"}
	if ev := Classify(in, "/search"); ev.Kind != KindFileSubmission {
		t.Fatalf("file presence must win over text, got %v", ev.Kind)
	}
}

func TestClassify_Commands(t *testing.T) {
	cases := map[string]Kind{
		"/start":           KindStart,
		"/search":          KindSearchTrigger,
		"/search@docbot":   KindSearchTrigger,
		"/start@docbot":    KindStart,
		"/searching":       KindFreeText,
		"search":           KindFreeText,
		"hello":            KindFreeText,
		"":                 KindFreeText,
		"  /search  ":      KindSearchTrigger,
		"name@example.com": KindFreeText,
		"/other":           KindFreeText,
	}
	for text, want := range cases {
		if got := Classify(Inbound{Text: text}, "/search").Kind; got != want {
			t.Fatalf("Classify(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestClassify_CarriesConversationIdentity(t *testing.T) {
	in := Inbound{ChatID: 10, UserID: 20, MessageID: 30, SenderName: "Ada", Text: "hi"}
	ev := Classify(in, "/search")
	if ev.ChatID != 10 || ev.UserID != 20 || ev.MessageID != 30 || ev.SenderName != "Ada" || ev.Text != "hi" {
		t.Fatalf("identity fields not carried: %+v", ev)
	}
}

func TestKindString(t *testing.T) {
	if KindStart.String() != "start" ||
		KindFileSubmission.String() != "file_submission" ||
		KindSearchTrigger.String() != "search_trigger" ||
		KindFreeText.String() != "free_text" {
		t.Fatalf("unexpected kind labels")
	}
}
