package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"docbot/internal/domain"
)

// fakeStore records how it was queried and returns canned results.
type fakeStore struct {
	calls        int
	gotNotBefore time.Time
	docs         []domain.Document
	err          error
}

func (f *fakeStore) RecentDocuments(_ context.Context, notBefore time.Time) ([]domain.Document, error) {
	f.calls++
	f.gotNotBefore = notBefore
	return f.docs, f.err
}

func TestSearch_EmptyQuery_SkipsStore(t *testing.T) {
	fs := &fakeStore{docs: []domain.Document{{ID: "f1"}}}
	e := &Engine{Store: fs}

	for _, raw := range []string{"", "   ", "\t\n"} {
		out, err := e.Search(context.Background(), raw, time.Now())
		if err != nil {
			t.Fatalf("Search(%q): %v", raw, err)
		}
		if out.Kind != KindEmptyQuery {
			t.Fatalf("Search(%q): expected empty outcome, got %v", raw, out.Kind)
		}
	}
	if fs.calls != 0 {
		t.Fatalf("store was queried %d times for empty queries", fs.calls)
	}
}

func TestSearch_WindowIsSevenDays(t *testing.T) {
	fs := &fakeStore{}
	e := &Engine{Store: fs}
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

	if _, err := e.Search(context.Background(), "report", now); err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := now.Add(-7 * 24 * time.Hour)
	if !fs.gotNotBefore.Equal(want) {
		t.Fatalf("notBefore = %v, want %v", fs.gotNotBefore, want)
	}
}

func TestSearch_CustomWindow(t *testing.T) {
	fs := &fakeStore{}
	e := &Engine{Store: fs, Window: 48 * time.Hour}
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

	if _, err := e.Search(context.Background(), "x", now); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := now.Add(-48 * time.Hour); !fs.gotNotBefore.Equal(want) {
		t.Fatalf("notBefore = %v, want %v", fs.gotNotBefore, want)
	}
}

func TestSearch_NormalizesQuery(t *testing.T) {
	e := &Engine{Store: &fakeStore{}}

	out, err := e.Search(context.Background(), "  REPORT  ", time.Now())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.Query != "report" {
		t.Fatalf("expected folded query %q, got %q", "report", out.Query)
	}
}

func TestSearch_MatchesNameAndNote(t *testing.T) {
	fs := &fakeStore{docs: []domain.Document{
		{ID: "f1", Name: "Report.pdf"},
		{ID: "f2", Name: "invoice.pdf", Note: "Quarterly REPORT"},
		{ID: "f3", Name: "notes.pdf"},
	}}
	e := &Engine{Store: fs}

	for _, q := range []string{"report", "EPOR"} {
		out, err := e.Search(context.Background(), q, time.Now())
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if out.Kind != KindMatches || len(out.Records) != 2 {
			t.Fatalf("Search(%q): expected 2 hits (name + note), got %+v", q, out)
		}
		// Store order is preserved.
		if out.Records[0].ID != "f1" || out.Records[1].ID != "f2" {
			t.Fatalf("Search(%q): unexpected order %+v", q, out.Records)
		}
	}
}

// Folding has to apply to the stored text as well as the query, or a byte
// exact substring of a non-ASCII name can fail to match.
func TestSearch_NonASCIICaseInsensitive(t *testing.T) {
	fs := &fakeStore{docs: []domain.Document{
		{ID: "f1", Name: "Straße.pdf"},
		{ID: "f2", Name: "ÜRÜN.pdf"},
	}}
	e := &Engine{Store: fs}

	tests := []struct {
		query string
		want  string
	}{
		{"straße", "f1"},
		{"STRASSE", "f1"},
		{"Straße", "f1"},
		{"ürün", "f2"},
		{"Ürün", "f2"},
	}
	for _, tc := range tests {
		out, err := e.Search(context.Background(), tc.query, time.Now())
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.query, err)
		}
		if out.Kind != KindMatches || len(out.Records) != 1 || out.Records[0].ID != tc.want {
			t.Fatalf("Search(%q): expected single match %s, got %+v", tc.query, tc.want, out)
		}
	}
}

func TestSearch_LikeMetacharactersAreLiteral(t *testing.T) {
	fs := &fakeStore{docs: []domain.Document{
		{ID: "f1", Name: "100%.pdf"},
		{ID: "f2", Name: "100x.pdf"},
	}}
	e := &Engine{Store: fs}

	out, err := e.Search(context.Background(), "100%", time.Now())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.Kind != KindMatches || len(out.Records) != 1 || out.Records[0].ID != "f1" {
		t.Fatalf("expected %% to match literally, got %+v", out)
	}
}

func TestSearch_Outcomes(t *testing.T) {
	now := time.Now()

	empty := &Engine{Store: &fakeStore{}}
	out, err := empty.Search(context.Background(), "report", now)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.Kind != KindNoMatches || out.Query != "report" {
		t.Fatalf("expected no-matches outcome naming the query, got %+v", out)
	}

	// Recent records exist but none contain the query.
	miss := &Engine{Store: &fakeStore{docs: []domain.Document{{ID: "f1", Name: "invoice.pdf"}}}}
	out, err = miss.Search(context.Background(), "report", now)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.Kind != KindNoMatches || len(out.Records) != 0 {
		t.Fatalf("expected no-matches outcome, got %+v", out)
	}

	hit := &Engine{Store: &fakeStore{docs: []domain.Document{{ID: "f1", Name: "Report.pdf"}}}}
	out, err = hit.Search(context.Background(), "report", now)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.Kind != KindMatches || len(out.Records) != 1 || out.Records[0].ID != "f1" {
		t.Fatalf("expected one match, got %+v", out)
	}
}

func TestSearch_StoreError(t *testing.T) {
	boom := errors.New("db gone")
	e := &Engine{Store: &fakeStore{err: boom}}
	if _, err := e.Search(context.Background(), "q", time.Now()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Report ": "report",
		"REPORT":    "report",
		"":          "",
		" \t ":      "",
		"Ärger":     "ärger",
		"Straße":    "strasse",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindEmptyQuery.String() != "empty_query" ||
		KindNoMatches.String() != "no_matches" ||
		KindMatches.String() != "matches" {
		t.Fatalf("unexpected kind labels")
	}
}
