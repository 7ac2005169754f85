// Package search implements the time-windowed substring search over stored
// documents. It is intentionally small and engineered the same way as the
// rest of the read path:
//
//   - No logging in the library (callers decide how/what to log)
//   - Pure reads: the engine never mutates the store
//   - Deterministic results (the store returns candidates in a stable order
//     for a fixed snapshot, and filtering preserves that order)
//   - Substring containment only; no tokenization, stemming, or ranking
//
// Queries are trimmed and case-folded before matching; a query that is empty
// after trimming is rejected without touching the store. The stored name and
// note are folded with the same caser at comparison time, so the two sides of
// the match always agree on case, for any script. Eligible records must have
// been received within the trailing recency window (7 days by default)
// relative to the search time.
package search

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"docbot/internal/domain"
)

// Window is the default trailing recency interval for searches.
const Window = 7 * 24 * time.Hour

// Store is the read-side contract the engine composes over.
type Store interface {
	// RecentDocuments returns all records with ReceivedAt >= notBefore, in a
	// deterministic order that is stable for a fixed snapshot.
	RecentDocuments(ctx context.Context, notBefore time.Time) ([]domain.Document, error)
}

// Kind discriminates search outcomes.
type Kind int

const (
	// KindEmptyQuery means the query was empty after trimming.
	KindEmptyQuery Kind = iota
	// KindNoMatches means the query was usable but nothing matched inside
	// the recency window.
	KindNoMatches
	// KindMatches means at least one record matched.
	KindMatches
)

// String returns a label for logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNoMatches:
		return "no_matches"
	case KindMatches:
		return "matches"
	default:
		return "empty_query"
	}
}

// Outcome is the result of one search: the discriminator, the normalized
// query that was matched, and the matching records (KindMatches only).
type Outcome struct {
	Kind    Kind
	Query   string
	Records []domain.Document
}

// Engine composes query normalization and the recency window over a Store.
// The zero value is not usable; Store must be set. A zero Window falls back
// to the package default.
type Engine struct {
	Store  Store
	Window time.Duration
}

// Search normalizes rawQuery, pulls the records inside the recency window
// ending at now, and keeps those whose folded name or note contains the
// folded query. It performs no mutation. Containment is literal: every byte
// of the query has to appear, there are no wildcard characters.
//
// Errors are only returned for store failures; empty queries and empty result
// sets are reported through the Outcome.
func (e *Engine) Search(ctx context.Context, rawQuery string, now time.Time) (Outcome, error) {
	q := Normalize(rawQuery)
	if q == "" {
		return Outcome{Kind: KindEmptyQuery}, nil
	}

	w := e.Window
	if w <= 0 {
		w = Window
	}

	recs, err := e.Store.RecentDocuments(ctx, now.Add(-w))
	if err != nil {
		return Outcome{Kind: KindNoMatches, Query: q}, err
	}

	// A Caser carries internal state, so a fresh one per search.
	fold := cases.Fold()
	var hits []domain.Document
	for _, d := range recs {
		if strings.Contains(fold.String(d.Name), q) || strings.Contains(fold.String(d.Note), q) {
			hits = append(hits, d)
		}
	}
	if len(hits) == 0 {
		return Outcome{Kind: KindNoMatches, Query: q}, nil
	}
	return Outcome{Kind: KindMatches, Query: q, Records: hits}, nil
}

// Normalize trims surrounding whitespace and case-folds the query. Search
// folds the stored text with the same caser, so matching is case-insensitive
// for non-ASCII filenames too, regardless of the case the sender typed.
func Normalize(raw string) string {
	return cases.Fold().String(strings.TrimSpace(raw))
}
