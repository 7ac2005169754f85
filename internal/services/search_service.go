// Package services – SearchService
//
// Thin application wrapper around the search engine: it adds tracing and
// outcome counting on top of the pure read-side query composition. The engine
// itself stays dependency-free; this is where observability lives.

package services

import (
	"context"
	"time"

	"docbot/internal/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SearchService executes windowed searches on behalf of a conversation.
type SearchService struct {
	Engine *search.Engine
}

// Search runs the query against the store restricted to the engine's recency
// window ending at now. ChatID/userID identify the requesting conversation
// and are recorded on the span only; they do not influence matching.
func (s *SearchService) Search(ctx context.Context, chatID, userID int64, rawQuery string, now time.Time) (search.Outcome, error) {
	tr := otel.Tracer("services/SearchService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.Int64("chat.id", chatID),
			attribute.Int64("user.id", userID),
		),
	)
	defer span.End()

	outcome, err := s.Engine.Search(ctx, rawQuery, now)
	if err != nil {
		return outcome, err
	}
	searchTotal.WithLabelValues(outcome.Kind.String()).Inc()
	return outcome, nil
}
