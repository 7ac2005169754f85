// Package services – ArchiveService
//
// This file implements ArchiveService, the application-level component that
// owns document ingestion and the read side used by the admin API. It applies
// the file-type policy, performs the idempotent insert, and exposes paginated
// listing and lookup over the stored records.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// file and chat identifiers where applicable. Ingest statuses and search
// outcomes are counted with Prometheus (see metrics.go).

package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"docbot/internal/domain"
	"docbot/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSuffix is the accepted file-type suffix when none is configured.
const DefaultSuffix = ".pdf"

// IngestStatus reports how a submission was handled.
type IngestStatus int

const (
	// IngestStored means a new record was persisted.
	IngestStored IngestStatus = iota
	// IngestDuplicate means a record with the same id already existed.
	// The submission is absorbed silently; the stored record is unchanged.
	IngestDuplicate
	// IngestUnsupported means the filename does not carry the accepted
	// suffix. The submission is ignored, not stored, and no error is
	// surfaced to the sender.
	IngestUnsupported
)

// String returns a label for logs and metrics.
func (s IngestStatus) String() string {
	switch s {
	case IngestDuplicate:
		return "duplicate"
	case IngestUnsupported:
		return "unsupported"
	default:
		return "stored"
	}
}

// ArchiveService coordinates document persistence and retrieval.
type ArchiveService struct {
	DB *gorm.DB

	// Suffix is the accepted file-type suffix, compared case-insensitively
	// against the filename tail. Defaults to DefaultSuffix when empty.
	Suffix string
}

// Accepts reports whether a filename carries the accepted suffix.
func (s *ArchiveService) Accepts(name string) bool {
	suffix := s.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix))
}

// Ingest applies the file-type policy and persists doc insert-if-absent.
//
// Duplicate and unsupported submissions are expected, handled outcomes, not
// errors: both leave the store untouched and are reported through the status.
// An error is returned only when the storage layer fails.
func (s *ArchiveService) Ingest(ctx context.Context, doc domain.Document) (IngestStatus, error) {
	tr := otel.Tracer("services/ArchiveService")
	ctx, span := tr.Start(ctx, "Ingest",
		trace.WithAttributes(
			attribute.String("document.id", doc.ID),
			attribute.Int64("chat.id", doc.OriginChatID),
		),
	)
	defer span.End()

	if !s.Accepts(doc.Name) {
		ingestTotal.WithLabelValues(IngestUnsupported.String()).Inc()
		return IngestUnsupported, nil
	}

	res, err := repo.InsertDocument(ctx, s.DB, &doc)
	if err != nil {
		return IngestStored, err
	}

	status := IngestStored
	if res == repo.InsertDuplicate {
		status = IngestDuplicate
	}
	ingestTotal.WithLabelValues(status.String()).Inc()
	return status, nil
}

// Get fetches a single document by file id, translating the repo sentinel
// into ErrDocumentNotFound.
func (s *ArchiveService) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := repo.GetDocument(ctx, s.DB, id)
	if err == repo.ErrNotFound {
		return nil, ErrDocumentNotFound
	}
	return doc, err
}

// Count returns the total number of stored documents.
func (s *ArchiveService) Count(ctx context.Context) (int64, error) {
	return repo.CountDocuments(ctx, s.DB)
}

// ListPage returns a page of documents whose name or note contains q as a
// literal (pass "" for all), newest first, plus the total match count. The
// filter is case-insensitive for ASCII. Unlike the chat search, this listing
// is not window-restricted; it serves the operator-facing admin API.
func (s *ArchiveService) ListPage(ctx context.Context, q string, page, pageSize int) ([]domain.Document, int64, error) {
	tr := otel.Tracer("services/ArchiveService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	// SQLite's LOWER is ASCII-only, so lower the filter the same way rather
	// than case-folding it; the LIKE sides would otherwise disagree.
	sub := asciiLower(strings.TrimSpace(q))
	total, err := repo.CountMatching(ctx, s.DB, sub)
	if err != nil {
		return nil, 0, err
	}
	docs, err := repo.ListDocumentsPage(ctx, s.DB, sub, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// asciiLower lowercases A-Z only, mirroring SQLite's LOWER.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
