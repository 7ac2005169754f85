// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Document
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only persistence
// and query composition.
//
// Error semantics:
//   - A duplicate submission is not an error: InsertDocument reports it as
//     InsertDuplicate and leaves the existing row untouched.
//   - When a document is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (connectivity issues, missing table, etc.), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docbot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertResult reports the outcome of an idempotent document insert.
type InsertResult int

const (
	// InsertStored means a new row was persisted.
	InsertStored InsertResult = iota
	// InsertDuplicate means a row with the same file id already existed;
	// nothing was written.
	InsertDuplicate
)

// String returns a label for logs and metrics.
func (r InsertResult) String() string {
	if r == InsertDuplicate {
		return "duplicate"
	}
	return "stored"
}

// InsertDocument persists doc keyed by its file id, insert-if-absent.
//
// The insert uses ON CONFLICT DO NOTHING on the primary key, so concurrent
// submissions of the same id never surface a constraint violation to the
// caller: exactly one wins and the rest observe InsertDuplicate. The stored
// row is never overwritten.
func InsertDocument(ctx context.Context, db *gorm.DB, doc *domain.Document) (InsertResult, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_id"}},
			DoNothing: true,
		}).
		Create(doc)
	if res.Error != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(res.Error.Error())
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return InsertDuplicate, nil
		}
		return InsertStored, res.Error
	}
	if res.RowsAffected == 0 {
		return InsertDuplicate, nil
	}
	return InsertStored, nil
}

// ListReceivedSince returns all documents whose ReceivedAt is at or after
// notBefore, ordered by (received_at, file_id) ascending, which is
// deterministic and stable for a fixed snapshot.
//
// Substring matching against name and note happens in the search engine, not
// in SQL: SQLite's LOWER and LIKE are case-insensitive for ASCII only, and
// the engine folds both sides of the comparison the same way.
func ListReceivedSince(ctx context.Context, db *gorm.DB, notBefore time.Time) ([]domain.Document, error) {
	var out []domain.Document
	err := db.WithContext(ctx).
		Where("received_at >= ?", notBefore).
		Order("received_at asc, file_id asc").
		Find(&out).Error
	return out, err
}

// GetDocument fetches a single document by file id. If the record does not
// exist, it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetDocument(ctx context.Context, db *gorm.DB, id string) (*domain.Document, error) {
	var d domain.Document
	err := db.WithContext(ctx).
		Where("file_id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CountDocuments returns the total number of stored documents.
func CountDocuments(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Document{}).
		Count(&total).Error
	return total, err
}

// likeEscaper neutralizes LIKE metacharacters so a filter value matches
// literally. The paired queries declare ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CountMatching returns the number of documents whose name or note contains
// substring as a literal (case-insensitive for ASCII), without any time
// window. Used by the admin listing for pagination metadata.
func CountMatching(ctx context.Context, db *gorm.DB, substring string) (int64, error) {
	pat := "%" + likeEscaper.Replace(substring) + "%"
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(note) LIKE ? ESCAPE '\'`, pat, pat).
		Count(&total).Error
	return total, err
}

// ListDocumentsPage returns a paginated slice of documents whose name or note
// contains substring as a literal (pass "" to list everything), ordered by
// ingestion time descending (most recent first). Use CountMatching to obtain
// the total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListDocumentsPage(ctx context.Context, db *gorm.DB, substring string, offset, limit int) ([]domain.Document, error) {
	pat := "%" + likeEscaper.Replace(substring) + "%"
	var out []domain.Document
	err := db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(note) LIKE ? ESCAPE '\'`, pat, pat).
		Order("received_at desc, file_id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DocumentStore adapts the repository free functions to the read-side Store
// interface expected by the search engine. This keeps the engine decoupled
// from the concrete repo package while reusing existing functions.
type DocumentStore struct {
	DB *gorm.DB
}

// RecentDocuments proxies ListReceivedSince.
func (s DocumentStore) RecentDocuments(ctx context.Context, notBefore time.Time) ([]domain.Document, error) {
	return ListReceivedSince(ctx, s.DB, notBefore)
}
