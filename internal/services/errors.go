// Package services defines the application logic for document ingestion and
// retrieval. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// Expected, user-correctable conditions (duplicate submission, unsupported
// file type, empty query) are reported as statuses or outcomes rather than
// errors; only genuinely unexpected failures (storage unreachable) surface
// as errors. Translation into user-facing messages or HTTP status codes is
// performed at the handler/dispatch layer.
package services

import "errors"

var (
	// ErrDocumentNotFound indicates that the requested document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
)
