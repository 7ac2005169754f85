// Document HTTP handlers.
//
// This file exposes the read-only operator endpoints over stored documents:
//   - GET /documents        (list, substring filter, paginated)
//   - GET /documents/{id}   (lookup by file id)
//
// Handlers are transport-thin: they validate input, call the archive
// service, and translate results into HTTP responses. All writes go through
// the messaging channel, never through this API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docbot/internal/domain"
	"docbot/internal/services"
	"docbot/internal/utils"
)

// Archive defines the read-side operations consumed by the document handlers.
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation.
type Archive interface {
	// Get fetches a single document by file id.
	Get(ctx context.Context, id string) (*domain.Document, error)
	// Count returns the total number of stored documents.
	Count(ctx context.Context) (int64, error)
	// ListPage returns a page of documents matching q and the total count.
	ListPage(ctx context.Context, q string, page, pageSize int) ([]domain.Document, int64, error)
}

// Handlers groups the admin endpoints over the document archive.
type Handlers struct {
	archive Archive
}

// New constructs a Handlers instance bound to the given archive.
func New(archive Archive) *Handlers {
	return &Handlers{archive: archive}
}

// listResponse is the pagination envelope for document listings.
type listResponse struct {
	Items    []domain.Document `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int64             `json:"total"`
}

// ListDocuments handles GET /documents?q=&page=&page_size=.
func (h *Handlers) ListDocuments(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), 20)
	if page < 1 || pageSize < 1 || pageSize > 100 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "page must be >= 1 and page_size in [1,100]")
		return
	}

	docs, total, err := h.archive.ListPage(c.Request.Context(), c.Query("q"), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list documents")
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	ok(c, http.StatusOK, listResponse{
		Items:    docs,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// GetDocument handles GET /documents/{id}.
func (h *Handlers) GetDocument(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "document id is required")
		return
	}

	doc, err := h.archive.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load document")
		return
	}
	ok(c, http.StatusOK, doc)
}

// Health handles GET /healthz: liveness plus the stored document count.
func (h *Handlers) Health(c *gin.Context) {
	total, err := h.archive.Count(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "storage unavailable")
		return
	}
	ok(c, http.StatusOK, gin.H{"status": "ok", "documents": total})
}
