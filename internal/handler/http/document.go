package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/journalist-service/server/internal/domain"
	"github.com/journalist-service/server/pkg/httputil"
)

// maxBodyBytes caps request bodies at 1MB.
const maxBodyBytes = 1 << 20

var errNotObject = errors.New("request body must be a JSON object")

// documentService is the set of operations every collection supports.
type documentService interface {
	Create(ctx context.Context, doc domain.Document) (string, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	Update(ctx context.Context, id string, fields domain.Document) (domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (domain.DeleteResult, error)
}

// documentHandler serves the create, fetch, update and delete endpoints of
// one collection. Every failure is written in-band with HTTP 200.
type documentHandler struct {
	svc    documentService
	entity string
	logger *slog.Logger
}

// Create handles POST and replies {success, message, id}.
func (h *documentHandler) Create(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(w, r)
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldMessage, h.logger)
		return
	}

	id, err := h.svc.Create(r.Context(), doc)
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldMessage, h.logger)
		return
	}

	httputil.WriteSuccess(w, fmt.Sprintf("%s added with id %s", h.entity, id), id)
}

// Get writes the document, or JSON null when no document has the id.
func (h *documentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}
	if doc == nil {
		httputil.WriteJSON(w, http.StatusOK, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

// Update merges the body into the document. Zero matches is a failure.
func (h *documentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	fields, err := decodeDocument(w, r)
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}

	res, err := h.svc.Update(r.Context(), id, fields)
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}

	if res.MatchedCount == 0 {
		httputil.WriteJSON(w, http.StatusOK, httputil.Envelope{
			Success: false,
			Message: fmt.Sprintf("No %s found with id %s", strings.ToLower(h.entity), id),
		})
		return
	}

	httputil.WriteSuccess(w, h.entity+" updated successfully", "")
}

// Delete writes the raw deletion result.
func (h *documentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// decodeDocument reads a single JSON object from the body.
func decodeDocument(w http.ResponseWriter, r *http.Request) (domain.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var doc domain.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errNotObject
		}
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if doc == nil {
		return nil, errNotObject
	}
	return doc, nil
}
