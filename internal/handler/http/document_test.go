package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/journalist-service/server/internal/domain"
)

var errStoreDown = errors.New("server selection timeout")

type failingService struct{}

func (failingService) Create(context.Context, domain.Document) (string, error) {
	return "", errStoreDown
}

func (failingService) Get(context.Context, string) (domain.Document, error) {
	return nil, errStoreDown
}

func (failingService) Update(context.Context, string, domain.Document) (domain.UpdateResult, error) {
	return domain.UpdateResult{}, errStoreDown
}

func (failingService) Delete(context.Context, string) (domain.DeleteResult, error) {
	return domain.DeleteResult{}, errStoreDown
}

func failingRouter() http.Handler {
	h := &documentHandler{
		svc:    failingService{},
		entity: "Review",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	r := chi.NewRouter()
	r.Post("/reviews", h.Create)
	r.Get("/reviews/{id}", h.Get)
	r.Patch("/reviews/{id}", h.Update)
	r.Delete("/reviews/{id}", h.Delete)
	return r
}

func TestDocumentHandler_StoreFailuresAreInBand(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   string
	}{
		{"create", http.MethodPost, "/reviews", `{"email":"a@x.com"}`, `{"success":false,"message":"server selection timeout"}`},
		{"get", http.MethodGet, "/reviews/65f1a2b3c4d5e6f708192a3b", "", `{"success":false,"error":"server selection timeout"}`},
		{"update", http.MethodPatch, "/reviews/65f1a2b3c4d5e6f708192a3b", `{"rating":1}`, `{"success":false,"error":"server selection timeout"}`},
		{"delete", http.MethodDelete, "/reviews/65f1a2b3c4d5e6f708192a3b", "", `{"success":false,"error":"server selection timeout"}`},
	}

	h := failingRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestDecodeDocument_BodyTooLarge(t *testing.T) {
	big := `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(big))
	rec := httptest.NewRecorder()

	doc, err := decodeDocument(rec, req)
	assert.Nil(t, doc)
	assert.Error(t, err)
}
