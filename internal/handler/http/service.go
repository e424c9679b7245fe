package http

import (
	"log/slog"
	"net/http"

	"github.com/journalist-service/server/internal/service"
	"github.com/journalist-service/server/pkg/httputil"
	"github.com/journalist-service/server/pkg/pagination"
)

// ServiceHandler handles HTTP requests for service documents.
type ServiceHandler struct {
	documentHandler
	catalog *service.CatalogService
}

// NewServiceHandler creates a new service HTTP handler.
func NewServiceHandler(svc *service.CatalogService, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{
		documentHandler: documentHandler{svc: svc, entity: "Service", logger: logger},
		catalog:         svc,
	}
}

// ListServices handles GET /services?page=&size= and writes {count, services}.
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}

	result, err := h.catalog.ListPage(r.Context(), page)
	if err != nil {
		httputil.WriteFailure(w, r, err, httputil.FieldError, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
