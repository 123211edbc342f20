package http

import (
	"log/slog"
	"net/http"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/service"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/httputil"
)

// SearchHandler handles HTTP requests for the catalog search endpoint.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// Search handles GET /api/v1/search. The body is the bare search response;
// errors use a flat {"error": message} body.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	fs, err := domain.ParseFilterState(r.URL.Query())
	if err != nil {
		httputil.WriteMessage(w, r, err, h.logger)
		return
	}

	resp, err := h.service.Search(r.Context(), fs)
	if err != nil {
		httputil.WriteMessage(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
