package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	"github.com/AsimRauf/jewellery-store-sub002/internal/service"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/httputil"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/validator"
)

// CatalogHandler handles the admin endpoints writing catalog records.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog admin HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpsertRecordsRequest is the JSON request body for a bulk upsert.
type UpsertRecordsRequest struct {
	Records []domain.ProductRecord `json:"records" validate:"required,min=1,max=500,dive"`
}

// UpsertRecordsResponse reports how many records were written.
type UpsertRecordsResponse struct {
	Category string `json:"category"`
	Upserted int    `json:"upserted"`
}

// --- Handlers ---

// UpsertRecords handles PUT /api/v1/catalog/{category}/records
func (h *CatalogHandler) UpsertRecords(w http.ResponseWriter, r *http.Request) {
	var req UpsertRecordsRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	category := chi.URLParam(r, "category")
	n, err := h.service.Upsert(r.Context(), category, req.Records)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: UpsertRecordsResponse{Category: category, Upserted: n},
	})
}

// DeleteRecord handles DELETE /api/v1/catalog/{category}/records/{id}
func (h *CatalogHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "category"), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, err)
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}
