package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/joestump/joe-events/internal/store"
)

type categoriesAPIHandler struct {
	cats *store.CategoryStore
	log  *zap.Logger
}

// List returns the categories of published events with their event counts.
//
// @Summary      List category facets
// @Description  Categories that have at least one published event, ordered by name. Counts may lag writes by the cache TTL.
// @Tags         Categories
// @Produce      json
// @Success      200  {object}  CategoryListResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /categories [get]
func (h *categoriesAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	counts, err := h.cats.PublishedCounts(r.Context())
	if err != nil {
		h.log.Error("api category counts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	resp := CategoryListResponse{Categories: make([]CategoryCountResponse, 0, len(counts))}
	for _, c := range counts {
		resp.Categories = append(resp.Categories, CategoryCountResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}
