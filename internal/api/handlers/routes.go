package handlers

import (
	"errors"
	"net/http"
	"route-generation-service/internal/api/dto"
	"route-generation-service/internal/ports"
	"strconv"

	"github.com/go-chi/chi/v5"
)

var (
	errInvalidJSON = errors.New("invalid json body")
	errInvalidForm = errors.New("invalid form body")
)

// RouteHandler exposes read-only route retrieval.
type RouteHandler struct {
	Parts ports.RoutePartRepository
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "route id must be a positive integer")
		return
	}

	route, err := h.Parts.GetPart(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewRouteResponse(route, false))
}
