package handlers

import (
	"context"
	"io"
	"mime"
	"net/http"
	"route-generation-service/internal/api/dto"
	"route-generation-service/internal/domain"
	"route-generation-service/internal/ports"
	"route-generation-service/internal/services"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// UserIDHeader carries the identity of the requesting rider. Authentication
// happens upstream of this service.
const UserIDHeader = "X-User-ID"

type RouteGenerator interface {
	Generate(ctx context.Context, q domain.Query) (*domain.SearchResult, error)
}

type SearchHandler struct {
	Generator    RouteGenerator
	Searches     ports.SearchResultRepository
	DefaultStart string
}

// Create runs the generation pipeline for the request parameters.
// Parameters come from the query string, a form body or a JSON body.
func (h *SearchHandler) Create(w http.ResponseWriter, r *http.Request) {
	params, err := searchParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q, err := services.BuildQuery(params, r.Header.Get(UserIDHeader), h.DefaultStart)
	if err != nil {
		writeServiceError(w, r, "build query", err)
		return
	}

	result, err := h.Generator.Generate(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, "generate routes", err)
		return
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	writeJSON(w, r, status, dto.NewSearchResultResponse(result))
}

func (h *SearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.Searches.GetSearchResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "get search result", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSearchResultResponse(result))
}

func searchParams(r *http.Request) (services.SearchParams, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if r.Method == http.MethodPost && mediaType == "application/json" {
		var req dto.SearchRequest
		dec := json.NewDecoder(r.Body)
		defer r.Body.Close()
		dec.DisallowUnknownFields()

		if err := dec.Decode(&req); err != nil && err != io.EOF {
			return services.SearchParams{}, errInvalidJSON
		}
		return services.SearchParams{
			Distance:   formatOptional(req.Distance),
			Preference: req.Preference,
			Duration:   formatOptional(req.Duration),
			Difficulty: req.Difficulty,
			Start:      req.Start,
			End:        req.End,
			Radius:     formatOptional(req.Radius),
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return services.SearchParams{}, errInvalidForm
	}
	return services.SearchParams{
		Distance:   r.Form.Get("distance"),
		Preference: r.Form.Get("preference"),
		Duration:   r.Form.Get("duration"),
		Difficulty: r.Form.Get("difficulty"),
		Start:      r.Form.Get("start"),
		End:        r.Form.Get("end"),
		Radius:     r.Form.Get("radius"),
	}, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
