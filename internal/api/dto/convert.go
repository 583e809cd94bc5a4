package dto

import "route-generation-service/internal/domain"

func NewRouteResponse(r *domain.RoutePart, withScore bool) RouteResponse {
	res := RouteResponse{
		ID:          r.ID,
		ExternalID:  r.ExternalID,
		Title:       r.Title,
		Description: r.Description,
		OwnerID:     r.OwnerID,
		Distance:    r.Distance,
		IsRoute:     r.IsRoute,
		IsGenerated: r.IsGenerated,
		PartIDs:     r.PartIDs,
		CreatedAt:   r.CreatedAt,
	}
	if res.PartIDs == nil {
		res.PartIDs = []int64{}
	}
	if withScore {
		score := r.FamiliarityScore
		res.FamiliarityScore = &score
	}
	if len(r.Points) > 0 {
		res.Coordinates = make([][2]float64, 0, len(r.Points))
		for _, p := range r.Points {
			res.Coordinates = append(res.Coordinates, p.Coordinates.LonLat())
		}
	}
	return res
}

func NewSearchResultResponse(r *domain.SearchResult) SearchResultResponse {
	res := SearchResultResponse{
		ID:                r.ID,
		UserID:            r.UserID,
		Distance:          r.Distance,
		Preference:        string(r.Preference),
		Routes:            make([]RouteResponse, 0, len(r.Routes)),
		FamiliarityScores: r.FamiliarityScores,
		CreatedAt:         r.CreatedAt,
	}
	if res.FamiliarityScores == nil {
		res.FamiliarityScores = []float64{}
	}
	for _, route := range r.Routes {
		res.Routes = append(res.Routes, NewRouteResponse(route, true))
	}
	return res
}
