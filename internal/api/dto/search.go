package dto

import "time"

// SearchRequest is the JSON form of a search. Coordinates are "lat,lng".
type SearchRequest struct {
	Distance   *float64 `json:"distance"`
	Preference string   `json:"preference"`
	Duration   *float64 `json:"duration"`
	Difficulty string   `json:"difficulty"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Radius     *float64 `json:"radius"`
}

type RouteResponse struct {
	ID               int64        `json:"id"`
	ExternalID       int64        `json:"external_id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	OwnerID          string       `json:"owner_id"`
	Distance         float64      `json:"distance"`
	IsRoute          bool         `json:"is_route"`
	IsGenerated      bool         `json:"is_generated"`
	FamiliarityScore *float64     `json:"familiarity_score,omitempty"`
	PartIDs          []int64      `json:"part_ids"`
	Coordinates      [][2]float64 `json:"coordinates,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

type SearchResultResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Distance          float64         `json:"distance"`
	Preference        string          `json:"preference"`
	Routes            []RouteResponse `json:"routes"`
	FamiliarityScores []float64       `json:"familiarity_scores"`
	CreatedAt         time.Time       `json:"created_at"`
}
