package model

import "time"

type Collection struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	VectorSize int       `json:"vector_size"`
	Distance   Distance  `json:"distance"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateCollectionRequest struct {
	Name       string   `json:"name" binding:"required"`
	VectorSize int      `json:"vector_size" binding:"required,min=1"`
	Distance   Distance `json:"distance"`
}

type CollectionListResponse struct {
	Collections []Collection `json:"collections"`
}

type Point struct {
	ID      int64          `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

type UpsertPointRequest struct {
	Collection string         `json:"collection" binding:"required"`
	ID         int64          `json:"id" binding:"required,min=1"`
	Vector     []float32      `json:"vector" binding:"required"`
	Payload    map[string]any `json:"payload"`
}

type DeletePointsRequest struct {
	Collection string  `json:"collection" binding:"required"`
	IDs        []int64 `json:"ids" binding:"required,min=1"`
}

type PointListResponse struct {
	Points []Point `json:"points"`
	Count  int     `json:"count"`
}

type SearchRequest struct {
	Collection     string    `json:"collection" binding:"required"`
	Vector         []float32 `json:"vector" binding:"required"`
	Limit          int       `json:"limit"`
	WithPayload    *bool     `json:"with_payload"`
	ScoreThreshold *float32  `json:"score_threshold"`
}

// SearchHit carries the score shape callers filter on, not the raw pgvector
// distance; see the score conversion in the vector service.
type SearchHit struct {
	ID      int64          `json:"id"`
	Score   float32        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
}

type SearchResponse struct {
	Results []SearchHit `json:"results"`
}
