package models

// Recommendation is a single ranked entry returned by the engine: the
// external movie id, the raw score produced by whichever scorer ran, and a
// best-effort display title (empty when the catalog has none).
type Recommendation struct {
	MovieID int     `json:"movie_id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
}

// ScoredMovie is the raw scorer output before title enrichment.
type ScoredMovie struct {
	MovieID int     `json:"movie_id"`
	Score   float64 `json:"score"`
}

type RecommendationRequest struct {
	FavoriteMovieIDs []int `json:"favorite_movie_ids" binding:"required"`
}

type RecommendationResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Algorithm       string           `json:"algorithm"`
	CacheHit        bool             `json:"cache_hit"`
}
