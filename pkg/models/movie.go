package models

type MovieBatchRequest struct {
	MovieIDs []int `json:"movie_ids" binding:"required,min=1" validate:"required,min=1,dive,gt=0"`
}

// MovieDetails mirrors the subset of the TMDB movie payload the frontend
// consumes. Unknown fields in the upstream response are ignored.
type MovieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Genres      []Genre `json:"genres,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
