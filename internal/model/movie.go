package model

import "time"

// Movie is a film in the catalog.  Movies are reference data maintained by
// administrators; sessions point at a movie to obtain its duration.
// Deactivating a movie hides it from the public catalog but does not touch
// sessions that already reference it.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – movie title.
//  Description     – synopsis text.
//  PosterURL       – optional poster image URL.
//  DurationMinutes – running time in minutes, always > 0.
//  Director        – director name.
//  Genre           – genre label used for catalog filtering.
//  ReleaseYear     – year of release.
//  Rating          – optional rating on a 0..10 scale.
//  IsActive        – whether the movie is visible in the catalog.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Movie struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PosterURL       *string   `json:"poster_url,omitempty"`
	DurationMinutes uint32    `json:"duration_minutes"`
	Director        string    `json:"director"`
	Genre           string    `json:"genre"`
	ReleaseYear     uint16    `json:"release_year"`
	Rating          *float64  `json:"rating,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Duration returns the movie's running time as a time.Duration.  Session
// intervals are computed as [start, start+Duration).
func (m *Movie) Duration() time.Duration {
	return time.Duration(m.DurationMinutes) * time.Minute
}
