package model

import "time"

// Genre classifies movies.  Movies embed a copy of the genre (see
// GenreRef) rather than joining this table, so renaming a genre does
// not rewrite existing movies.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name, 3..50 characters.
//  CreatedAt – timestamp when the genre was created.
//  UpdatedAt – timestamp of last update.
type Genre struct {
	ID        uint64    `json:"id"`        // genres.id
	Name      string    `json:"name"`      // genres.name
	CreatedAt time.Time `json:"createdAt"` // genres.created_at
	UpdatedAt time.Time `json:"updatedAt"` // genres.updated_at
}

// GenreRef is the embedded {id, name} pair stored on a movie.
type GenreRef struct {
	ID   uint64 `json:"id"`   // movies.genre_id
	Name string `json:"name"` // movies.genre_name
}

// Ref returns the embeddable form of g.
func (g Genre) Ref() GenreRef {
	return GenreRef{ID: g.ID, Name: g.Name}
}
