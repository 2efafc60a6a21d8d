// This file defines the genre repository.  Genres are referenced by
// movies through an embedded copy of their id and name, so there is no
// foreign key and deleting a genre never cascades.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

// GenreRepo encapsulates all database queries related to genres.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the provided DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

// Create inserts a new genre and populates its ID and timestamps.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO genres (name) VALUES (?)", g.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	const qSelect = "SELECT name, created_at, updated_at FROM genres WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, g.ID).Scan(&g.Name, &g.CreatedAt, &g.UpdatedAt)
}

// GetByID fetches a genre by its ID.  It returns ErrGenreNotFound if no
// row is found.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	const q = "SELECT id, name, created_at, updated_at FROM genres WHERE id = ?"
	var g model.Genre
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return &g, nil
}

// List returns all genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	const q = "SELECT id, name, created_at, updated_at FROM genres ORDER BY name, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Genre, 0)
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Update renames a genre.  Movies keep the name they were saved with.
func (r *GenreRepo) Update(ctx context.Context, g *model.Genre) error {
	if _, err := r.GetByID(ctx, g.ID); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE genres SET name = ? WHERE id = ?", g.Name, g.ID); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, g.ID)
	if err != nil {
		return err
	}
	*g = *stored
	return nil
}

// Delete removes the genre and returns it.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) (*model.Genre, error) {
	g, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM genres WHERE id = ?", id); err != nil {
		return nil, err
	}
	return g, nil
}
