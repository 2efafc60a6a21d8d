package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

// MovieRepo provides CRUD operations for movies and the stock counter
// used by the rental ledger.  The counter is only changed through
// AdjustStockTx or an explicit inventory edit via Update.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a new MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, title, genre_id, genre_name, daily_rental_rate, number_in_stock, liked, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
	var m model.Movie
	if err := row.Scan(
		&m.ID, &m.Title, &m.Genre.ID, &m.Genre.Name, &m.DailyRentalRate,
		&m.NumberInStock, &m.Liked, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a movie.  The caller resolves the genre beforehand.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, genre_id, genre_name, daily_rental_rate, number_in_stock, liked)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		m.Title, m.Genre.ID, m.Genre.Name, m.DailyRentalRate, m.NumberInStock, m.Liked)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*m = *stored
	return nil
}

// GetByID returns the movie or ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	return scanMovie(r.db.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
}

// GetByIDTx reads the movie inside tx without locking it.
func (r *MovieRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Movie, error) {
	m, err := scanMovie(tx.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	return m, Classify(err)
}

// List returns every movie ordered by title.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY title, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Update overwrites the editable columns of m, including the stock
// count, and reloads the row.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	if _, err := r.GetByID(ctx, m.ID); err != nil {
		return err
	}
	const q = `UPDATE movies SET title = ?, genre_id = ?, genre_name = ?, daily_rental_rate = ?,
		number_in_stock = ?, liked = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		m.Title, m.Genre.ID, m.Genre.Name, m.DailyRentalRate, m.NumberInStock, m.Liked, m.ID); err != nil {
		return Classify(err)
	}
	stored, err := r.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *stored
	return nil
}

// SetLiked flips the liked flag only.
func (r *MovieRepo) SetLiked(ctx context.Context, id uint64, liked bool) (*model.Movie, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE movies SET liked = ? WHERE id = ?", liked, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a movie that has no open rentals.  The movie row is
// locked first so a concurrent rental cannot open against it while the
// check runs; rentals that open afterwards find the movie gone.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) (*model.Movie, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	m, err := scanMovie(tx.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id = ? FOR UPDATE", id))
	if err != nil {
		return nil, Classify(err)
	}
	var open int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rentals WHERE movie_id = ? AND date_in IS NULL LOCK IN SHARE MODE", id,
	).Scan(&open); err != nil {
		return nil, Classify(err)
	}
	if open > 0 {
		return nil, ErrHasOpenRentals
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id); err != nil {
		return nil, Classify(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, Classify(err)
	}
	committed = true
	return m, nil
}

// AdjustStockTx adds delta to number_in_stock in a single conditional
// statement.  The row is changed only if the result stays non-negative.
// When no row changes it reports ErrMovieNotFound or ErrOutOfStock.
func (r *MovieRepo) AdjustStockTx(ctx context.Context, tx *sql.Tx, id uint64, delta int) error {
	const q = `UPDATE movies SET number_in_stock = number_in_stock + ?
		WHERE id = ? AND number_in_stock + ? >= 0`
	res, err := tx.ExecContext(ctx, q, delta, id, delta)
	if err != nil {
		return Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM movies WHERE id = ?", id).Scan(&exists)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrMovieNotFound
	case err != nil:
		return Classify(err)
	}
	return ErrOutOfStock
}
