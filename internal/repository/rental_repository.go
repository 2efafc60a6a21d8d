package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/video-rental/internal/model"
)

// RentalRepo provides persistence for rentals.  A rental row carries
// flattened copies of the customer and movie taken when it opened; it
// has no foreign keys so that history survives edits and deletions of
// either.  Write methods take the caller's transaction: the ledger
// always pairs them with a stock adjustment.  All timestamps are UTC.
type RentalRepo struct {
	db *sql.DB
}

// NewRentalRepo returns a new RentalRepo bound to the given database.
func NewRentalRepo(db *sql.DB) *RentalRepo { return &RentalRepo{db: db} }

const rentalColumns = `id, customer_name, customer_phone,
	movie_id, movie_title, movie_genre_id, movie_genre_name, movie_daily_rental_rate,
	movie_number_in_stock, movie_liked, rental_fee, date_out, date_in`

func scanRental(row interface{ Scan(...any) error }) (*model.Rental, error) {
	var (
		r      model.Rental
		dateIn sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.CustomerSnapshot.Name, &r.CustomerSnapshot.Phone,
		&r.MovieSnapshot.ID, &r.MovieSnapshot.Title, &r.MovieSnapshot.Genre.ID, &r.MovieSnapshot.Genre.Name,
		&r.MovieSnapshot.DailyRentalRate, &r.MovieSnapshot.NumberInStock, &r.MovieSnapshot.Liked,
		&r.RentalFee, &r.DateOut, &dateIn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}
	if dateIn.Valid {
		t := dateIn.Time.UTC()
		r.DateIn = &t
	}
	r.DateOut = r.DateOut.UTC()
	return &r, nil
}

// InsertTx stores a new rental inside tx and sets its generated ID.
func (r *RentalRepo) InsertTx(ctx context.Context, tx *sql.Tx, rental *model.Rental) error {
	const q = `INSERT INTO rentals (customer_name, customer_phone,
		movie_id, movie_title, movie_genre_id, movie_genre_name, movie_daily_rental_rate,
		movie_number_in_stock, movie_liked, rental_fee, date_out, date_in)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var dateIn any
	if rental.DateIn != nil {
		dateIn = *rental.DateIn
	}
	c, m := rental.CustomerSnapshot, rental.MovieSnapshot
	res, err := tx.ExecContext(ctx, q,
		c.Name, c.Phone,
		m.ID, m.Title, m.Genre.ID, m.Genre.Name, m.DailyRentalRate, m.NumberInStock, m.Liked,
		rental.RentalFee, rental.DateOut, dateIn,
	)
	if err != nil {
		return Classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rental.ID = uint64(id)
	return nil
}

// GetForUpdateTx reads a rental and holds its row lock until tx ends.
// Concurrent close or delete attempts on the same rental serialise here.
func (r *RentalRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Rental, error) {
	rental, err := scanRental(tx.QueryRowContext(ctx,
		"SELECT "+rentalColumns+" FROM rentals WHERE id = ? FOR UPDATE", id))
	return rental, Classify(err)
}

// CloseTx stamps date_in on an open rental.  It reports
// ErrRentalNotFound when no open rental with that id exists.
func (r *RentalRepo) CloseTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE rentals SET date_in = ? WHERE id = ? AND date_in IS NULL", at, id)
	if err != nil {
		return Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRentalNotFound
	}
	return nil
}

// DeleteTx removes the rental row.
func (r *RentalRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM rentals WHERE id = ?", id)
	if err != nil {
		return Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRentalNotFound
	}
	return nil
}

// UpdateCustomerSnapshotTx rewrites the customer name and phone copied
// into a rental.  Stock is unaffected.
func (r *RentalRepo) UpdateCustomerSnapshotTx(ctx context.Context, tx *sql.Tx, id uint64, c model.CustomerSnapshot) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE rentals SET customer_name = ?, customer_phone = ? WHERE id = ?", c.Name, c.Phone, id)
	return Classify(err)
}

// GetByID returns a single rental.
func (r *RentalRepo) GetByID(ctx context.Context, id uint64) (*model.Rental, error) {
	return scanRental(r.db.QueryRowContext(ctx,
		"SELECT "+rentalColumns+" FROM rentals WHERE id = ?", id))
}

// List returns every rental, most recently opened first.
func (r *RentalRepo) List(ctx context.Context) ([]model.Rental, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+rentalColumns+" FROM rentals ORDER BY date_out DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Rental, 0)
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rental)
	}
	return out, rows.Err()
}
