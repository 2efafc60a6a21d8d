package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
)

// SQLStore implements Store on top of the MySQL repositories.
type SQLStore struct {
	db        *sql.DB
	customers *repository.CustomerRepo
	movies    *repository.MovieRepo
	rentals   *repository.RentalRepo
}

// NewSQLStore builds a Store backed by db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:        db,
		customers: repository.NewCustomerRepo(db),
		movies:    repository.NewMovieRepo(db),
		rentals:   repository.NewRentalRepo(db),
	}
}

func (s *SQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return &sqlTx{tx: tx, s: s}, nil
}

func (s *SQLStore) Rental(ctx context.Context, id uint64) (*model.Rental, error) {
	return s.rentals.GetByID(ctx, id)
}

func (s *SQLStore) Rentals(ctx context.Context) ([]model.Rental, error) {
	return s.rentals.List(ctx)
}

type sqlTx struct {
	tx *sql.Tx
	s  *SQLStore
}

func (t *sqlTx) Customer(ctx context.Context, id uint64) (*model.Customer, error) {
	return t.s.customers.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlTx) Movie(ctx context.Context, id uint64) (*model.Movie, error) {
	return t.s.movies.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlTx) AdjustStock(ctx context.Context, movieID uint64, delta int) error {
	return t.s.movies.AdjustStockTx(ctx, t.tx, movieID, delta)
}

func (t *sqlTx) InsertRental(ctx context.Context, r *model.Rental) error {
	return t.s.rentals.InsertTx(ctx, t.tx, r)
}

func (t *sqlTx) RentalForUpdate(ctx context.Context, id uint64) (*model.Rental, error) {
	return t.s.rentals.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlTx) CloseRental(ctx context.Context, id uint64, at time.Time) error {
	return t.s.rentals.CloseTx(ctx, t.tx, id, at)
}

func (t *sqlTx) DeleteRental(ctx context.Context, id uint64) error {
	return t.s.rentals.DeleteTx(ctx, t.tx, id)
}

func (t *sqlTx) UpdateCustomerSnapshot(ctx context.Context, id uint64, c model.CustomerSnapshot) error {
	return t.s.rentals.UpdateCustomerSnapshotTx(ctx, t.tx, id, c)
}

func (t *sqlTx) Commit() error   { return repository.Classify(t.tx.Commit()) }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }
