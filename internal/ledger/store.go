package ledger

import (
	"context"
	"time"

	"github.com/iliyamo/video-rental/internal/model"
)

// Tx is one storage transaction.  Every method runs inside it and
// nothing becomes visible to other transactions until Commit.
type Tx interface {
	Customer(ctx context.Context, id uint64) (*model.Customer, error)
	Movie(ctx context.Context, id uint64) (*model.Movie, error)
	// AdjustStock adds delta to the movie's stock atomically, failing
	// with repository.ErrOutOfStock if the result would be negative.
	AdjustStock(ctx context.Context, movieID uint64, delta int) error
	InsertRental(ctx context.Context, r *model.Rental) error
	// RentalForUpdate reads a rental and locks it until the tx ends.
	RentalForUpdate(ctx context.Context, id uint64) (*model.Rental, error)
	CloseRental(ctx context.Context, id uint64, at time.Time) error
	DeleteRental(ctx context.Context, id uint64) error
	UpdateCustomerSnapshot(ctx context.Context, id uint64, c model.CustomerSnapshot) error
	Commit() error
	Rollback() error
}

// Store opens transactions and serves the ledger's plain reads.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	Rental(ctx context.Context, id uint64) (*model.Rental, error)
	Rentals(ctx context.Context) ([]model.Rental, error)
}
