package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
)

var errTxDone = errors.New("transaction already finished")

// memStore is an in-memory Store.  A transaction holds the store's only
// slot from Begin until Commit or Rollback, so transactions serialise
// exactly like row locks on a single movie would.  Rollback replays an
// undo log.
type memStore struct {
	slot      chan struct{}
	customers map[uint64]model.Customer
	movies    map[uint64]model.Movie
	rentals   map[uint64]model.Rental
	nextID    uint64

	// failure injection
	adjustErr   error
	adjustPanic bool
	commitErr   error
}

func newMemStore() *memStore {
	return &memStore{
		slot:      make(chan struct{}, 1),
		customers: map[uint64]model.Customer{},
		movies:    map[uint64]model.Movie{},
		rentals:   map[uint64]model.Rental{},
	}
}

func (s *memStore) acquire(ctx context.Context) error {
	select {
	case s.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *memStore) release() { <-s.slot }

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return &memTx{s: s}, nil
}

func (s *memStore) Rental(ctx context.Context, id uint64) (*model.Rental, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	r, ok := s.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	return &r, nil
}

func (s *memStore) Rentals(ctx context.Context) ([]model.Rental, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	out := make([]model.Rental, 0, len(s.rentals))
	for _, r := range s.rentals {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// stock reads a movie's stock outside any transaction.
func (s *memStore) stock(id uint64) int {
	s.slot <- struct{}{}
	defer s.release()
	return s.movies[id].NumberInStock
}

func (s *memStore) rentalCount() int {
	s.slot <- struct{}{}
	defer s.release()
	return len(s.rentals)
}

type memTx struct {
	s    *memStore
	undo []func()
	done bool
}

func (t *memTx) Customer(_ context.Context, id uint64) (*model.Customer, error) {
	c, ok := t.s.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (t *memTx) Movie(_ context.Context, id uint64) (*model.Movie, error) {
	m, ok := t.s.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &m, nil
}

func (t *memTx) AdjustStock(ctx context.Context, movieID uint64, delta int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.s.adjustPanic {
		panic("stock adjustment exploded")
	}
	if t.s.adjustErr != nil {
		return t.s.adjustErr
	}
	m, ok := t.s.movies[movieID]
	if !ok {
		return repository.ErrMovieNotFound
	}
	if m.NumberInStock+delta < 0 {
		return repository.ErrOutOfStock
	}
	prev := m
	m.NumberInStock += delta
	t.s.movies[movieID] = m
	t.undo = append(t.undo, func() { t.s.movies[movieID] = prev })
	return nil
}

func (t *memTx) InsertRental(_ context.Context, r *model.Rental) error {
	t.s.nextID++
	r.ID = t.s.nextID
	t.s.rentals[r.ID] = *r
	id := r.ID
	t.undo = append(t.undo, func() { delete(t.s.rentals, id) })
	return nil
}

func (t *memTx) RentalForUpdate(_ context.Context, id uint64) (*model.Rental, error) {
	r, ok := t.s.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	return &r, nil
}

func (t *memTx) CloseRental(_ context.Context, id uint64, at time.Time) error {
	r, ok := t.s.rentals[id]
	if !ok || r.DateIn != nil {
		return repository.ErrRentalNotFound
	}
	prev := r
	r.DateIn = &at
	t.s.rentals[id] = r
	t.undo = append(t.undo, func() { t.s.rentals[id] = prev })
	return nil
}

func (t *memTx) DeleteRental(_ context.Context, id uint64) error {
	r, ok := t.s.rentals[id]
	if !ok {
		return repository.ErrRentalNotFound
	}
	delete(t.s.rentals, id)
	t.undo = append(t.undo, func() { t.s.rentals[id] = r })
	return nil
}

func (t *memTx) UpdateCustomerSnapshot(_ context.Context, id uint64, c model.CustomerSnapshot) error {
	r, ok := t.s.rentals[id]
	if !ok {
		return repository.ErrRentalNotFound
	}
	prev := r
	r.CustomerSnapshot = c
	t.s.rentals[id] = r
	t.undo = append(t.undo, func() { t.s.rentals[id] = prev })
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errTxDone
	}
	if err := t.s.commitErr; err != nil {
		// A failed commit ends the transaction, as database/sql does.
		t.abort()
		return err
	}
	t.done = true
	t.s.release()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return errTxDone
	}
	t.abort()
	return nil
}

func (t *memTx) abort() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.done = true
	t.s.release()
}
