// Package ledger owns the lifecycle of rentals and keeps every movie's
// stock count consistent with it.  Opening a rental takes one copy off
// the shelf; closing it, or deleting it while still open, puts the copy
// back.  Each operation runs in a single storage transaction bounded by
// a timeout, so a caller sees either the whole change or none of it.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/queue"
)

// DefaultTimeout bounds an operation when no WithTimeout option is given.
const DefaultTimeout = 5 * time.Second

// DefaultPublishTimeout bounds how long a committed change waits on the
// Publisher before the caller gets its response.
const DefaultPublishTimeout = 3 * time.Second

// Publisher receives an event after each committed change.
type Publisher interface {
	Publish(ctx context.Context, ev queue.RentalEvent) error
}

// Ledger is safe for concurrent use; consistency between concurrent
// callers is provided by the Store's transactions.
type Ledger struct {
	store   Store
	pub     Publisher
	log     *zap.Logger
	tracer  trace.Tracer
	timeout time.Duration
	pubWait time.Duration
	now     func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher sets where committed changes are announced.
func WithPublisher(p Publisher) Option { return func(l *Ledger) { l.pub = p } }

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option { return func(l *Ledger) { l.log = log } }

// WithTimeout bounds each operation.  Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithPublishTimeout bounds each Publish call.  Non-positive values are
// ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.pubWait = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option { return func(l *Ledger) { l.tracer = t } }

// New returns a Ledger over store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:   store,
		log:     zap.NewNop(),
		tracer:  otel.Tracer("github.com/iliyamo/video-rental/internal/ledger"),
		timeout: DefaultTimeout,
		pubWait: DefaultPublishTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open rents one copy of a movie to a customer.  Both records are read
// in the same transaction that inserts the rental and decrements stock;
// the decrement is conditional, so two callers racing for the last copy
// cannot both succeed.
func (l *Ledger) Open(ctx context.Context, customerID, movieID uint64) (*model.Rental, error) {
	if customerID == 0 {
		return nil, newError(ValidationError, "customerId must be a positive integer", nil)
	}
	if movieID == 0 {
		return nil, newError(ValidationError, "movieId must be a positive integer", nil)
	}
	ctx, span := l.tracer.Start(ctx, "ledger.Open", trace.WithAttributes(
		attribute.Int64("customer.id", int64(customerID)),
		attribute.Int64("movie.id", int64(movieID)),
	))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var rental *model.Rental
	err := l.withinTx(ctx, func(tx Tx) error {
		customer, err := tx.Customer(ctx, customerID)
		if err != nil {
			return err
		}
		movie, err := tx.Movie(ctx, movieID)
		if err != nil {
			return err
		}
		if movie.NumberInStock <= 0 {
			return newError(OutOfStock, "movie not in stock", nil)
		}
		snap, err := snapshotMovie(movie)
		if err != nil {
			return err
		}
		r := &model.Rental{
			CustomerSnapshot: customer.Snapshot(),
			MovieSnapshot:    snap,
			RentalFee:        model.RentalFeeFor(movie.DailyRentalRate),
			DateOut:          l.now().UTC(),
		}
		if err := tx.InsertRental(ctx, r); err != nil {
			return err
		}
		if err := tx.AdjustStock(ctx, movieID, -1); err != nil {
			return err
		}
		rental = r
		return nil
	})
	if err != nil {
		return nil, l.fail(ctx, span, "open", err)
	}
	span.SetAttributes(attribute.Int64("rental.id", int64(rental.ID)))
	l.log.Info("rental opened",
		zap.Uint64("rental_id", rental.ID),
		zap.Uint64("customer_id", customerID),
		zap.Uint64("movie_id", movieID),
		zap.String("fee", rental.RentalFee.String()))
	l.publish(ctx, queue.EventRentalOpened, rental)
	return rental, nil
}

// Close records the return of an open rental and puts the copy back in
// stock.  Closing an already closed rental fails with InvalidState and
// changes nothing.
func (l *Ledger) Close(ctx context.Context, rentalID uint64) (*model.Rental, error) {
	if rentalID == 0 {
		return nil, newError(ValidationError, "rental id must be a positive integer", nil)
	}
	ctx, span := l.tracer.Start(ctx, "ledger.Close",
		trace.WithAttributes(attribute.Int64("rental.id", int64(rentalID))))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var rental *model.Rental
	err := l.withinTx(ctx, func(tx Tx) error {
		r, err := tx.RentalForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if !r.IsOpen() {
			return newError(InvalidState, "rental already closed", nil)
		}
		at := l.now().UTC()
		if err := tx.CloseRental(ctx, rentalID, at); err != nil {
			return err
		}
		if err := tx.AdjustStock(ctx, r.MovieSnapshot.ID, +1); err != nil {
			return err
		}
		r.DateIn = &at
		rental = r
		return nil
	})
	if err != nil {
		return nil, l.fail(ctx, span, "close", err)
	}
	l.log.Info("rental closed",
		zap.Uint64("rental_id", rental.ID),
		zap.Uint64("movie_id", rental.MovieSnapshot.ID))
	l.publish(ctx, queue.EventRentalClosed, rental)
	return rental, nil
}

// Delete removes a rental.  If it was still open the copy goes back in
// stock; a closed rental already returned its copy.  The deleted rental
// is returned.
func (l *Ledger) Delete(ctx context.Context, rentalID uint64) (*model.Rental, error) {
	if rentalID == 0 {
		return nil, newError(ValidationError, "rental id must be a positive integer", nil)
	}
	ctx, span := l.tracer.Start(ctx, "ledger.Delete",
		trace.WithAttributes(attribute.Int64("rental.id", int64(rentalID))))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var rental *model.Rental
	err := l.withinTx(ctx, func(tx Tx) error {
		r, err := tx.RentalForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if err := tx.DeleteRental(ctx, rentalID); err != nil {
			return err
		}
		if r.IsOpen() {
			if err := tx.AdjustStock(ctx, r.MovieSnapshot.ID, +1); err != nil {
				return err
			}
		}
		rental = r
		return nil
	})
	if err != nil {
		return nil, l.fail(ctx, span, "delete", err)
	}
	l.log.Info("rental deleted",
		zap.Uint64("rental_id", rental.ID),
		zap.String("status", rental.Status()))
	l.publish(ctx, queue.EventRentalDeleted, rental)
	return rental, nil
}

// AmendCustomer corrects the customer name and phone recorded on a
// rental.  An empty field keeps the value already stored.  Stock is not
// touched.
func (l *Ledger) AmendCustomer(ctx context.Context, rentalID uint64, c model.CustomerSnapshot) (*model.Rental, error) {
	if rentalID == 0 {
		return nil, newError(ValidationError, "rental id must be a positive integer", nil)
	}
	ctx, span := l.tracer.Start(ctx, "ledger.AmendCustomer",
		trace.WithAttributes(attribute.Int64("rental.id", int64(rentalID))))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var rental *model.Rental
	err := l.withinTx(ctx, func(tx Tx) error {
		r, err := tx.RentalForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if c.Name == "" {
			c.Name = r.CustomerSnapshot.Name
		}
		if c.Phone == "" {
			c.Phone = r.CustomerSnapshot.Phone
		}
		if err := tx.UpdateCustomerSnapshot(ctx, rentalID, c); err != nil {
			return err
		}
		r.CustomerSnapshot = c
		rental = r
		return nil
	})
	if err != nil {
		return nil, l.fail(ctx, span, "amend customer", err)
	}
	return rental, nil
}

// Get returns one rental.
func (l *Ledger) Get(ctx context.Context, rentalID uint64) (*model.Rental, error) {
	if rentalID == 0 {
		return nil, newError(ValidationError, "rental id must be a positive integer", nil)
	}
	ctx, span := l.tracer.Start(ctx, "ledger.Get")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	r, err := l.store.Rental(ctx, rentalID)
	if err != nil {
		return nil, l.fail(ctx, span, "get", err)
	}
	return r, nil
}

// List returns all rentals, most recently opened first.
func (l *Ledger) List(ctx context.Context) ([]model.Rental, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.List")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	rs, err := l.store.Rentals(ctx)
	if err != nil {
		return nil, l.fail(ctx, span, "list", err)
	}
	if rs == nil {
		rs = []model.Rental{}
	}
	return rs, nil
}

// withinTx runs fn in a transaction, commits if fn succeeds and rolls
// back on every other exit, including a panic inside fn.  A failed
// Commit already ends the transaction, so no rollback follows it.
func (l *Ledger) withinTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := l.store.Begin(ctx)
	if err != nil {
		return err
	}
	finished := false
	defer func() {
		if finished {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			l.log.Warn("rollback failed", zap.Error(rbErr))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	finished = true
	return tx.Commit()
}

func (l *Ledger) fail(ctx context.Context, span trace.Span, op string, err error) error {
	if _, ok := KindOf(err); !ok && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = newError(Timeout, "operation timed out", err)
	}
	err = classify(op, err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if kind, ok := KindOf(err); ok {
		span.SetAttributes(attribute.String("ledger.error_kind", string(kind)))
		l.log.Debug("ledger operation rejected", zap.String("op", op), zap.String("kind", string(kind)), zap.Error(err))
	} else {
		l.log.Error("ledger operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

// publish announces a committed change.  Delivery failures are logged
// and never reported to the caller: the change is already durable.
func (l *Ledger) publish(ctx context.Context, eventType string, r *model.Rental) {
	if l.pub == nil {
		return
	}
	ev := queue.NewRentalEvent(eventType, r, l.now())
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.pubWait)
	defer cancel()
	if err := l.pub.Publish(ctx, ev); err != nil {
		l.log.Warn("rental event not published",
			zap.String("type", eventType),
			zap.Uint64("rental_id", r.ID),
			zap.Error(err))
	}
}

func snapshotMovie(m *model.Movie) (model.MovieSnapshot, error) {
	var snap model.MovieSnapshot
	if err := copier.Copy(&snap, m); err != nil {
		return snap, fmt.Errorf("snapshot movie %d: %w", m.ID, err)
	}
	return snap, nil
}
