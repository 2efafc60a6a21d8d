// This file defines the customer repository.  Customers are plain
// records: the rental ledger reads them inside its transactions but a
// rental keeps only a snapshot, so customers may be edited or removed
// without touching rental history.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/video-rental/internal/model"
)

// CustomerRepo encapsulates all database queries related to customers.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo constructs a CustomerRepo with the provided DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

const customerColumns = "id, name, phone, is_gold, created_at, updated_at"

func scanCustomer(row interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.IsGold, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new customer.  On success the ID and timestamp
// fields of c are populated from the stored row.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (name, phone, is_gold) VALUES (?, ?, ?)", c.Name, c.Phone, c.IsGold)
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
	*c = *stored
	return nil
}

// GetByID fetches a customer by id.  It returns ErrCustomerNotFound if
// no row exists.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id))
}

// GetByIDTx is GetByID inside the caller's transaction.
func (r *CustomerRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Customer, error) {
	c, err := scanCustomer(tx.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id))
	return c, Classify(err)
}

// List returns all customers ordered by name.
func (r *CustomerRepo) List(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update overwrites name, phone and gold flag.  It returns
// ErrCustomerNotFound when the id does not exist.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	if _, err := r.GetByID(ctx, c.ID); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE customers SET name = ?, phone = ?, is_gold = ? WHERE id = ?",
		c.Name, c.Phone, c.IsGold, c.ID); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// Delete removes a customer and returns the row as it was.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) (*model.Customer, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id); err != nil {
		return nil, err
	}
	return c, nil
}
