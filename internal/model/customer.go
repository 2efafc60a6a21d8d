package model

import "time"

// Customer is a person who rents movies.  Rentals never reference a
// customer row directly; they carry a CustomerSnapshot taken when the
// rental was opened.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – full name, 5..50 characters.
//  Phone     – contact number, 7..10 characters.
//  IsGold    – gold membership flag.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Customer struct {
	ID        uint64    `json:"id"`        // customers.id
	Name      string    `json:"name"`      // customers.name
	Phone     string    `json:"phone"`     // customers.phone
	IsGold    bool      `json:"isGold"`    // customers.is_gold
	CreatedAt time.Time `json:"createdAt"` // customers.created_at
	UpdatedAt time.Time `json:"updatedAt"` // customers.updated_at
}

// Snapshot copies the fields a rental keeps about its customer.
func (c Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{Name: c.Name, Phone: c.Phone}
}
