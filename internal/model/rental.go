package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalDays is the fixed rental period used to price a rental.
const RentalDays = 10

// Rental status values.  They are derived from DateIn and never stored.
const (
	RentalOpen   = "OPEN"
	RentalClosed = "CLOSED"
)

// CustomerSnapshot is the part of a customer copied into a rental when
// it opens.  It is never re-synced with the customers table.
type CustomerSnapshot struct {
	Name  string `json:"name"`  // rentals.customer_name
	Phone string `json:"phone"` // rentals.customer_phone
}

// MovieSnapshot is the movie as it looked when the rental opened.
// NumberInStock records the shelf count observed before the copy left.
type MovieSnapshot struct {
	ID              uint64          `json:"id"`              // rentals.movie_id
	Title           string          `json:"title"`           // rentals.movie_title
	Genre           GenreRef        `json:"genre"`           // rentals.movie_genre_id, rentals.movie_genre_name
	DailyRentalRate decimal.Decimal `json:"dailyRentalRate"` // rentals.movie_daily_rental_rate
	NumberInStock   int             `json:"numberInStock"`   // rentals.movie_number_in_stock
	Liked           bool            `json:"liked"`           // rentals.movie_liked
}

// Rental records one customer borrowing one copy of a movie.
//
// Fields:
//  ID               – primary key identifier, immutable.
//  CustomerSnapshot – customer name and phone at opening time.
//  MovieSnapshot    – movie attributes at opening time.
//  RentalFee        – DailyRentalRate × RentalDays, fixed at opening.
//  DateOut          – when the copy left the shelf.
//  DateIn           – when it came back; nil while the rental is open.
type Rental struct {
	ID               uint64           `json:"id"`               // rentals.id
	CustomerSnapshot CustomerSnapshot `json:"customerSnapshot"` // rentals.customer_*
	MovieSnapshot    MovieSnapshot    `json:"movieSnapshot"`    // rentals.movie_*
	RentalFee        decimal.Decimal  `json:"rentalFee"`        // rentals.rental_fee
	DateOut          time.Time        `json:"dateOut"`          // rentals.date_out
	DateIn           *time.Time       `json:"dateIn"`           // rentals.date_in (nullable)
}

// IsOpen reports whether the copy is still out with the customer.
func (r *Rental) IsOpen() bool { return r.DateIn == nil }

// Status returns RentalOpen or RentalClosed.
func (r *Rental) Status() string {
	if r.IsOpen() {
		return RentalOpen
	}
	return RentalClosed
}

// RentalFeeFor prices a rental of the given daily rate.
func RentalFeeFor(dailyRate decimal.Decimal) decimal.Decimal {
	return dailyRate.Mul(decimal.NewFromInt(RentalDays))
}
