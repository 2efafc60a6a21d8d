package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movie is a title in the rental inventory.  NumberInStock counts the
// copies currently on the shelf; it is decremented when a rental opens
// and incremented when the rental is returned or cancelled, always
// through an atomic conditional update so it never drops below zero.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – movie title, 5..50 characters.
//  Genre           – embedded genre id and name.
//  DailyRentalRate – price per day, 0..10.
//  NumberInStock   – copies available to rent.
//  Liked           – user-facing favourite flag.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Movie struct {
	ID              uint64          `json:"id"`              // movies.id
	Title           string          `json:"title"`           // movies.title
	Genre           GenreRef        `json:"genre"`           // movies.genre_id, movies.genre_name
	DailyRentalRate decimal.Decimal `json:"dailyRentalRate"` // movies.daily_rental_rate
	NumberInStock   int             `json:"numberInStock"`   // movies.number_in_stock
	Liked           bool            `json:"liked"`           // movies.liked
	CreatedAt       time.Time       `json:"createdAt"`       // movies.created_at
	UpdatedAt       time.Time       `json:"updatedAt"`       // movies.updated_at
}

