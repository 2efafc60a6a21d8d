// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/video-rental/internal/model"
)

// RentalQueueName is the durable queue every rental event is routed to.
const RentalQueueName = "rental.events"

// Rental event types.
const (
	EventRentalOpened  = "rental.opened"
	EventRentalClosed  = "rental.closed"
	EventRentalDeleted = "rental.deleted"
)

// RentalEvent is published after a rental change has been committed.
// It contains enough information for downstream consumers to log or
// trigger analytics without querying the primary database.
type RentalEvent struct {
	EventID      string          `json:"event_id"`
	Type         string          `json:"type"`
	RentalID     uint64          `json:"rental_id"`
	MovieID      uint64          `json:"movie_id"`
	CustomerName string          `json:"customer_name"`
	MovieTitle   string          `json:"movie_title"`
	RentalFee    decimal.Decimal `json:"rental_fee"`
	Status       string          `json:"status"`
	OccurredAt   string          `json:"occurred_at"`
}

// NewRentalEvent describes r under the given event type.
func NewRentalEvent(eventType string, r *model.Rental, at time.Time) RentalEvent {
	return RentalEvent{
		EventID:      uuid.NewString(),
		Type:         eventType,
		RentalID:     r.ID,
		MovieID:      r.MovieSnapshot.ID,
		CustomerName: r.CustomerSnapshot.Name,
		MovieTitle:   r.MovieSnapshot.Title,
		RentalFee:    r.RentalFee,
		Status:       r.Status(),
		OccurredAt:   at.UTC().Format(time.RFC3339),
	}
}
