// Package queue carries booking lifecycle events over RabbitMQ: the payload
// type, a publisher used by the booking workflow and a consumer that keeps
// an append-only booking log.
package queue

import (
    "time"

    "github.com/iliyamo/resort-booking/internal/model"
)

// Actions recorded on a booking event.
const (
    ActionCreated       = "created"
    ActionStatusChanged = "status_changed"
    ActionDeleted       = "deleted"
)

// BookingStatusChangedEvent is published whenever a booking is created,
// changes status or is deleted.  It is self-contained so consumers never
// need to query the database.
type BookingStatusChangedEvent struct {
    Action     string `json:"action"`
    BookingID  uint64 `json:"booking_id"`
    UserID     uint64 `json:"user_id"`
    RoomID     uint64 `json:"room_id"`
    RoomName   string `json:"room_name"`
    Status     string `json:"status"`
    StartDate  string `json:"start_date"`
    EndDate    string `json:"end_date"`
    Nights     int    `json:"nights"`
    Amount     int64  `json:"amount"`
    OccurredAt string `json:"occurred_at"`
}

// NewBookingEvent builds the event for b.
func NewBookingEvent(b *model.Booking, action string) BookingStatusChangedEvent {
    return BookingStatusChangedEvent{
        Action:     action,
        BookingID:  b.ID,
        UserID:     b.UserID,
        RoomID:     b.RoomID,
        RoomName:   b.Snapshot.ProductName,
        Status:     string(b.Status),
        StartDate:  b.StartDate.UTC().Format("2006-01-02"),
        EndDate:    b.EndDate.UTC().Format("2006-01-02"),
        Nights:     b.Nights,
        Amount:     b.Snapshot.Price,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}
