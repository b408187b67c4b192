package model

import "time"

// BookingStatus is the approval state of a booking.
type BookingStatus string

const (
    BookingPending  BookingStatus = "pending"
    BookingApproved BookingStatus = "approved"
    BookingRejected BookingStatus = "rejected"
)

// ParseBookingStatus accepts exactly the three known states.
func ParseBookingStatus(s string) (BookingStatus, bool) {
    switch st := BookingStatus(s); st {
    case BookingPending, BookingApproved, BookingRejected:
        return st, true
    }
    return "", false
}

// BookingSnapshot is the room data copied into a booking when it is
// created.  It never follows later edits to the room.
type BookingSnapshot struct {
    ProductName string  `json:"productName"`
    Price       int64   `json:"price"`
    Offer       *string `json:"offer,omitempty"`
    Image       string  `json:"image"`
}

// Booking is a dated request against one room by one user.
//
// Fields:
//  RoomID    – room the booking was made for; not re-checked after creation.
//  Room      – current room record, filled only by directory reads (nil when
//              the room has since been deleted).
//  Snapshot  – frozen copy of the room's display and pricing data.
//  Nights    – ceil((EndDate-StartDate) / 24h).
type Booking struct {
    ID        uint64          `json:"_id"`
    UserID    uint64          `json:"userId"`
    RoomID    uint64          `json:"roomId"`
    Room      *Room           `json:"resortRoom,omitempty"`
    Snapshot  BookingSnapshot `json:"snapshot"`
    StartDate time.Time       `json:"startDate"`
    EndDate   time.Time       `json:"endDate"`
    Nights    int             `json:"nights"`
    Status    BookingStatus   `json:"status"`
    CreatedAt time.Time       `json:"createdAt"`
    UpdatedAt time.Time       `json:"updatedAt"`
}
