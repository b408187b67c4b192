package model

import "time"

// Roles a user account may hold.  A role is fixed when the account is
// created.
const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

// User mirrors a row of the `users` table.  PasswordHash is excluded from
// JSON so a user value can never leak credentials through a response.
type User struct {
    ID           uint64    `json:"_id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    CreatedAt    time.Time `json:"createdAt"`
    UpdatedAt    time.Time `json:"updatedAt"`
}

// UserWithBookings is the admin directory projection of a user: profile
// fields plus every booking that still resolves.
type UserWithBookings struct {
    User
    Bookings []Booking `json:"bookings"`
}
