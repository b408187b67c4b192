package service

import (
	"context"

	"github.com/iliyamo/resort-booking/internal/model"
)

// UserStore is the part of the user repository the directory reads.
type UserStore interface {
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	BookingRefs(ctx context.Context, userIDs []uint64) (map[uint64][]uint64, error)
}

// DirectoryService builds the admin view of users and their bookings.
type DirectoryService struct {
	users    UserStore
	bookings BookingStore
	rooms    RoomStore
}

func NewDirectoryService(users UserStore, bookings BookingStore, rooms RoomStore) *DirectoryService {
	return &DirectoryService{users: users, bookings: bookings, rooms: rooms}
}

// ListUsersWithBookings returns every account with the user role together
// with its bookings, each carrying the room it currently points to.
// References to bookings that no longer exist are dropped; a booking whose
// room was deleted keeps a nil Room and its snapshot.
func (s *DirectoryService) ListUsersWithBookings(ctx context.Context, p Principal) ([]model.UserWithBookings, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserWithBookings, 0, len(users))
	if len(users) == 0 {
		return out, nil
	}

	userIDs := make([]uint64, len(users))
	for i, u := range users {
		userIDs[i] = u.ID
	}
	refs, err := s.users.BookingRefs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	var bookingIDs []uint64
	for _, ids := range refs {
		bookingIDs = append(bookingIDs, ids...)
	}
	bookings, err := s.bookings.GetMany(ctx, uniqueIDs(bookingIDs))
	if err != nil {
		return nil, err
	}
	var roomIDs []uint64
	for _, b := range bookings {
		roomIDs = append(roomIDs, b.RoomID)
	}
	rooms, err := s.rooms.GetMany(ctx, uniqueIDs(roomIDs))
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		entry := model.UserWithBookings{User: u, Bookings: []model.Booking{}}
		for _, id := range refs[u.ID] {
			b, ok := bookings[id]
			if !ok {
				continue
			}
			resolved := *b
			resolved.Room = rooms[b.RoomID]
			entry.Bookings = append(entry.Bookings, resolved)
		}
		out = append(out, entry)
	}
	return out, nil
}
