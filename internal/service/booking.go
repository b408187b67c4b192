package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/resort-booking/internal/model"
	"github.com/iliyamo/resort-booking/internal/queue"
	"github.com/iliyamo/resort-booking/internal/repository"
)

// BookingStore is the persistence the booking workflow needs.
// *repository.BookingRepo satisfies it.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetMany(ctx context.Context, ids []uint64) (map[uint64]*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) (*model.Booking, error)
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher delivers booking lifecycle events.  Delivery is best
// effort: a failed publish is logged and never fails the request.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, ev queue.BookingStatusChangedEvent) error
}

// BookingRequest is a signed-in user's request to stay in a room.
// QuotedPrice is the total the client displayed; it is only compared
// against the server-side amount.
type BookingRequest struct {
	RoomID      uint64
	StartDate   time.Time
	EndDate     time.Time
	QuotedPrice *int64
}

// BookingService implements the booking workflow.
type BookingService struct {
	bookings BookingStore
	rooms    RoomStore
	events   EventPublisher
	log      logrus.FieldLogger
}

// NewBookingService wires the workflow.  A nil publisher disables events.
func NewBookingService(bookings BookingStore, rooms RoomStore, events EventPublisher, log logrus.FieldLogger) *BookingService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BookingService{bookings: bookings, rooms: rooms, events: events, log: log}
}

// Create records a pending booking for the caller.  The amount and the room
// snapshot are derived from the stored room, never from the request.
func (s *BookingService) Create(ctx context.Context, p Principal, req BookingRequest) (*model.Booking, error) {
	if err := RequireUser(p); err != nil {
		return nil, err
	}
	nights, err := Nights(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.RoomID == 0 {
		return nil, fmt.Errorf("%w: room is required", ErrValidation)
	}
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, fmt.Errorf("%w: room %d does not exist", ErrValidation, req.RoomID)
		}
		return nil, err
	}

	amount := int64(nights) * room.Price
	if req.QuotedPrice != nil && *req.QuotedPrice != amount {
		s.log.WithFields(logrus.Fields{
			"user_id": p.UserID,
			"room_id": room.ID,
			"quoted":  *req.QuotedPrice,
			"amount":  amount,
		}).Info("booking: client quote differs from computed amount")
	}

	b := &model.Booking{
		UserID: p.UserID,
		RoomID: room.ID,
		Snapshot: model.BookingSnapshot{
			ProductName: room.Title,
			Price:       amount,
			Offer:       room.Offer,
			Image:       room.Image,
		},
		StartDate: req.StartDate.UTC(),
		EndDate:   req.EndDate.UTC(),
		Nights:    nights,
		Status:    model.BookingPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, b, queue.ActionCreated)
	return b, nil
}

// SetStatus moves a booking to any known status.  Re-applying the current
// status succeeds.
func (s *BookingService) SetStatus(ctx context.Context, p Principal, id uint64, status string) (*model.Booking, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	st, ok := model.ParseBookingStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	return s.setStatus(ctx, id, st)
}

// Decide approves or rejects a booking.  Resetting to pending is only
// possible through SetStatus.
func (s *BookingService) Decide(ctx context.Context, p Principal, id uint64, status string) (*model.Booking, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	st, ok := model.ParseBookingStatus(status)
	if !ok || st == model.BookingPending {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	return s.setStatus(ctx, id, st)
}

func (s *BookingService) setStatus(ctx context.Context, id uint64, st model.BookingStatus) (*model.Booking, error) {
	b, err := s.bookings.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, translateBookingErr(err)
	}
	s.publish(ctx, b, queue.ActionStatusChanged)
	return b, nil
}

// Delete hard-deletes a booking and its reference in the owner's set.
func (s *BookingService) Delete(ctx context.Context, p Principal, id uint64) error {
	if err := RequireAdmin(p); err != nil {
		return err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return translateBookingErr(err)
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return translateBookingErr(err)
	}
	s.publish(ctx, b, queue.ActionDeleted)
	return nil
}

// ListMine returns the caller's own bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, p Principal) ([]*model.Booking, error) {
	if err := RequireUser(p); err != nil {
		return nil, err
	}
	return s.bookings.ListByUser(ctx, p.UserID)
}

func (s *BookingService) publish(ctx context.Context, b *model.Booking, action string) {
	ev := queue.NewBookingEvent(b, action)
	if err := s.events.PublishBookingEvent(ctx, ev); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("booking: event not published")
	}
}

func translateBookingErr(err error) error {
	if errors.Is(err, repository.ErrBookingNotFound) {
		return fmt.Errorf("%w: booking", ErrNotFound)
	}
	return err
}
