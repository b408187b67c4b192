package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/resort-booking/internal/model"
)

const bookingColumns = "b.id, b.user_id, b.room_id, b.product_name, b.price, b.offer, b.image, b.start_date, b.end_date, b.nights, b.status, b.created_at, b.updated_at"

// BookingRepo provides persistence for bookings and for the per-user
// booking reference set kept in user_bookings.  All timestamps are UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b      model.Booking
		offer  sql.NullString
		status string
	)
	err := s.Scan(&b.ID, &b.UserID, &b.RoomID, &b.Snapshot.ProductName, &b.Snapshot.Price, &offer,
		&b.Snapshot.Image, &b.StartDate, &b.EndDate, &b.Nights, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if offer.Valid {
		o := offer.String
		b.Snapshot.Offer = &o
	}
	b.Status = model.BookingStatus(status)
	return &b, nil
}

// Create inserts a booking and appends it to the owner's booking set in a
// single transaction.  The stored row is read back into b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO bookings (user_id, room_id, product_name, price, offer, image, start_date, end_date, nights, status)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, b.UserID, b.RoomID, b.Snapshot.ProductName, b.Snapshot.Price,
		nullString(b.Snapshot.Offer), b.Snapshot.Image, b.StartDate.UTC(), b.EndDate.UTC(), b.Nights, string(b.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO user_bookings (user_id, booking_id) VALUES (?, ?)`, b.UserID, id); err != nil {
		return err
	}
	created, err := scanBooking(tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ?", id))
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*b = *created
	return nil
}

// GetByID returns a single booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetMany loads bookings by id.  Ids without a row are absent from the map.
func (r *BookingRepo) GetMany(ctx context.Context, ids []uint64) (map[uint64]*model.Booking, error) {
	out := make(map[uint64]*model.Booking, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := "SELECT " + bookingColumns + " FROM bookings b WHERE b.id IN (" + placeholders(len(ids)) + ")"
	rows, err := r.db.QueryContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out[b.ID] = b
	}
	return out, rows.Err()
}

// ListByUser returns the bookings in a user's booking set, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	q := `SELECT ` + bookingColumns + `
	      FROM user_bookings ub
	      JOIN bookings b ON b.id = ub.booking_id
	      WHERE ub.user_id = ?
	      ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus overwrites the status and returns the stored booking.
// Writing the current status again is allowed and succeeds.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status model.BookingStatus) (*model.Booking, error) {
	if _, err := r.db.ExecContext(ctx, "UPDATE bookings SET status = ? WHERE id = ?", string(status), id); err != nil {
		return nil, err
	}
	// A no-op update reports 0 affected rows; read back to tell it from a missing id.
	return r.GetByID(ctx, id)
}

// Delete hard-removes a booking and drops its reference from the owner's
// booking set.  ErrBookingNotFound is returned when the id does not exist.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_bookings WHERE booking_id = ?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
