package repository

import (
	"context"      // context carries request deadlines into every query
	"database/sql" // sql provides the DB handle and null types
	"errors"       // errors.Is for sql.ErrNoRows checks
	"strings"      // strings builds dynamic SET clauses

	"github.com/iliyamo/resort-booking/internal/model"
)

const roomColumns = "id, title, description, price, offer, amen, image, available, created_at, updated_at"

// RoomRepo encapsulates all queries against the rooms table.
type RoomRepo struct {
	db *sql.DB // db is the underlying connection pool
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(s rowScanner) (*model.Room, error) {
	var (
		r     model.Room
		offer sql.NullString
		amen  string
	)
	if err := s.Scan(&r.ID, &r.Title, &r.Desc, &r.Price, &offer, &amen, &r.Image, &r.Available, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if offer.Valid {
		o := offer.String
		r.Offer = &o
	}
	r.Amen = model.ParseAmenities(amen)
	return &r, nil
}

func nullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// Create inserts a room and reloads it so the caller receives the
// database defaults (id, timestamps).  Amenities are always written in the
// JSON array form.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (title, description, price, offer, amen, image, available) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Title, room.Desc, room.Price, nullString(room.Offer), room.Amen.JSON(), room.Image, room.Available)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*room = *created
	return nil
}

// GetByID fetches a room by its id.  It returns ErrRoomNotFound when no
// row exists.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// GetMany loads the rooms whose ids are given, keyed by id.  Ids without a
// row are simply absent from the map.
func (r *RoomRepo) GetMany(ctx context.Context, ids []uint64) (map[uint64]*model.Room, error) {
	out := make(map[uint64]*model.Room, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := "SELECT " + roomColumns + " FROM rooms WHERE id IN (" + placeholders(len(ids)) + ")"
	rows, err := r.db.QueryContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out[room.ID] = room
	}
	return out, rows.Err()
}

// List returns the rooms matching the filter in the requested order.  An
// empty result is an empty, non-nil slice.
func (r *RoomRepo) List(ctx context.Context, f model.RoomFilter) ([]*model.Room, error) {
	q, args := buildRoomListQuery(f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update merges the non-nil patch fields into the room and returns the
// stored result.  ErrRoomNotFound is returned when the id does not exist.
func (r *RoomRepo) Update(ctx context.Context, id uint64, p model.RoomPatch) (*model.Room, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	sets := []string{}
	args := []any{}
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Desc != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Desc)
	}
	if p.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *p.Price)
	}
	if p.Offer != nil {
		sets = append(sets, "offer = ?")
		args = append(args, nullString(p.Offer))
	}
	if p.Amen != nil {
		sets = append(sets, "amen = ?")
		args = append(args, p.Amen.JSON())
	}
	if p.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *p.Image)
	}
	if p.Available != nil {
		sets = append(sets, "available = ?")
		args = append(args, *p.Available)
	}
	args = append(args, id)
	q := "UPDATE rooms SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	// MySQL reports 0 affected rows for a no-op update, so existence is
	// decided by reading the row back.
	return r.GetByID(ctx, id)
}

// SetAvailability flips only the availability flag.
func (r *RoomRepo) SetAvailability(ctx context.Context, id uint64, available bool) (*model.Room, error) {
	return r.Update(ctx, id, model.RoomPatch{Available: &available})
}

// Delete removes a single room.  Bookings that reference it are kept.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// DeleteMany removes every room whose id is listed and reports how many
// rows were actually deleted.  Unknown ids are ignored.
func (r *RoomRepo) DeleteMany(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := "DELETE FROM rooms WHERE id IN (" + placeholders(len(ids)) + ")"
	res, err := r.db.ExecContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CompareAndSetPrice writes newPrice only while the stored price still
// equals oldPrice.  It reports false when another writer got there first
// (or the row vanished); the caller decides whether to retry.
func (r *RoomRepo) CompareAndSetPrice(ctx context.Context, id uint64, oldPrice, newPrice int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE rooms SET price = ? WHERE id = ? AND price = ?", newPrice, id, oldPrice)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
