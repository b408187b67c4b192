package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/resort-booking/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var roomCols = []string{"id", "title", "description", "price", "offer", "amen", "image", "available", "created_at", "updated_at"}

func TestRoomGetByIDDecodesBothAmenityForms(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	now := time.Now()
	sel := regexp.QuoteMeta("SELECT " + roomColumns + " FROM rooms WHERE id = ?")

	mock.ExpectQuery(sel).WithArgs(1).WillReturnRows(sqlmock.NewRows(roomCols).
		AddRow(1, "Villa", "", 100, nil, `["wifi","tv"]`, "/uploads/a.jpg", true, now, now))
	mock.ExpectQuery(sel).WithArgs(2).WillReturnRows(sqlmock.NewRows(roomCols).
		AddRow(2, "Cabin", "", 80, "10% off", "wifi, tv", "/uploads/b.jpg", false, now, now))
	mock.ExpectQuery(sel).WithArgs(3).WillReturnRows(sqlmock.NewRows(roomCols))

	r, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.Amenities{"wifi", "tv"}, r.Amen)
	assert.Nil(t, r.Offer)

	r, err = repo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, model.Amenities{"wifi", "tv"}, r.Amen)
	require.NotNil(t, r.Offer)
	assert.Equal(t, "10% off", *r.Offer)

	_, err = repo.GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomListAmenityFilterCoversMixedStorage(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	now := time.Now()

	// no sampling query: the amenity storage form is decided per row in SQL
	mock.ExpectQuery(regexp.QuoteMeta("WHERE " + amenityClause + " ORDER BY")).
		WithArgs("pool", "%pool%").
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(1, "Villa", "", 100, nil, `["Pool","wifi"]`, "/uploads/a.jpg", true, now, now).
			AddRow(2, "Cabin", "", 80, nil, "wifi, pool", "/uploads/b.jpg", true, now, now))

	rooms, err := repo.List(context.Background(), model.RoomFilter{Amenities: []string{"Pool"}})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, model.Amenities{"Pool", "wifi"}, rooms[0].Amen)
	assert.Equal(t, model.Amenities{"wifi", "pool"}, rooms[1].Amen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomListEmptyIsNonNil(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms ORDER BY")).WillReturnRows(sqlmock.NewRows(roomCols))

	rooms, err := repo.List(context.Background(), model.RoomFilter{})
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	del := regexp.QuoteMeta("DELETE FROM rooms WHERE id = ?")

	mock.ExpectExec(del).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(del).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 4))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDeleteMany(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id IN (?,?,?)")).
		WithArgs(1, 2, 9).WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteMany(context.Background(), []uint64{1, 2, 9})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCompareAndSetPrice(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRoomRepo(db)
	upd := regexp.QuoteMeta("UPDATE rooms SET price = ? WHERE id = ? AND price = ?")

	mock.ExpectExec(upd).WithArgs(110, 1, 100).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upd).WithArgs(110, 1, 100).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.CompareAndSetPrice(context.Background(), 1, 100, 110)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompareAndSetPrice(context.Background(), 1, 100, 110)
	require.NoError(t, err)
	assert.False(t, ok, "a concurrent writer changed the price")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDeleteCascadesInTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = ?")).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_bookings WHERE booking_id = ?")).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDeleteMissingRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = ?")).WithArgs(8).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), 8), ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateRollsBackOnReferenceFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_bookings (user_id, booking_id) VALUES (?, ?)")).
		WithArgs(3, 12).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	b := &model.Booking{UserID: 3, RoomID: 1, Status: model.BookingPending,
		StartDate: time.Now(), EndDate: time.Now().Add(24 * time.Hour), Nights: 1}
	assert.Error(t, repo.Create(context.Background(), b))
	assert.Zero(t, b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserBookingRefs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, booking_id FROM user_bookings WHERE user_id IN (?,?)")).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "booking_id"}).AddRow(1, 10).AddRow(1, 11).AddRow(2, 12))

	refs, err := repo.BookingRefs(context.Background(), []uint64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint64][]uint64{1: {10, 11}, 2: {12}}, refs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Ana", "ana@example.com", sqlmock.AnyArg(), model.RoleUser).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ana@example.com'"})

	_, err := repo.Create(context.Background(), " Ana ", "ANA@example.com", "secret1", model.RoleUser, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenValidateRefresh(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	sel := regexp.QuoteMeta("SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=?")
	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().Add(time.Hour)

	mock.ExpectQuery(sel).WithArgs("live").WillReturnRows(sqlmock.NewRows(cols).AddRow(4, future, nil))
	mock.ExpectQuery(sel).WithArgs("revoked").WillReturnRows(sqlmock.NewRows(cols).AddRow(4, future, time.Now()))
	mock.ExpectQuery(sel).WithArgs("expired").WillReturnRows(sqlmock.NewRows(cols).AddRow(4, time.Now().Add(-time.Minute), nil))

	uid, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), uid)

	_, err = repo.ValidateRefresh(context.Background(), "revoked")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = repo.ValidateRefresh(context.Background(), "expired")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRotate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	revoke := regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND user_id=?")
	insert := regexp.QuoteMeta("INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)")
	exp := time.Now().Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(revoke).WithArgs("old", 4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WithArgs(4, "new", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Rotate(context.Background(), 4, "old", "new", exp))

	// second use of the same token loses
	mock.ExpectBegin()
	mock.ExpectExec(revoke).WithArgs("old", 4).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	assert.ErrorIs(t, repo.Rotate(context.Background(), 4, "old", "new2", exp), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
