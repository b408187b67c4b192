package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/iliyamo/resort-booking/internal/model"
	"github.com/iliyamo/resort-booking/internal/queue"
	"github.com/iliyamo/resort-booking/internal/repository"
)

var (
	admin  = Principal{UserID: 1, Role: model.RoleAdmin}
	guest  = Principal{UserID: 2, Role: model.RoleUser}
	nobody = Principal{}
)

type memRooms struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Room
	nextID uint64
	writes int
	// casFail makes CompareAndSetPrice return an error for these ids.
	casFail map[uint64]error
	// casLose makes the next n CAS attempts for an id lose the race.
	casLose map[uint64]int
}

func newMemRooms(rooms ...model.Room) *memRooms {
	m := &memRooms{rows: map[uint64]*model.Room{}, casFail: map[uint64]error{}, casLose: map[uint64]int{}}
	for i := range rooms {
		r := rooms[i]
		m.rows[r.ID] = &r
		if r.ID > m.nextID {
			m.nextID = r.ID
		}
	}
	return m
}

func (m *memRooms) Create(_ context.Context, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	room.ID = m.nextID
	cp := *room
	m.rows[room.ID] = &cp
	m.writes++
	return nil
}

func (m *memRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRooms) GetMany(_ context.Context, ids []uint64) (map[uint64]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uint64]*model.Room{}
	for _, id := range ids {
		if r, ok := m.rows[id]; ok {
			cp := *r
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memRooms) List(_ context.Context, f model.RoomFilter) ([]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Room{}
	for _, r := range m.rows {
		if f.MinPrice != nil && r.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && r.Price > *f.MaxPrice {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRooms) Update(_ context.Context, id uint64, p model.RoomPatch) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Available != nil {
		r.Available = *p.Available
	}
	m.writes++
	cp := *r
	return &cp, nil
}

func (m *memRooms) SetAvailability(ctx context.Context, id uint64, available bool) (*model.Room, error) {
	return m.Update(ctx, id, model.RoomPatch{Available: &available})
}

func (m *memRooms) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(m.rows, id)
	m.writes++
	return nil
}

func (m *memRooms) DeleteMany(_ context.Context, ids []uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.rows[id]; ok {
			delete(m.rows, id)
			n++
		}
	}
	m.writes++
	return n, nil
}

func (m *memRooms) CompareAndSetPrice(_ context.Context, id uint64, oldPrice, newPrice int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.casFail[id]; err != nil {
		return false, err
	}
	r, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	if m.casLose[id] > 0 {
		m.casLose[id]--
		r.Price += 10 // a concurrent writer moved the price
		return false, nil
	}
	if r.Price != oldPrice {
		return false, nil
	}
	r.Price = newPrice
	m.writes++
	return true, nil
}

func (m *memRooms) price(id uint64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Price
}

type memBookings struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Booking
	sets   map[uint64][]uint64
	nextID uint64
	writes int
}

func newMemBookings() *memBookings {
	return &memBookings{rows: map[uint64]*model.Booking{}, sets: map[uint64][]uint64{}}
}

func (m *memBookings) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	cp := *b
	m.rows[b.ID] = &cp
	m.sets[b.UserID] = append(m.sets[b.UserID], b.ID)
	m.writes++
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) GetMany(_ context.Context, ids []uint64) (map[uint64]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uint64]*model.Booking{}
	for _, id := range ids {
		if b, ok := m.rows[id]; ok {
			cp := *b
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memBookings) ListByUser(_ context.Context, userID uint64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Booking{}
	ids := m.sets[userID]
	for i := len(ids) - 1; i >= 0; i-- {
		if b, ok := m.rows[ids[i]]; ok {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id uint64, st model.BookingStatus) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	b.Status = st
	m.writes++
	cp := *b
	return &cp, nil
}

func (m *memBookings) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	delete(m.rows, id)
	ids := m.sets[b.UserID]
	for i, v := range ids {
		if v == id {
			m.sets[b.UserID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	m.writes++
	return nil
}

type memUsers struct {
	users []model.User
	refs  map[uint64][]uint64
}

func (m *memUsers) ListByRole(_ context.Context, role string) ([]model.User, error) {
	out := []model.User{}
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) BookingRefs(_ context.Context, ids []uint64) (map[uint64][]uint64, error) {
	out := map[uint64][]uint64{}
	for _, id := range ids {
		if refs, ok := m.refs[id]; ok {
			out[id] = refs
		}
	}
	return out, nil
}

type memImages struct {
	saved map[string][]byte
	err   error
}

func (m *memImages) Save(_ context.Context, filename string, body io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[filename] = data
	return "/uploads/" + filename, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingStatusChangedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, ev queue.BookingStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

var errBoom = errors.New("boom")
