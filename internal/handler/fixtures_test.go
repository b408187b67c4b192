package handler

import (
    "context"
    "io"
    "net/http"
    "net/http/httptest"
    "sort"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/resort-booking/internal/middleware"
    "github.com/iliyamo/resort-booking/internal/model"
    "github.com/iliyamo/resort-booking/internal/repository"
    "github.com/iliyamo/resort-booking/internal/service"
    "github.com/iliyamo/resort-booking/internal/utils"
)

const testSecret = "handler-secret"

type roomStore struct {
    rows   map[uint64]*model.Room
    nextID uint64
}

func newRoomStore(rooms ...model.Room) *roomStore {
    s := &roomStore{rows: map[uint64]*model.Room{}}
    for i := range rooms {
        r := rooms[i]
        s.rows[r.ID] = &r
        if r.ID > s.nextID {
            s.nextID = r.ID
        }
    }
    return s
}

func (s *roomStore) Create(_ context.Context, r *model.Room) error {
    s.nextID++
    r.ID = s.nextID
    cp := *r
    s.rows[r.ID] = &cp
    return nil
}

func (s *roomStore) GetByID(_ context.Context, id uint64) (*model.Room, error) {
    r, ok := s.rows[id]
    if !ok {
        return nil, repository.ErrRoomNotFound
    }
    cp := *r
    return &cp, nil
}

func (s *roomStore) GetMany(ctx context.Context, ids []uint64) (map[uint64]*model.Room, error) {
    out := map[uint64]*model.Room{}
    for _, id := range ids {
        if r, err := s.GetByID(ctx, id); err == nil {
            out[id] = r
        }
    }
    return out, nil
}

func (s *roomStore) List(_ context.Context, f model.RoomFilter) ([]*model.Room, error) {
    out := []*model.Room{}
    for _, r := range s.rows {
        if f.MinPrice != nil && r.Price < *f.MinPrice || f.MaxPrice != nil && r.Price > *f.MaxPrice {
            continue
        }
        if f.Search != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.Search)) {
            continue
        }
        cp := *r
        out = append(out, &cp)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (s *roomStore) Update(_ context.Context, id uint64, p model.RoomPatch) (*model.Room, error) {
    r, ok := s.rows[id]
    if !ok {
        return nil, repository.ErrRoomNotFound
    }
    if p.Title != nil {
        r.Title = *p.Title
    }
    if p.Price != nil {
        r.Price = *p.Price
    }
    if p.Amen != nil {
        r.Amen = *p.Amen
    }
    if p.Available != nil {
        r.Available = *p.Available
    }
    cp := *r
    return &cp, nil
}

func (s *roomStore) SetAvailability(ctx context.Context, id uint64, v bool) (*model.Room, error) {
    return s.Update(ctx, id, model.RoomPatch{Available: &v})
}

func (s *roomStore) Delete(_ context.Context, id uint64) error {
    if _, ok := s.rows[id]; !ok {
        return repository.ErrRoomNotFound
    }
    delete(s.rows, id)
    return nil
}

func (s *roomStore) DeleteMany(_ context.Context, ids []uint64) (int64, error) {
    var n int64
    for _, id := range ids {
        if _, ok := s.rows[id]; ok {
            delete(s.rows, id)
            n++
        }
    }
    return n, nil
}

func (s *roomStore) CompareAndSetPrice(_ context.Context, id uint64, oldP, newP int64) (bool, error) {
    r, ok := s.rows[id]
    if !ok || r.Price != oldP {
        return false, nil
    }
    r.Price = newP
    return true, nil
}

type bookingStore struct {
    rows   map[uint64]*model.Booking
    nextID uint64
}

func (s *bookingStore) Create(_ context.Context, b *model.Booking) error {
    s.nextID++
    b.ID = s.nextID
    cp := *b
    s.rows[b.ID] = &cp
    return nil
}

func (s *bookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
    b, ok := s.rows[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    cp := *b
    return &cp, nil
}

func (s *bookingStore) GetMany(ctx context.Context, ids []uint64) (map[uint64]*model.Booking, error) {
    out := map[uint64]*model.Booking{}
    for _, id := range ids {
        if b, err := s.GetByID(ctx, id); err == nil {
            out[id] = b
        }
    }
    return out, nil
}

func (s *bookingStore) ListByUser(_ context.Context, uid uint64) ([]*model.Booking, error) {
    out := []*model.Booking{}
    for _, b := range s.rows {
        if b.UserID == uid {
            cp := *b
            out = append(out, &cp)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
    return out, nil
}

func (s *bookingStore) UpdateStatus(_ context.Context, id uint64, st model.BookingStatus) (*model.Booking, error) {
    b, ok := s.rows[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    b.Status = st
    cp := *b
    return &cp, nil
}

func (s *bookingStore) Delete(_ context.Context, id uint64) error {
    if _, ok := s.rows[id]; !ok {
        return repository.ErrBookingNotFound
    }
    delete(s.rows, id)
    return nil
}

type userStore struct{ users []model.User }

func (s *userStore) ListByRole(_ context.Context, role string) ([]model.User, error) {
    out := []model.User{}
    for _, u := range s.users {
        if u.Role == role {
            out = append(out, u)
        }
    }
    return out, nil
}

func (s *userStore) BookingRefs(_ context.Context, _ []uint64) (map[uint64][]uint64, error) {
    return map[uint64][]uint64{}, nil
}

type imageStore struct{ names []string }

func (s *imageStore) Save(_ context.Context, name string, body io.Reader) (string, error) {
    if _, err := io.Copy(io.Discard, body); err != nil {
        return "", err
    }
    s.names = append(s.names, name)
    return "/uploads/" + name, nil
}

type testApp struct {
    e        *echo.Echo
    rooms    *roomStore
    bookings *bookingStore
    images   *imageStore
}

// newTestApp wires the room and booking handlers onto the production paths
// behind the optional-identity middleware.
func newTestApp(rooms ...model.Room) *testApp {
    app := &testApp{
        e:        echo.New(),
        rooms:    newRoomStore(rooms...),
        bookings: &bookingStore{rows: map[uint64]*model.Booking{}},
        images:   &imageStore{},
    }
    catalog := service.NewCatalogService(app.rooms, app.images, nil)
    bookingSvc := service.NewBookingService(app.bookings, app.rooms, nil, nil)
    directory := service.NewDirectoryService(&userStore{}, app.bookings, app.rooms)
    rh := NewRoomHandler(catalog)
    bh := NewBookingHandler(bookingSvc, directory)

    api := app.e.Group("/api", middleware.Identify(testSecret))
    api.GET("/admin/product", rh.List)
    api.GET("/admin/product/:id", rh.Get)
    api.POST("/admin/add-product", rh.Create)
    api.PUT("/admin/product/:id", rh.Update)
    api.PATCH("/admin/product/:id", rh.SetAvailability)
    api.DELETE("/admin/product/:id", rh.Delete)
    api.POST("/admin/product/bulk-delete", rh.BulkDelete)
    api.POST("/admin/product/bulk-price", rh.BulkPrice)
    api.POST("/admin/approve-booking", bh.Decide)
    api.POST("/users", bh.SetStatus)
    api.DELETE("/users", bh.Delete)
    api.GET("/admin/users", bh.Users)
    api.POST("/bookings", bh.Create)
    api.GET("/bookings/mine", bh.Mine)
    return app
}

func token(t *testing.T, id uint64, role string) string {
    t.Helper()
    tok, err := utils.NewAccessToken(testSecret, id, role, 5)
    require.NoError(t, err)
    return tok.Token
}

func (a *testApp) do(method, target, body, bearer string) *httptest.ResponseRecorder {
    var rd io.Reader
    if body != "" {
        rd = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, target, rd)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if bearer != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
    }
    rec := httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    return rec
}

func (a *testApp) send(req *http.Request) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    a.e.ServeHTTP(rec, req)
    return rec
}
