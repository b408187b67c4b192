package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/resort-booking/internal/model"
	"github.com/iliyamo/resort-booking/internal/repository"
	"github.com/iliyamo/resort-booking/internal/storage"
)

// maxPriceAttempts bounds the compare-and-swap retries for one room when
// other writers keep changing its price underneath a bulk adjustment.
const maxPriceAttempts = 5

var errPriceContended = errors.New("price changed concurrently")

// RoomStore is the persistence the catalog needs.  *repository.RoomRepo
// satisfies it.
type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	GetMany(ctx context.Context, ids []uint64) (map[uint64]*model.Room, error)
	List(ctx context.Context, f model.RoomFilter) ([]*model.Room, error)
	Update(ctx context.Context, id uint64, p model.RoomPatch) (*model.Room, error)
	SetAvailability(ctx context.Context, id uint64, available bool) (*model.Room, error)
	Delete(ctx context.Context, id uint64) error
	DeleteMany(ctx context.Context, ids []uint64) (int64, error)
	CompareAndSetPrice(ctx context.Context, id uint64, oldPrice, newPrice int64) (bool, error)
}

// ImageStore persists an uploaded room image and returns its public path.
type ImageStore interface {
	Save(ctx context.Context, filename string, body io.Reader) (string, error)
}

// ImageUpload is an image file received with a room creation request.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// RoomInput is the data for a new room.  Available defaults to true.
type RoomInput struct {
	Title     string
	Desc      string
	Price     int64
	Offer     *string
	Amen      model.Amenities
	Available *bool
}

// BulkPriceResult reports the outcome of a bulk price adjustment.  Ids that
// do not exist are neither updated nor failed.
type BulkPriceResult struct {
	Updated int      `json:"updated"`
	Failed  []uint64 `json:"failed"`
}

// CatalogService implements room browsing and the admin room operations.
type CatalogService struct {
	rooms  RoomStore
	images ImageStore
	log    logrus.FieldLogger
}

// NewCatalogService wires the catalog to its stores.
func NewCatalogService(rooms RoomStore, images ImageStore, log logrus.FieldLogger) *CatalogService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CatalogService{rooms: rooms, images: images, log: log}
}

// List returns the rooms matching f.  No match yields an empty slice.
func (s *CatalogService) List(ctx context.Context, f model.RoomFilter) ([]*model.Room, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return []*model.Room{}, nil
	}
	return s.rooms.List(ctx, f)
}

// Get returns one room.
func (s *CatalogService) Get(ctx context.Context, id uint64) (*model.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	return room, translateRoomErr(err)
}

// Create stores the image and inserts the room.
func (s *CatalogService) Create(ctx context.Context, p Principal, in RoomInput, img *ImageUpload) (*model.Room, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	if img == nil || img.Body == nil || strings.TrimSpace(img.Filename) == "" {
		return nil, fmt.Errorf("%w: no image uploaded", ErrValidation)
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	path, err := s.images.Save(ctx, img.Filename, img.Body)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilename) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("save image: %w", err)
	}
	room := &model.Room{
		Title:     in.Title,
		Desc:      in.Desc,
		Price:     in.Price,
		Offer:     in.Offer,
		Amen:      in.Amen,
		Image:     path,
		Available: true,
	}
	if in.Available != nil {
		room.Available = *in.Available
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Update merges the present patch fields into the room.
func (s *CatalogService) Update(ctx context.Context, p Principal, id uint64, patch model.RoomPatch) (*model.Room, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		patch.Title = &t
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	room, err := s.rooms.Update(ctx, id, patch)
	return room, translateRoomErr(err)
}

// Delete removes one room.  Existing bookings keep their snapshot.
func (s *CatalogService) Delete(ctx context.Context, p Principal, id uint64) error {
	if err := RequireAdmin(p); err != nil {
		return err
	}
	return translateRoomErr(s.rooms.Delete(ctx, id))
}

// SetAvailability changes only the availability flag.
func (s *CatalogService) SetAvailability(ctx context.Context, p Principal, id uint64, available bool) (*model.Room, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	room, err := s.rooms.SetAvailability(ctx, id, available)
	return room, translateRoomErr(err)
}

// BulkDelete removes every listed room and reports how many existed.
func (s *CatalogService) BulkDelete(ctx context.Context, p Principal, ids []uint64) (int64, error) {
	if err := RequireAdmin(p); err != nil {
		return 0, err
	}
	return s.rooms.DeleteMany(ctx, uniqueIDs(ids))
}

// BulkAdjustPrice applies price = round(price*(1+percentage/100)) to each
// listed room.  Every room is written on its own with a conditional update,
// so a failure on one id leaves the others applied.
func (s *CatalogService) BulkAdjustPrice(ctx context.Context, p Principal, ids []uint64, percentage float64) (BulkPriceResult, error) {
	res := BulkPriceResult{Failed: []uint64{}}
	if err := RequireAdmin(p); err != nil {
		return res, err
	}
	if math.IsNaN(percentage) || math.IsInf(percentage, 0) {
		return res, fmt.Errorf("%w: percentage must be a finite number", ErrValidation)
	}
	for _, id := range uniqueIDs(ids) {
		err := s.adjustOne(ctx, id, percentage)
		switch {
		case err == nil:
			res.Updated++
		case errors.Is(err, repository.ErrRoomNotFound):
			// unknown ids are skipped
		default:
			s.log.WithError(err).WithField("room_id", id).Warn("bulk price: room not updated")
			res.Failed = append(res.Failed, id)
		}
	}
	return res, nil
}

func (s *CatalogService) adjustOne(ctx context.Context, id uint64, percentage float64) error {
	for attempt := 0; attempt < maxPriceAttempts; attempt++ {
		room, err := s.rooms.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next := AdjustedPrice(room.Price, percentage)
		if next == room.Price {
			return nil
		}
		ok, err := s.rooms.CompareAndSetPrice(ctx, id, room.Price, next)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return errPriceContended
}

func translateRoomErr(err error) error {
	if errors.Is(err, repository.ErrRoomNotFound) {
		return fmt.Errorf("%w: room", ErrNotFound)
	}
	return err
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
