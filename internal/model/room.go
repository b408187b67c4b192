package model

import "time"

// Room is a bookable resort listing.  The JSON names match the payloads
// the existing admin and detail pages already consume.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – display name of the room.
//  Desc      – free text description.
//  Price     – nightly price, never negative.
//  Offer     – optional promotional text.
//  Amen      – amenity labels.
//  Image     – public path of the uploaded image.
//  Available – whether the room is shown as bookable.
type Room struct {
    ID        uint64    `json:"_id"`
    Title     string    `json:"title"`
    Desc      string    `json:"desc"`
    Price     int64     `json:"price"`
    Offer     *string   `json:"offer,omitempty"`
    Amen      Amenities `json:"amen"`
    Image     string    `json:"image"`
    Available bool      `json:"available"`
    CreatedAt time.Time `json:"createdAt"`
    UpdatedAt time.Time `json:"updatedAt"`
}

// Room sort orders accepted by the catalog listing.  Anything else falls
// back to newest first.
const (
    SortPriceLow  = "price-low"
    SortPriceHigh = "price-high"
    SortName      = "name"
)

// RoomFilter narrows a catalog listing.  Zero values disable a filter.
type RoomFilter struct {
    Search    string
    MinPrice  *int64
    MaxPrice  *int64
    Amenities []string
    SortBy    string
}

// RoomPatch carries a partial room update.  Nil fields are left untouched.
type RoomPatch struct {
    Title     *string    `json:"title,omitempty"`
    Desc      *string    `json:"desc,omitempty"`
    Price     *int64     `json:"price,omitempty"`
    Offer     *string    `json:"offer,omitempty"`
    Amen      *Amenities `json:"amen,omitempty"`
    Image     *string    `json:"image,omitempty"`
    Available *bool      `json:"available,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p RoomPatch) Empty() bool {
    return p.Title == nil && p.Desc == nil && p.Price == nil && p.Offer == nil &&
        p.Amen == nil && p.Image == nil && p.Available == nil
}
