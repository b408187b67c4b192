package model

import (
    "encoding/json"
    "strings"
)

// Amenities is the ordered list of amenity labels on a room.  Storage may
// hold either a JSON array or a comma separated string; ParseAmenities
// accepts both.
type Amenities []string

// ParseAmenities decodes a stored or submitted amenity value.  A JSON array
// is used as-is (blank entries dropped); anything else is split on commas.
func ParseAmenities(raw string) Amenities {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return Amenities{}
    }
    if strings.HasPrefix(raw, "[") {
        var list []string
        if err := json.Unmarshal([]byte(raw), &list); err == nil {
            return compact(list)
        }
    }
    return compact(strings.Split(raw, ","))
}

// JSON encodes the list in the array form written by this service.
func (a Amenities) JSON() string {
    if a == nil {
        a = Amenities{}
    }
    b, _ := json.Marshal([]string(a))
    return string(b)
}

func compact(in []string) Amenities {
    out := make(Amenities, 0, len(in))
    for _, s := range in {
        if s = strings.TrimSpace(s); s != "" {
            out = append(out, s)
        }
    }
    return out
}

// UnmarshalJSON accepts either an array of labels or a single delimited
// string, the two shapes admin clients send.
func (a *Amenities) UnmarshalJSON(b []byte) error {
    var list []string
    if err := json.Unmarshal(b, &list); err == nil {
        *a = compact(list)
        return nil
    }
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return err
    }
    *a = ParseAmenities(s)
    return nil
}
