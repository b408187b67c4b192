package repository

import (
	"strings"

	"github.com/iliyamo/resort-booking/internal/model"
)

// amenityClause matches one amenity label against a stored amen value.
// Each row is checked in its own storage form: a JSON array needs an
// element equal to the label, a legacy delimited string needs the label as
// a substring.  Both sides are lowercased so the two forms agree on case.
const amenityClause = "(CASE WHEN JSON_VALID(amen) THEN JSON_SEARCH(LOWER(amen), 'one', ?) IS NOT NULL ELSE LOWER(amen) LIKE ? END)"

// buildRoomListQuery turns a RoomFilter into a SELECT over rooms.  A room
// must carry every requested amenity.
func buildRoomListQuery(f model.RoomFilter) (string, []any) {
	where := []string{}
	args := []any{}

	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if f.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	for _, a := range f.Amenities {
		a = escapeLike(strings.ToLower(strings.TrimSpace(a)))
		if a == "" {
			continue
		}
		// JSON_SEARCH uses LIKE wildcards too, so the escaped label is an exact element match.
		where = append(where, amenityClause)
		args = append(args, a, "%"+a+"%")
	}

	q := "SELECT " + roomColumns + " FROM rooms"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + roomOrderBy(f.SortBy)
	return q, args
}

func roomOrderBy(sortBy string) string {
	switch sortBy {
	case model.SortPriceLow:
		return "price ASC, id ASC"
	case model.SortPriceHigh:
		return "price DESC, id ASC"
	case model.SortName:
		return "title ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
