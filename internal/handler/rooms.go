package handler

import (
    "errors"   // multipart missing-file check
    "math"     // rounding of form prices
    "net/http" // status codes
    "strconv"  // numeric form and query values
    "strings"  // amenity query splitting

    "github.com/labstack/echo/v4" // echo context

    "github.com/iliyamo/resort-booking/internal/middleware" // caller principal
    "github.com/iliyamo/resort-booking/internal/model"      // room types
    "github.com/iliyamo/resort-booking/internal/service"    // catalog service
)

// RoomHandler exposes the room catalog.  Reads are public; every mutation
// is gated by the catalog service itself.
type RoomHandler struct {
    Catalog *service.CatalogService
}

func NewRoomHandler(catalog *service.CatalogService) *RoomHandler {
    if catalog == nil {
        panic("nil catalog passed to NewRoomHandler")
    }
    return &RoomHandler{Catalog: catalog}
}

// List handles GET /api/admin/product with optional search, minPrice,
// maxPrice, amenities and sortBy query parameters.
func (h *RoomHandler) List(c echo.Context) error {
    f := model.RoomFilter{
        Search: strings.TrimSpace(c.QueryParam("search")),
        SortBy: strings.TrimSpace(c.QueryParam("sortBy")),
    }
    var ok bool
    if f.MinPrice, ok = optionalInt(c.QueryParam("minPrice")); !ok {
        return fail(c, http.StatusBadRequest, "minPrice must be a number")
    }
    if f.MaxPrice, ok = optionalInt(c.QueryParam("maxPrice")); !ok {
        return fail(c, http.StatusBadRequest, "maxPrice must be a number")
    }
    // amenities may be repeated (?amenities=wifi&amenities=tv) or comma separated
    for _, v := range c.QueryParams()["amenities"] {
        f.Amenities = append(f.Amenities, model.ParseAmenities(v)...)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    rooms, err := h.Catalog.List(ctx, f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "products": rooms, "count": len(rooms)})
}

// Get handles GET /api/admin/product/:id.
func (h *RoomHandler) Get(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return fail(c, http.StatusBadRequest, "invalid room id")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    room, err := h.Catalog.Get(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Product fetched successfully", "product": room})
}

// Create handles the multipart POST /api/admin/add-product.  The image file
// is mandatory; the remaining fields are title, price, offer, amen and desc.
func (h *RoomHandler) Create(c echo.Context) error {
    in := service.RoomInput{
        Title: c.FormValue("title"),
        Desc:  c.FormValue("desc"),
        Amen:  model.ParseAmenities(c.FormValue("amen")),
    }
    if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
        v, err := strconv.ParseFloat(raw, 64)
        if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
            return fail(c, http.StatusBadRequest, "price must be a number")
        }
        in.Price = int64(math.Round(v))
    }
    if offer := strings.TrimSpace(c.FormValue("offer")); offer != "" {
        in.Offer = &offer
    }
    if raw := c.FormValue("available"); raw != "" {
        if v, err := strconv.ParseBool(raw); err == nil {
            in.Available = &v
        }
    }

    var upload *service.ImageUpload
    fh, err := c.FormFile("image")
    switch {
    case err == nil:
        src, err := fh.Open()
        if err != nil {
            return writeError(c, err)
        }
        defer src.Close()
        upload = &service.ImageUpload{Filename: fh.Filename, Body: src}
    case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
        // left nil; the service reports the missing image
    default:
        return fail(c, http.StatusBadRequest, "invalid multipart form")
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    room, err := h.Catalog.Create(ctx, middleware.PrincipalFrom(c), in, upload)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "product": room})
}

// Update handles PUT /api/admin/product/:id with a JSON partial room.
func (h *RoomHandler) Update(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return fail(c, http.StatusBadRequest, "invalid room id")
    }
    var patch model.RoomPatch
    if err := c.Bind(&patch); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    room, err := h.Catalog.Update(ctx, middleware.PrincipalFrom(c), id, patch)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "product": room})
}

// Delete handles DELETE /api/admin/product/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return fail(c, http.StatusBadRequest, "invalid room id")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Catalog.Delete(ctx, middleware.PrincipalFrom(c), id); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product deleted"})
}

type availabilityReq struct {
    Available *bool `json:"available"`
}

// SetAvailability handles PATCH /api/admin/product/:id with {available}.
func (h *RoomHandler) SetAvailability(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return fail(c, http.StatusBadRequest, "invalid room id")
    }
    var req availabilityReq
    if err := c.Bind(&req); err != nil || req.Available == nil {
        return fail(c, http.StatusBadRequest, "available (bool) required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    room, err := h.Catalog.SetAvailability(ctx, middleware.PrincipalFrom(c), id, *req.Available)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "product": room})
}

type bulkDeleteReq struct {
    IDs []flexID `json:"ids"`
}

// BulkDelete handles POST /api/admin/product/bulk-delete.
func (h *RoomHandler) BulkDelete(c echo.Context) error {
    var req bulkDeleteReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "ids must be a list of room ids")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    n, err := h.Catalog.BulkDelete(ctx, middleware.PrincipalFrom(c), toIDs(req.IDs))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "deletedCount": n})
}

type bulkPriceReq struct {
    IDs        []flexID `json:"ids"`
    Percentage *float64 `json:"percentage"`
}

// BulkPrice handles POST /api/admin/product/bulk-price.  The response adds
// the number of rooms updated and the ids whose update failed.
func (h *RoomHandler) BulkPrice(c echo.Context) error {
    var req bulkPriceReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    if req.Percentage == nil {
        return fail(c, http.StatusBadRequest, "percentage is required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    res, err := h.Catalog.BulkAdjustPrice(ctx, middleware.PrincipalFrom(c), toIDs(req.IDs), *req.Percentage)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "updated": res.Updated, "failed": res.Failed})
}

// optionalInt parses an optional integer query value.  Empty means unset.
func optionalInt(raw string) (*int64, bool) {
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return nil, true
    }
    v, err := strconv.ParseInt(raw, 10, 64)
    if err != nil {
        return nil, false
    }
    return &v, true
}
