package handler

import (
    "math"     // rounding of client quotes
    "net/http" // status codes

    "github.com/labstack/echo/v4" // echo context

    "github.com/iliyamo/resort-booking/internal/middleware" // caller principal
    "github.com/iliyamo/resort-booking/internal/service"    // booking workflow and directory
)

// BookingHandler exposes the booking workflow and the admin user
// directory.
type BookingHandler struct {
    Bookings  *service.BookingService
    Directory *service.DirectoryService
}

func NewBookingHandler(bookings *service.BookingService, directory *service.DirectoryService) *BookingHandler {
    if bookings == nil || directory == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: bookings, Directory: directory}
}

// createBookingReq mirrors the payload of the room detail page.  The
// display fields (productName, offer, image) are accepted but the stored
// snapshot always comes from the room record.
type createBookingReq struct {
    RoomID      flexID   `json:"resortRoom"`
    StartDate   string   `json:"startDate"`
    EndDate     string   `json:"endDate"`
    Price       *float64 `json:"price"`
    ProductName string   `json:"productName"`
    Offer       *string  `json:"offer"`
    Image       string   `json:"image"`
}

// Create handles POST /api/bookings for a signed-in user.
func (h *BookingHandler) Create(c echo.Context) error {
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    start, err := service.ParseDate(req.StartDate)
    if err != nil {
        return writeError(c, err)
    }
    end, err := service.ParseDate(req.EndDate)
    if err != nil {
        return writeError(c, err)
    }
    br := service.BookingRequest{RoomID: uint64(req.RoomID), StartDate: start, EndDate: end}
    if req.Price != nil && !math.IsNaN(*req.Price) && !math.IsInf(*req.Price, 0) {
        q := int64(math.Round(*req.Price))
        br.QuotedPrice = &q
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Bookings.Create(ctx, middleware.PrincipalFrom(c), br)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "success": true,
        "message": "Booking request submitted successfully",
        "booking": b,
    })
}

// Mine handles GET /api/bookings/mine.
func (h *BookingHandler) Mine(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    list, err := h.Bookings.ListMine(ctx, middleware.PrincipalFrom(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": list, "count": len(list)})
}

type statusReq struct {
    BookingID flexID `json:"bookingId"`
    Status    string `json:"status"`
}

// Decide handles POST /api/admin/approve-booking.  Only approved and
// rejected are accepted.
func (h *BookingHandler) Decide(c echo.Context) error {
    var req statusReq
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return fail(c, http.StatusBadRequest, "bookingId and status required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Bookings.Decide(ctx, middleware.PrincipalFrom(c), uint64(req.BookingID), req.Status)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message": "Booking " + string(b.Status) + " successfully",
        "booking": b,
    })
}

// SetStatus handles POST /api/users, the admin dashboard's status control.
// Any known status, pending included, is accepted.
func (h *BookingHandler) SetStatus(c echo.Context) error {
    var req statusReq
    if err := c.Bind(&req); err != nil || req.BookingID == 0 {
        return fail(c, http.StatusBadRequest, "bookingId and status required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    b, err := h.Bookings.SetStatus(ctx, middleware.PrincipalFrom(c), uint64(req.BookingID), req.Status)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Booking status updated to " + string(b.Status), "booking": b})
}

// Delete handles DELETE /api/users?bookingId=.
func (h *BookingHandler) Delete(c echo.Context) error {
    id, ok := parseID(c.QueryParam("bookingId"))
    if !ok {
        return fail(c, http.StatusBadRequest, "bookingId query parameter required")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Bookings.Delete(ctx, middleware.PrincipalFrom(c), id); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Booking deleted successfully"})
}

// Users handles GET /api/admin/users: every regular user with their
// bookings and the rooms those bookings point to.
func (h *BookingHandler) Users(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    users, err := h.Directory.ListUsersWithBookings(ctx, middleware.PrincipalFrom(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "users": users, "count": len(users)})
}
