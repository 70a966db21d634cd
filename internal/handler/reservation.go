package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-hold-engine/internal/service"
)

// BookingEngine is the part of the booking service the HTTP layer calls.
type BookingEngine interface {
	Reserve(ctx context.Context, req service.ReserveRequest) (*service.BookingDetails, error)
	Confirm(ctx context.Context, bookingID string) (*service.BookingDetails, error)
	GetBooking(ctx context.Context, bookingID string) (*service.BookingDetails, error)
}

// BookingHandler exposes reserve, confirm and booking lookup.  Callers are
// anonymous: the user email is an opaque contact, not an identity.
type BookingHandler struct {
	Engine BookingEngine
	Log    *slog.Logger
}

// NewBookingHandler constructs a BookingHandler.  engine must be non-nil.
func NewBookingHandler(engine BookingEngine, log *slog.Logger) *BookingHandler {
	if engine == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &BookingHandler{Engine: engine, Log: log}
}

type reserveRequest struct {
	ShowID    string   `json:"showId" validate:"required"`
	SeatIDs   []string `json:"seatIds" validate:"required,min=1,dive,required"`
	UserEmail string   `json:"userEmail" validate:"required,email"`
}

type confirmRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
}

// bookingSummary is the booking shape returned by reserve.
type bookingSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
	Seats     []int     `json:"seats"`
}

// bookingView is the full booking shape returned by lookup.
type bookingView struct {
	ID        string    `json:"id"`
	ShowID    string    `json:"showId"`
	UserEmail string    `json:"userEmail"`
	Status    string    `json:"status"`
	SeatIDs   []string  `json:"seatIds"`
	Seats     []int     `json:"seats"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

const msgInternal = "An unexpected error occurred"

// Reserve handles POST /v1/reserve.  The body is
// {"showId": "...", "seatIds": ["..."], "userEmail": "..."}.  On success it
// returns the PENDING booking with its deadline and seat numbers so the
// client can show a countdown.
//
//   - 400: malformed body, missing fields, or seats not in the show
//   - 409: a seat is not available (with unavailableSeats) or was just taken
//   - 500: store failure
func (h *BookingHandler) Reserve(c echo.Context) error {
	var req reserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		fields := failedFields(err)
		if tag, ok := fields["userEmail"]; ok && tag == "email" && len(fields) == 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "userEmail must be a valid email address"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields: showId, seatIds (array), userEmail"})
	}

	b, err := h.Engine.Reserve(c.Request().Context(), service.ReserveRequest{
		ShowID:    req.ShowID,
		SeatIDs:   req.SeatIDs,
		UserEmail: req.UserEmail,
	})
	if err != nil {
		var unavailable *service.UnavailableSeatsError
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields: showId, seatIds (array), userEmail"})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Some seats were not found"})
		case errors.As(err, &unavailable):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":            "Some seats are not available",
				"unavailableSeats": unavailable.SeatNumbers,
			})
		case errors.Is(err, service.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Some seats were just taken by another user. Please try again."})
		default:
			h.Log.Error("reserve failed", "show_id", req.ShowID, "seat_count", len(req.SeatIDs), "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create booking"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"booking": bookingSummary{
			ID:        b.ID,
			Status:    string(b.Status),
			ExpiresAt: b.ExpiresAt,
			Seats:     nonNilInts(b.SeatNumbers),
		},
	})
}

// Confirm handles POST /v1/confirm with body {"bookingId": "..."}.
//
//   - 400: missing bookingId, booking not PENDING, or deadline passed
//   - 404: unknown booking
//   - 409: a concurrent request resolved the booking first
//   - 500: store failure
func (h *BookingHandler) Confirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required field: bookingId"})
	}

	b, err := h.Engine.Confirm(c.Request().Context(), req.BookingID)
	if err != nil {
		var invalid *service.InvalidStateError
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required field: bookingId"})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found"})
		case errors.As(err, &invalid):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Booking cannot be confirmed. Current status: " + string(invalid.Status)})
		case errors.Is(err, service.ErrExpired):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Booking has expired"})
		case errors.Is(err, service.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "Booking was already resolved by another request"})
		default:
			h.Log.Error("confirm failed", "booking_id", req.BookingID, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternal})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"booking": echo.Map{"id": b.ID, "status": string(b.Status)},
	})
}

// GetBooking handles GET /v1/bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	b, err := h.Engine.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Booking not found"})
		default:
			h.Log.Error("get booking failed", "booking_id", c.Param("id"), "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternal})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": bookingView{
		ID:        b.ID,
		ShowID:    b.ShowID,
		UserEmail: b.UserEmail,
		Status:    string(b.Status),
		SeatIDs:   b.SeatIDs,
		Seats:     nonNilInts(b.SeatNumbers),
		ExpiresAt: b.ExpiresAt,
		CreatedAt: b.CreatedAt,
	}})
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
