// This file defines handlers for the public browsing API: the show list,
// a single show, and the live seat map of a show.  None of them touch the
// reservation engine.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-hold-engine/internal/clock"
	"github.com/iliyamo/seat-hold-engine/internal/model"
	"github.com/iliyamo/seat-hold-engine/internal/repository"
)

// PublicHandler aggregates repositories needed for browsing.
type PublicHandler struct {
	ShowRepo *repository.ShowRepo
	SeatRepo *repository.SeatRepo
	Clock    clock.Clock
	Log      *slog.Logger
}

// ListShows handles GET /v1/shows.  Query parameters:
//   - name: case-insensitive substring filter
//   - time: "any" (default) or "upcoming" (start_time >= now)
//   - page: 1-based page number
//   - page_size: 1..100, default 20
//
// Shows are ordered by start time.
func (h *PublicHandler) ListShows(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	q := repository.ShowSearchQuery{
		Name:     strings.TrimSpace(c.QueryParam("name")),
		Upcoming: strings.EqualFold(strings.TrimSpace(c.QueryParam("time")), "upcoming"),
		Now:      h.Clock.Now(),
		Page:     page,
		PageSize: ps,
	}
	items, total, err := h.ShowRepo.Search(c.Request().Context(), q)
	if err != nil {
		h.Log.Error("list shows failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

// GetShow handles GET /v1/shows/:id.
func (h *PublicHandler) GetShow(c echo.Context) error {
	show, err := h.ShowRepo.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrShowNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Show not found"})
	}
	if err != nil {
		h.Log.Error("get show failed", "show_id", c.Param("id"), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"show": show})
}

// GetShowSeats handles GET /v1/shows/:id/seats.  Seats are ordered by seat
// number and carry their live status, so clients poll this to refresh the
// seat map.
func (h *PublicHandler) GetShowSeats(c echo.Context) error {
	ctx := c.Request().Context()
	showID := c.Param("id")
	if _, err := h.ShowRepo.GetByID(ctx, showID); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Show not found"})
		}
		h.Log.Error("get show failed", "show_id", showID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	seats, err := h.SeatRepo.ListByShow(ctx, showID)
	if err != nil {
		h.Log.Error("list seats failed", "show_id", showID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	available := 0
	for _, s := range seats {
		if s.Status == model.SeatAvailable {
			available++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": seats, "available": available})
}
