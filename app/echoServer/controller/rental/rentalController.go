package rental

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/waan1232/campus-share-app-sub000/model"
	rentalsvc "github.com/waan1232/campus-share-app-sub000/service/rental"
)

type Controller struct {
	Svc rentalsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func parseRange(startStr, endStr string) (time.Time, time.Time, bool) {
	start, err := rentalsvc.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := rentalsvc.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch rentalsvc.Code(err) {
	case rentalsvc.ErrInvalidRange:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "end date before start date"})
	case rentalsvc.ErrItemNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
	case rentalsvc.ErrRentalNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
	case rentalsvc.ErrOwnItem:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "cannot rent your own item"})
	case rentalsvc.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case rentalsvc.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": "dates are no longer available"})
	case rentalsvc.ErrInvalidTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": "illegal status change"})
	case rentalsvc.ErrItemDelisted:
		return c.JSON(http.StatusConflict, echo.Map{"message": "item is not listed"})
	case rentalsvc.ErrNotDeletable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "only availability blocks can be deleted"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /v1/rentals
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	start, end, ok := parseRange(req.StartDate, req.EndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "dates must be YYYY-MM-DD"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Request(c.Request().Context(), uid, req.ItemID, start, end)
	if err != nil {
		return h.fail(c, "rental create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// POST /v1/items/:id/unavailable
func (h *Controller) CreateBlock(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.BlockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	start, end, ok := parseRange(req.StartDate, req.EndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "dates must be YYYY-MM-DD"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Block(c.Request().Context(), uid, itemID, start, end)
	if err != nil {
		return h.fail(c, "block create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": out})
}

// PATCH /v1/rentals/:id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.UpdateRentalStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Transition(c.Request().Context(), uid, id, model.RentalStatus(req.Status))
	if err != nil {
		return h.fail(c, "rental status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// DELETE /v1/rentals/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return h.fail(c, "rental delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// GET /v1/rentals
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	out, err := h.Svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("rental list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/items/:id/availability?start=&end=
func (h *Controller) Availability(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	start, end, ok := parseRange(c.QueryParam("start"), c.QueryParam("end"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "dates must be YYYY-MM-DD"})
	}

	available, err := h.Svc.IsRangeAvailable(c.Request().Context(), itemID, start, end, 0)
	if err != nil {
		return h.fail(c, "availability", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": available})
}
