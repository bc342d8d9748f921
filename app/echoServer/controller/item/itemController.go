package item

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/waan1232/campus-share-app-sub000/model"
	catalogsvc "github.com/waan1232/campus-share-app-sub000/service/catalog"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/items?search=&category=
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	f := model.ItemFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	}
	items, err := h.Svc.ListVisible(c.Request().Context(), uid, f)
	if err != nil {
		h.Log.Error("item list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// GET /v1/items/mine
func (h *Controller) ListMine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	items, err := h.Svc.ListOwn(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("item list mine", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// GET /v1/items/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	it, err := h.Svc.Get(c.Request().Context(), uid, id)
	if err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		default:
			h.Log.Error("item detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": it})
}

// POST /v1/items
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	it, err := h.Svc.Create(c.Request().Context(), uid, req)
	if err != nil {
		h.Log.Error("item create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": it})
}

// PUT /v1/items/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.UpdateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	it, err := h.Svc.Update(c.Request().Context(), uid, id, req)
	if err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		case catalogsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case catalogsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("item update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": it})
}

// DELETE /v1/items/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		case catalogsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("item delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
