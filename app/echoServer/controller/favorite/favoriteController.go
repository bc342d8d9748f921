package favorite

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/waan1232/campus-share-app-sub000/model"
	favoritesvc "github.com/waan1232/campus-share-app-sub000/service/favorite"
)

type Controller struct {
	Svc favoritesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/favorites/toggle
func (h *Controller) Toggle(c echo.Context) error {
	var req model.ToggleFavoriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	nowFavorite, err := h.Svc.Toggle(c.Request().Context(), uid, req.ItemID)
	if err != nil {
		h.Log.Error("favorite toggle", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favorited": nowFavorite})
}

// GET /v1/favorites
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	favs, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("favorite list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": favs})
}
