package message

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/waan1232/campus-share-app-sub000/model"
	messagesvc "github.com/waan1232/campus-share-app-sub000/service/message"
	rentalsvc "github.com/waan1232/campus-share-app-sub000/service/rental"
)

type Controller struct {
	Svc messagesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/messages
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	msgs, err := h.Svc.ListForUser(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("message list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": msgs})
}

// POST /v1/messages
func (h *Controller) Send(c echo.Context) error {
	var req model.SendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	m, err := h.Svc.Send(c.Request().Context(), uid, req)
	if err != nil {
		switch messagesvc.Code(err) {
		case messagesvc.ErrSelfMessage:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot message yourself"})
		case messagesvc.ErrBadOffer:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "offer needs item, price and a valid date range"})
		default:
			h.Log.Error("message send", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": m})
}

// PATCH /v1/messages/:id/offer
func (h *Controller) DecideOffer(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.OfferDecisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	m, err := h.Svc.DecideOffer(c.Request().Context(), uid, id, req.Action == "accept")
	if err != nil {
		switch messagesvc.Code(err) {
		case messagesvc.ErrMessageNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "message not found"})
		case messagesvc.ErrNotReceiver:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case messagesvc.ErrNotAnOffer:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "message carries no offer"})
		case messagesvc.ErrOfferNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"message": "offer already decided"})
		}
		// Acceptance funnels through the rental gate, so its errors
		// surface here too.
		switch rentalsvc.Code(err) {
		case rentalsvc.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "dates are no longer available"})
		case rentalsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		case rentalsvc.ErrOwnItem:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "cannot rent your own item"})
		case rentalsvc.ErrItemDelisted:
			return c.JSON(http.StatusConflict, echo.Map{"message": "item is not listed"})
		case rentalsvc.ErrInvalidRange:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "end date before start date"})
		}
		h.Log.Error("offer decide", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": m})
}
