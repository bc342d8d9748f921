package wallet

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/waan1232/campus-share-app-sub000/model"
	walletsvc "github.com/waan1232/campus-share-app-sub000/service/wallet"
)

type Controller struct {
	Svc walletsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/wallet/balance
func (h *Controller) Balance(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	balance, err := h.Svc.Balance(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("balance", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": balance})
}

// POST /v1/wallet/withdrawals
func (h *Controller) CreateWithdrawal(c echo.Context) error {
	var req model.CreateWithdrawalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	w, err := h.Svc.RequestWithdrawal(c.Request().Context(), uid, req)
	if err != nil {
		switch walletsvc.Code(err) {
		case walletsvc.ErrBadAmount:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
		case walletsvc.ErrInsufficientBalance:
			return c.JSON(http.StatusConflict, echo.Map{"message": "amount exceeds balance"})
		default:
			h.Log.Error("withdrawal create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": w})
}

// GET /v1/wallet/withdrawals
func (h *Controller) ListWithdrawals(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	ws, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("withdrawal list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": ws})
}
