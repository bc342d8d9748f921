package payment

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	paymentsvc "github.com/waan1232/campus-share-app-sub000/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// POST /v1/payments/checkout?rental_id=
func (h *Controller) CreateCheckout(c echo.Context) error {
	var req struct {
		RentalID int64 `json:"rental_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if req.RentalID <= 0 {
		if id, err := strconv.ParseInt(c.QueryParam("rental_id"), 10, 64); err == nil {
			req.RentalID = id
		}
	}
	if req.RentalID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rental_id required"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.CreateCheckout(c.Request().Context(), uid, req.RentalID)
	if err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrRentalNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case paymentsvc.ErrNotRenter:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case paymentsvc.ErrNotPayable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "rental is not payable"})
		default:
			h.Log.Error("checkout create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/payments/stripe — webhook endpoint, raw body is signed.
func (h *Controller) HandleStripe(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}
	sig := c.Request().Header.Get("Stripe-Signature")

	if err := h.Svc.HandleWebhook(c.Request().Context(), sig, raw); err != nil {
		if paymentsvc.Code(err) == paymentsvc.ErrBadSignature {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "bad signature"})
		}
		h.Log.Error("stripe webhook", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
