// app/echoServer/controller/auth/authController.go
package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/waan1232/campus-share-app-sub000/model"
	authsvc "github.com/waan1232/campus-share-app-sub000/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register, derive the school silo from the email domain, email a verification code
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email/username already taken"
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		case authsvc.ErrUsernameTaken:
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			ct.Log.Error("register failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered, check your email for the verification code",
		"user":    u,
		"token":   token,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /v1/users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds:
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		default:
			ct.Log.Error("login failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"user":    u,
		"token":   token,
	})
}

// Verify
// @Summary      Verify email
// @Tags         users
// @Router       /v1/users/verify [post]
func (ct *Controller) Verify(c echo.Context) error {
	var req model.VerifyReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	if err := ct.Svc.Verify(c.Request().Context(), req.Email, req.Code); err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrUserNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case authsvc.ErrAlreadyVerified:
			return echo.NewHTTPError(http.StatusConflict, "already verified")
		case authsvc.ErrCodeExpired:
			return echo.NewHTTPError(http.StatusBadRequest, "code expired, request a new one")
		case authsvc.ErrCodeMismatch:
			return echo.NewHTTPError(http.StatusBadRequest, "wrong code")
		default:
			ct.Log.Error("verify failed", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "verify failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}

// Resend
// @Summary      Resend verification code
// @Tags         users
// @Router       /v1/users/resend [post]
func (ct *Controller) Resend(c echo.Context) error {
	var req model.ResendReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	if err := ct.Svc.Resend(c.Request().Context(), req.Email); err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrUserNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case authsvc.ErrAlreadyVerified:
			return echo.NewHTTPError(http.StatusConflict, "already verified")
		case authsvc.ErrResendTooSoon:
			return echo.NewHTTPError(http.StatusTooManyRequests, "wait before requesting another code")
		default:
			ct.Log.Error("resend failed", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "resend failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "code sent"})
}
