package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/auth"
	"github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/favorite"
	"github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/item"
	"github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/message"
	"github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/payment"
	"github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/rental"
	"github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/wallet"
	"github.com/waan1232/campus-share-app-sub000/app/echoServer/jwtx"
)

type C struct {
	Auth      *auth.Controller
	Item      *item.Controller
	Rental    *rental.Controller
	Favorite  *favorite.Controller
	Message   *message.Controller
	Wallet    *wallet.Controller
	Payment   *payment.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	authLimit := RateLimit(2, 5)
	pub.POST("/users/register", c.Auth.Register, authLimit)
	pub.POST("/users/login", c.Auth.Login, authLimit)
	pub.POST("/users/verify", c.Auth.Verify, authLimit)
	pub.POST("/users/resend", c.Auth.Resend, authLimit)

	// Stripe calls this one; it authenticates with its signature header.
	pub.POST("/payments/stripe", c.Payment.HandleStripe)

	// Authenticated
	api := e.Group("/v1")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id extraction
	api.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	// Items
	api.GET("/items", c.Item.List)
	api.GET("/items/mine", c.Item.ListMine)
	api.GET("/items/:id", c.Item.Detail)
	api.POST("/items", c.Item.Create)
	api.PUT("/items/:id", c.Item.Update)
	api.DELETE("/items/:id", c.Item.Delete)
	api.POST("/items/:id/unavailable", c.Rental.CreateBlock)
	api.GET("/items/:id/availability", c.Rental.Availability)

	// Rentals
	api.POST("/rentals", c.Rental.Create)
	api.GET("/rentals", c.Rental.List)
	api.PATCH("/rentals/:id/status", c.Rental.UpdateStatus)
	api.DELETE("/rentals/:id", c.Rental.Delete)

	// Favorites
	api.POST("/favorites/toggle", c.Favorite.Toggle)
	api.GET("/favorites", c.Favorite.List)

	// Messages + offers
	api.GET("/messages", c.Message.List)
	api.POST("/messages", c.Message.Send)
	api.PATCH("/messages/:id/offer", c.Message.DecideOffer)

	// Wallet
	api.GET("/wallet/balance", c.Wallet.Balance)
	api.POST("/wallet/withdrawals", c.Wallet.CreateWithdrawal)
	api.GET("/wallet/withdrawals", c.Wallet.ListWithdrawals)

	// Payments
	api.POST("/payments/checkout", c.Payment.CreateCheckout)
}
