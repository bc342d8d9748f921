// Package main CampusShare API.
//
// @title           CampusShare API
// @version         1.0
// @description     Campus-scoped peer-to-peer rental marketplace.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/waan1232/campus-share-app-sub000/app/echoServer"
	authctrl "github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/auth"
	favoritectrl "github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/favorite"
	itemctrl "github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/item"
	messagectrl "github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/message"
	paymentctrl "github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/payment"
	rentalctrl "github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/rental"
	walletctrl "github.com/waan1232/campus-share-app-sub000/app/echoServer/controller/wallet"
	"github.com/waan1232/campus-share-app-sub000/app/echoServer/validation"
	"github.com/waan1232/campus-share-app-sub000/config"
	favoriterepo "github.com/waan1232/campus-share-app-sub000/repository/favorite"
	itemrepo "github.com/waan1232/campus-share-app-sub000/repository/item"
	mailrepo "github.com/waan1232/campus-share-app-sub000/repository/mail"
	messagerepo "github.com/waan1232/campus-share-app-sub000/repository/message"
	rentalrepo "github.com/waan1232/campus-share-app-sub000/repository/rental"
	striperepo "github.com/waan1232/campus-share-app-sub000/repository/stripe"
	userrepo "github.com/waan1232/campus-share-app-sub000/repository/user"
	withdrawalrepo "github.com/waan1232/campus-share-app-sub000/repository/withdrawal"
	authsvc "github.com/waan1232/campus-share-app-sub000/service/auth"
	catalogsvc "github.com/waan1232/campus-share-app-sub000/service/catalog"
	favoritesvc "github.com/waan1232/campus-share-app-sub000/service/favorite"
	messagesvc "github.com/waan1232/campus-share-app-sub000/service/message"
	paymentsvc "github.com/waan1232/campus-share-app-sub000/service/payment"
	rentalsvc "github.com/waan1232/campus-share-app-sub000/service/rental"
	walletsvc "github.com/waan1232/campus-share-app-sub000/service/wallet"
	"github.com/waan1232/campus-share-app-sub000/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	ir := itemrepo.New(db)
	rr := rentalrepo.New(db)
	fr := favoriterepo.New(db)
	mr := messagerepo.New(db)
	wr := withdrawalrepo.New(db)
	sp := striperepo.NewHTTP(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	mailer := mailrepo.NewSMTP(mailrepo.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	// services
	as := authsvc.New(ur, mailer, cfg.JWTSecret, log)
	cs := catalogsvc.New(ir, ur)
	rs := rentalsvc.New(rr)
	fs := favoritesvc.New(fr)
	ms := messagesvc.New(mr, rs)
	ws := walletsvc.New(wr)
	ps := paymentsvc.New(rr, sp, paymentsvc.URLs{
		Success: cfg.CheckoutSuccessURL,
		Cancel:  cfg.CheckoutCancelURL,
	})

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: cs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	favoriteC := &favoritectrl.Controller{Svc: fs, V: v, Log: log}
	messageC := &messagectrl.Controller{Svc: ms, V: v, Log: log}
	walletC := &walletctrl.Controller{Svc: ws, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]any{"status": "degraded", "db": err.Error()})
		}
		return c.JSON(200, map[string]any{"status": "ok"})
	})

	e.GET("/metrics", echoServer.MetricsHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Item:     itemC,
		Rental:   rentalC,
		Favorite: favoriteC,
		Message:  messageC,
		Wallet:   walletC,
		Payment:  paymentC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
