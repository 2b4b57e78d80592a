package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ucbazaar/shop-backend/internal/config"
	"github.com/ucbazaar/shop-backend/internal/handler"
	appmw "github.com/ucbazaar/shop-backend/internal/middleware"
	"github.com/ucbazaar/shop-backend/internal/repository"
	"github.com/ucbazaar/shop-backend/internal/service"
	"github.com/ucbazaar/shop-backend/internal/session"
	"github.com/ucbazaar/shop-backend/internal/telegram"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(db *gorm.DB, cfg *config.Config, tg telegram.Client, carts session.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	userRepo := repository.NewUserRepository(db)

	stock := service.NewStockLedger(productRepo)
	referrals := service.NewReferralLedger(referralRepo, userRepo)
	notifier := service.NewNotifier(tg, cfg.ManagerChatID, cfg.ExtraManagerIDs)
	orders := service.NewOrderService(orderRepo, userRepo, productRepo, stock, referrals, notifier)

	orderHandler := handler.NewOrderHandler(orders, referrals, carts)
	productHandler := handler.NewProductHandler(productRepo, stock)
	statsHandler := handler.NewStatsHandler(orders)
	paymentHandler := handler.NewPaymentHandler(orders, cfg.MerchantID, cfg.MerchantSecret)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"ok": "true"})
	})

	// The gateway posts here; it authenticates with its signature, not the
	// admin token.
	e.POST("/payments/freekassa/callback", paymentHandler.Callback)

	api := e.Group("/api", appmw.AdminToken(cfg.AdminToken))
	api.GET("/orders", orderHandler.List)
	api.POST("/orders", orderHandler.Create)
	api.GET("/orders/:id", orderHandler.Get)
	api.PATCH("/orders/:id", orderHandler.Patch)
	api.GET("/products", productHandler.List)
	api.POST("/products", productHandler.Create)
	api.PATCH("/products/:id", productHandler.Patch)
	api.POST("/products/:id/stock", productHandler.AdjustStock)
	api.GET("/products/:id/history", productHandler.History)
	api.GET("/stats", statsHandler.Get)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
