package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/ucbazaar/shop-backend/internal/config"
	"github.com/ucbazaar/shop-backend/internal/db"
	"github.com/ucbazaar/shop-backend/internal/model"
	"github.com/ucbazaar/shop-backend/internal/server"
	"github.com/ucbazaar/shop-backend/internal/session"
	"github.com/ucbazaar/shop-backend/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.StockHistory{},
		&model.ReferralEdge{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	carts := session.NewRedisStore(rdb, time.Duration(cfg.CartTTLMinutes)*time.Minute)

	tg := telegram.NewBotClient(cfg.BotToken, cfg.BotAPIBase)

	srv := server.New(conn, cfg, tg, carts)
	addr := ":" + cfg.Port
	log.Infof("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
