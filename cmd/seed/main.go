package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/ucbazaar/shop-backend/internal/config"
	"github.com/ucbazaar/shop-backend/internal/db"
	"github.com/ucbazaar/shop-backend/internal/model"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(&model.Product{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var count int64
	if err := gdb.WithContext(ctx).Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("products already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	products := buildSeedProducts()
	if err := gdb.WithContext(ctx).Create(&products).Error; err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	log.Printf("seeded %d products", len(products))
	return nil
}

func buildSeedProducts() []model.Product {
	return []model.Product{
		{Name: "60 UC", Price: 9900, Stock: 100, Category: "uc", Status: model.ProductStatusActive, Fulfillment: model.FulfillmentAuto},
		{Name: "325 UC", Price: 48900, Stock: 100, Category: "uc", Status: model.ProductStatusActive, Fulfillment: model.FulfillmentAuto},
		{Name: "660 UC", Price: 97900, Stock: 50, Category: "uc", Status: model.ProductStatusActive, Fulfillment: model.FulfillmentAuto},
		{Name: "1800 UC", Price: 249900, Stock: 25, Category: "uc", Status: model.ProductStatusActive, Fulfillment: model.FulfillmentAuto},
		{Name: "Костюм сезона", Price: 159900, Stock: 10, Category: "costume", Status: model.ProductStatusActive, Fulfillment: model.FulfillmentManual},
		{Name: "Dacia с обвесом", Price: 219900, Stock: 5, Category: "car", Status: model.ProductStatusActive, Fulfillment: model.FulfillmentManual},
		{Name: "Популярность ×1000", Price: 29900, Stock: 30, Category: "popularity", Status: model.ProductStatusActive, Fulfillment: model.FulfillmentManual},
	}
}
