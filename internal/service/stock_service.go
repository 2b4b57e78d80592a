package service

import (
	"context"
	"errors"

	"github.com/ucbazaar/shop-backend/internal/model"
	"github.com/ucbazaar/shop-backend/internal/repository"
	"gorm.io/gorm"
)

// StockLedger is the only mutation path for product stock. Every
// successful adjustment appends exactly one history row.
type StockLedger interface {
	Adjust(ctx context.Context, productID uint64, delta int64, note string) (int64, error)
	History(ctx context.Context, productID uint64, limit int) ([]model.StockHistory, error)
}

type stockLedger struct {
	products repository.ProductRepository
}

func NewStockLedger(products repository.ProductRepository) StockLedger {
	return &stockLedger{products: products}
}

func (s *stockLedger) Adjust(ctx context.Context, productID uint64, delta int64, note string) (int64, error) {
	if delta == 0 {
		p, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrNotFound
			}
			return 0, err
		}
		return p.Stock, nil
	}
	level, err := s.products.AdjustStock(ctx, productID, delta, model.StockChangeTypeOrder, note)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return level, nil
}

func (s *stockLedger) History(ctx context.Context, productID uint64, limit int) ([]model.StockHistory, error) {
	return s.products.HistoryByProduct(ctx, productID, limit)
}
