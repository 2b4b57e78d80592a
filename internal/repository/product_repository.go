package repository

import (
	"context"
	"errors"

	"github.com/ucbazaar/shop-backend/internal/model"
	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint64) (*model.Product, error)
	List(ctx context.Context, onlyActive bool) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	AdjustStock(ctx context.Context, productID uint64, delta int64, changeType, note string) (int64, error)
	HistoryByProduct(ctx context.Context, productID uint64, limit int) ([]model.StockHistory, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint64) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, onlyActive bool) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if onlyActive {
		q = q.Where("status = ?", model.ProductStatusActive)
	}
	var list []model.Product
	if err := q.Order("category, id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// AdjustStock applies a signed delta and appends the audit row in one
// transaction. The guarded conditional update keeps the counter atomic and
// never lets it go below zero; zero rows affected on an existing product
// means the floor would be violated.
func (r *productRepository) AdjustStock(ctx context.Context, productID uint64, delta int64, changeType, note string) (int64, error) {
	var newStock int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).
			Where("id = ? AND stock + ? >= 0", productID, delta).
			Update("stock", gorm.Expr("stock + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrInsufficientStock
		}
		if err := tx.Create(&model.StockHistory{
			ProductID: productID,
			Delta:     delta,
			Type:      changeType,
			Note:      note,
		}).Error; err != nil {
			return err
		}
		var p model.Product
		if err := tx.Select("stock").First(&p, productID).Error; err != nil {
			return err
		}
		newStock = p.Stock
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newStock, nil
}

func (r *productRepository) HistoryByProduct(ctx context.Context, productID uint64, limit int) ([]model.StockHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []model.StockHistory
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
