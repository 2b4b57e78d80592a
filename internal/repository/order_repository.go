package repository

import (
	"context"
	"time"

	"github.com/ucbazaar/shop-backend/internal/model"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status model.OrderStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type StatusCount struct {
	Status model.OrderStatus
	Count  int64
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	CreateBatch(ctx context.Context, orders []*model.Order) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error)
	ListByCheckout(ctx context.Context, checkoutID string) ([]model.Order, error)
	FindByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error)
	UpdateStatusFrom(ctx context.Context, id uint64, from, to model.OrderStatus, nickname *string) (int64, error)
	MarkReferralCredited(ctx context.Context, id uint64) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) CreateBatch(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(orders).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Order
	if err := q.Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *orderRepository) ListByCheckout(ctx context.Context, checkoutID string) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("checkout_id = ?", checkoutID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) FindByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatusFrom persists a transition only if the row is still in the
// expected previous status. Zero rows affected means the order vanished or
// a concurrent transition won.
func (r *orderRepository) UpdateStatusFrom(ctx context.Context, id uint64, from, to model.OrderStatus, nickname *string) (int64, error) {
	updates := map[string]interface{}{"status": to}
	if nickname != nil {
		updates["nickname"] = *nickname
	}
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// MarkReferralCredited is the check-and-set gate that keeps a retried
// webhook from crediting commissions twice.
func (r *orderRepository) MarkReferralCredited(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND referral_credited = ?", id, false).
		Update("referral_credited", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	if err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
