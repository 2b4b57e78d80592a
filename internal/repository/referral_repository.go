package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/ucbazaar/shop-backend/internal/model"
	"gorm.io/gorm"
)

type ReferralRepository interface {
	CreateEdges(ctx context.Context, edges []model.ReferralEdge) error
	HasEdge(ctx context.Context, userID int64) (bool, error)
	FindReferrer(ctx context.Context, userID int64, level int) (int64, bool, error)
	AddPoints(ctx context.Context, userID int64, points int64) error
}

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

// CreateEdges inserts edges one by one; a duplicate-key conflict means the
// user is already attributed and is skipped, not overwritten.
func (r *referralRepository) CreateEdges(ctx context.Context, edges []model.ReferralEdge) error {
	for i := range edges {
		err := r.db.WithContext(ctx).Create(&edges[i]).Error
		if err != nil && !isDuplicateKey(err) {
			return err
		}
	}
	return nil
}

func (r *referralRepository) HasEdge(ctx context.Context, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.ReferralEdge{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *referralRepository) FindReferrer(ctx context.Context, userID int64, level int) (int64, bool, error) {
	var edge model.ReferralEdge
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND level = ?", userID, level).
		First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return edge.ReferrerID, true, nil
}

func (r *referralRepository) AddPoints(ctx context.Context, userID int64, points int64) error {
	if points <= 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("referral_points", gorm.Expr("referral_points + ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "Duplicate entry") || strings.Contains(s, "UNIQUE") || strings.Contains(s, "unique")
}
