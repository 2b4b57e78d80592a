package service

import (
	"context"
	"errors"
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/ucbazaar/shop-backend/internal/model"
	"github.com/ucbazaar/shop-backend/internal/repository"
	"gorm.io/gorm"
)

const (
	level1Rate = 0.03
	level2Rate = 0.01
)

type CreditResult struct {
	Level1 int64
	Level2 int64
}

type ReferralLedger interface {
	// Attach records who invited userID. First-write-wins: an already
	// attributed user is left untouched.
	Attach(ctx context.Context, userID, referrerID int64) error
	CreditOnQualifyingOrder(ctx context.Context, order *model.Order) (CreditResult, error)
	PointsOf(ctx context.Context, userID int64) (int64, error)
}

type referralLedger struct {
	referrals repository.ReferralRepository
	users     repository.UserRepository
}

func NewReferralLedger(referrals repository.ReferralRepository, users repository.UserRepository) ReferralLedger {
	return &referralLedger{referrals: referrals, users: users}
}

func (s *referralLedger) Attach(ctx context.Context, userID, referrerID int64) error {
	if userID == 0 || referrerID == 0 || userID == referrerID {
		return nil
	}
	attributed, err := s.referrals.HasEdge(ctx, userID)
	if err != nil {
		return err
	}
	if attributed {
		return nil
	}
	edges := []model.ReferralEdge{{UserID: userID, ReferrerID: referrerID, Level: 1}}
	grand, ok, err := s.referrals.FindReferrer(ctx, referrerID, 1)
	if err != nil {
		return err
	}
	if ok && grand != userID {
		edges = append(edges, model.ReferralEdge{UserID: userID, ReferrerID: grand, Level: 2})
	}
	return s.referrals.CreateEdges(ctx, edges)
}

// CreditOnQualifyingOrder credits round-half-up(total×3%) to the level-1
// referrer and round-half-up(total×1%) to the level-2 referrer. Both
// credits are independent; a missing referrer is a no-op for that level.
func (s *referralLedger) CreditOnQualifyingOrder(ctx context.Context, order *model.Order) (CreditResult, error) {
	total := order.Total()
	var res CreditResult
	if total <= 0 {
		return res, nil
	}

	rates := []struct {
		level  int
		rate   float64
		credit *int64
	}{
		{1, level1Rate, &res.Level1},
		{2, level2Rate, &res.Level2},
	}
	for _, r := range rates {
		referrerID, ok, err := s.referrals.FindReferrer(ctx, order.UserID, r.level)
		if err != nil {
			return res, err
		}
		if !ok {
			continue
		}
		points := int64(math.Round(float64(total) * r.rate))
		if points <= 0 {
			continue
		}
		if err := s.referrals.AddPoints(ctx, referrerID, points); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.WithFields(log.Fields{
					"order_id":    order.ID,
					"referrer_id": referrerID,
					"level":       r.level,
				}).Warn("referral credit skipped: referrer has no user row")
				continue
			}
			return res, err
		}
		*r.credit = points
	}
	return res, nil
}

func (s *referralLedger) PointsOf(ctx context.Context, userID int64) (int64, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return u.ReferralPoints, nil
}
