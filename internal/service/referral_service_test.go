package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ucbazaar/shop-backend/internal/model"
)

func orderWithTotal(userID, total int64) *model.Order {
	return &model.Order{
		UserID:   userID,
		Products: model.LineItems{{ProductID: 1, Name: "x", Price: total, Qty: 1, Category: "uc"}},
	}
}

func TestCreditBothLevels(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.users.Ensure(ctx, 20, "")
	require.NoError(t, err)
	_, err = e.users.Ensure(ctx, 30, "")
	require.NoError(t, err)
	require.NoError(t, e.ledger.Attach(ctx, 20, 30))
	require.NoError(t, e.ledger.Attach(ctx, 5, 20))

	res, err := e.ledger.CreditOnQualifyingOrder(ctx, orderWithTotal(5, 1000))
	require.NoError(t, err)
	require.Equal(t, int64(30), res.Level1)
	require.Equal(t, int64(10), res.Level2)
}

func TestCreditRoundsHalfUp(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.users.Ensure(ctx, 20, "")
	require.NoError(t, err)
	require.NoError(t, e.ledger.Attach(ctx, 5, 20))

	// 850 × 0.03 = 25.5 → 26
	res, err := e.ledger.CreditOnQualifyingOrder(ctx, orderWithTotal(5, 850))
	require.NoError(t, err)
	require.Equal(t, int64(26), res.Level1)

	// 10 × 0.03 = 0.3 → 0, nothing credited
	res, err = e.ledger.CreditOnQualifyingOrder(ctx, orderWithTotal(5, 10))
	require.NoError(t, err)
	require.Equal(t, int64(0), res.Level1)
}

func TestCreditWithoutReferrersIsNoOp(t *testing.T) {
	e := newEnv(t)

	res, err := e.ledger.CreditOnQualifyingOrder(context.Background(), orderWithTotal(5, 1000))
	require.NoError(t, err)
	require.Equal(t, int64(0), res.Level1)
	require.Equal(t, int64(0), res.Level2)
}

func TestAttachBuildsLevelTwoEdge(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.ledger.Attach(ctx, 20, 30))
	require.NoError(t, e.ledger.Attach(ctx, 5, 20))

	referrer, ok, err := e.referrals.FindReferrer(ctx, 5, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(20), referrer)

	referrer, ok, err = e.referrals.FindReferrer(ctx, 5, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(30), referrer)
}

func TestAttachIsFirstWriteWins(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.ledger.Attach(ctx, 5, 20))
	require.NoError(t, e.ledger.Attach(ctx, 5, 99))

	referrer, ok, err := e.referrals.FindReferrer(ctx, 5, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(20), referrer)
}

func TestAttachIgnoresSelfReferral(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.ledger.Attach(ctx, 5, 5))
	_, ok, err := e.referrals.FindReferrer(ctx, 5, 1)
	require.NoError(t, err)
	require.False(t, ok)
}
