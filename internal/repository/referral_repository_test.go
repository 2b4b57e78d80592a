package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ucbazaar/shop-backend/internal/model"
	"gorm.io/gorm"
)

func TestCreateEdgesFirstWriteWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewReferralRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateEdges(ctx, []model.ReferralEdge{
		{UserID: 10, ReferrerID: 20, Level: 1},
	}))

	// second attribution attempt for the same user is a silent no-op
	require.NoError(t, repo.CreateEdges(ctx, []model.ReferralEdge{
		{UserID: 10, ReferrerID: 30, Level: 1},
	}))

	referrer, ok, err := repo.FindReferrer(ctx, 10, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(20), referrer, "attribution is permanent")
}

func TestFindReferrerAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewReferralRepository(db)

	_, ok, err := repo.FindReferrer(context.Background(), 999, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAddPoints(t *testing.T) {
	db := newTestDB(t)
	repo := NewReferralRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	_, err := users.Ensure(ctx, 20, "inviter")
	require.NoError(t, err)

	require.NoError(t, repo.AddPoints(ctx, 20, 30))
	require.NoError(t, repo.AddPoints(ctx, 20, 10))

	u, err := users.FindByID(ctx, 20)
	require.NoError(t, err)
	require.Equal(t, int64(40), u.ReferralPoints)
}

func TestAddPointsUnknownUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewReferralRepository(db)

	err := repo.AddPoints(context.Background(), 404, 5)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
