// Package session holds in-progress carts keyed by user. The state is
// passed explicitly per request instead of living in a shared mutable map,
// and every entry carries a TTL.
package session

import (
	"context"

	"github.com/ucbazaar/shop-backend/internal/model"
)

type Cart struct {
	PubgID     string           `json:"pubgId"`
	Nickname   string           `json:"nickname,omitempty"`
	ReferrerID int64            `json:"referrerId,omitempty"`
	Items      []model.LineItem `json:"items"`
}

// Store implementations return (nil, nil) for an absent or expired cart.
type Store interface {
	Get(ctx context.Context, userID int64) (*Cart, error)
	Put(ctx context.Context, userID int64, cart *Cart) error
	Delete(ctx context.Context, userID int64) error
}
