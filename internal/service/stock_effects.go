package service

import (
	"fmt"

	"github.com/ucbazaar/shop-backend/internal/model"
)

// StockEffect describes one stock movement a transition causes per line
// item: Sign is multiplied by the item quantity to get the signed delta.
type StockEffect struct {
	Sign int
	Note string
}

type statusPair struct {
	From model.OrderStatus
	To   model.OrderStatus
}

// stockEffectTable enumerates every (from, to) pair once. The effects are
// driven purely by the pair, never by item content. A pair can match more
// than one rule (unpaid→error deducts and restores, netting to zero).
var stockEffectTable = buildStockEffectTable()

func buildStockEffectTable() map[statusPair][]StockEffect {
	t := make(map[statusPair][]StockEffect, len(model.AllOrderStatuses)*len(model.AllOrderStatuses))
	for _, from := range model.AllOrderStatuses {
		for _, to := range model.AllOrderStatuses {
			var effects []StockEffect
			if from == model.OrderStatusUnpaid && to != model.OrderStatusUnpaid && to != model.OrderStatusDelivered {
				effects = append(effects, StockEffect{
					Sign: -1,
					Note: fmt.Sprintf("status changed from %s to %s", from, to),
				})
			}
			if to == model.OrderStatusError && from != model.OrderStatusError {
				effects = append(effects, StockEffect{
					Sign: +1,
					Note: "restored due to error status",
				})
			}
			if from == model.OrderStatusError && to != model.OrderStatusError {
				effects = append(effects, StockEffect{
					Sign: -1,
					Note: "decreased after error resolution",
				})
			}
			t[statusPair{From: from, To: to}] = effects
		}
	}
	return t
}

// StockEffectsFor returns the stock movements for a transition. No matching
// row means no stock mutation.
func StockEffectsFor(from, to model.OrderStatus) []StockEffect {
	return stockEffectTable[statusPair{From: from, To: to}]
}
