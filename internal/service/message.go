package service

import (
	"fmt"
	"strings"

	"github.com/ucbazaar/shop-backend/internal/model"
)

// Display labels for known categories; anything else falls back to the raw
// category string.
var categoryLabels = map[string]string{
	"uc":         "UC",
	"costume":    "Костюмы",
	"car":        "Машины",
	"popularity": "Популярность",
}

func categoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

// orderSummary renders the order for notifications: id, PUBG ID, optional
// nickname, items grouped by category with per-category subtotals, and the
// derived grand total.
func orderSummary(o *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Заказ #%d\n", o.ID)
	fmt.Fprintf(&b, "PUBG ID: %s\n", o.PubgID)
	if o.Nickname != "" {
		fmt.Fprintf(&b, "Ник: %s\n", o.Nickname)
	}

	var categories []string
	grouped := make(map[string][]model.LineItem)
	for _, it := range o.Products {
		if _, ok := grouped[it.Category]; !ok {
			categories = append(categories, it.Category)
		}
		grouped[it.Category] = append(grouped[it.Category], it)
	}

	for _, cat := range categories {
		fmt.Fprintf(&b, "\n%s:\n", categoryLabel(cat))
		var subtotal int64
		for _, it := range grouped[cat] {
			lineTotal := it.Price * int64(it.Qty)
			subtotal += lineTotal
			fmt.Fprintf(&b, "  • %s ×%d — %d\n", it.Name, it.Qty, lineTotal)
		}
		fmt.Fprintf(&b, "  Итого: %d\n", subtotal)
	}

	fmt.Fprintf(&b, "\nВсего: %d", o.Total())
	return b.String()
}
