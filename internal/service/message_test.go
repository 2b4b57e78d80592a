package service

import (
	"strings"
	"testing"

	"github.com/ucbazaar/shop-backend/internal/model"
)

func TestOrderSummary(t *testing.T) {
	o := &model.Order{
		ID:       42,
		PubgID:   "512345678",
		Nickname: "Xx_sniper",
		Products: model.LineItems{
			{ProductID: 1, Name: "60 UC", Price: 100, Qty: 2, Category: "uc"},
			{ProductID: 2, Name: "325 UC", Price: 500, Qty: 1, Category: "uc"},
			{ProductID: 3, Name: "Костюм сезона", Price: 300, Qty: 1, Category: "costume"},
		},
	}

	got := orderSummary(o)

	for _, want := range []string{
		"Заказ #42",
		"PUBG ID: 512345678",
		"Ник: Xx_sniper",
		"UC:",
		"60 UC ×2 — 200",
		"325 UC ×1 — 500",
		"Итого: 700",
		"Костюмы:",
		"Итого: 300",
		"Всего: 1000",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestOrderSummaryTotalMatchesDerivedTotal(t *testing.T) {
	o := &model.Order{
		ID:     7,
		PubgID: "1",
		Products: model.LineItems{
			{Name: "a", Price: 33, Qty: 3, Category: "uc"},
			{Name: "b", Price: 1, Qty: 1, Category: "car"},
		},
	}
	if !strings.Contains(orderSummary(o), "Всего: 100") {
		t.Fatalf("summary total must equal derived total %d:\n%s", o.Total(), orderSummary(o))
	}
}

func TestOrderSummarySkipsEmptyNickname(t *testing.T) {
	o := &model.Order{ID: 1, PubgID: "9", Products: model.LineItems{{Name: "x", Price: 1, Qty: 1, Category: "uc"}}}
	if strings.Contains(orderSummary(o), "Ник:") {
		t.Fatalf("summary must omit empty nickname:\n%s", orderSummary(o))
	}
}

func TestCategoryLabelFallback(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"uc", "UC"},
		{"costume", "Костюмы"},
		{"car", "Машины"},
		{"popularity", "Популярность"},
		{"mystery", "mystery"},
	}
	for _, tt := range tests {
		if got := categoryLabel(tt.category); got != tt.want {
			t.Fatalf("categoryLabel(%q)=%q want=%q", tt.category, got, tt.want)
		}
	}
}
