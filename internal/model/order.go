package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusUnpaid           OrderStatus = "unpaid"
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusManualProcessing OrderStatus = "manual_processing"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusError            OrderStatus = "error"
)

// AllOrderStatuses lists every status the transition engine accepts.
var AllOrderStatuses = []OrderStatus{
	OrderStatusUnpaid,
	OrderStatusPending,
	OrderStatusManualProcessing,
	OrderStatusDelivered,
	OrderStatusError,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusUnpaid, OrderStatusPending, OrderStatusManualProcessing,
		OrderStatusDelivered, OrderStatusError:
		return true
	}
	return false
}

type FulfillmentType string

const (
	FulfillmentAuto   FulfillmentType = "auto"
	FulfillmentManual FulfillmentType = "manual"
)

// LineItem is a snapshot of a product at checkout time. Price is in the
// minor currency unit.
type LineItem struct {
	ProductID   uint64          `json:"productId"`
	Name        string          `json:"name"`
	Price       int64           `json:"price"`
	Qty         int             `json:"qty"`
	Category    string          `json:"category"`
	Fulfillment FulfillmentType `json:"fulfillment"`
}

// LineItems is stored as a single JSON document in the orders row.
type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		l = LineItems{}
	}
	return json.Marshal(l)
}

func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported line items column type %T", value)
	}
}

type Order struct {
	ID               uint64      `gorm:"primaryKey;autoIncrement"`
	UserID           int64       `gorm:"column:user_id;index;not null"`
	PubgID           string      `gorm:"column:pubg_id;size:64;not null"`
	Nickname         string      `gorm:"column:nickname;size:128"`
	Products         LineItems   `gorm:"column:products;type:json;not null"`
	Status           OrderStatus `gorm:"column:status;size:32;index;not null"`
	CheckoutID       string      `gorm:"column:checkout_id;size:36;index"`
	ReferralCredited bool        `gorm:"column:referral_credited;not null;default:false"`
	CreatedAt        time.Time   `gorm:"autoCreateTime"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// Total is always derived from the line items; there is no stored total.
func (o *Order) Total() int64 {
	var sum int64
	for _, it := range o.Products {
		sum += it.Price * int64(it.Qty)
	}
	return sum
}
