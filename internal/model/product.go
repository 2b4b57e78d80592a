package model

import "time"

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product stock is mutated only through the stock ledger, never by a
// direct column write.
type Product struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:120;not null"`
	Price       int64           `gorm:"not null"`
	Stock       int64           `gorm:"not null;default:0"`
	Category    string          `gorm:"size:64;index;not null"`
	Status      ProductStatus   `gorm:"size:16;not null"`
	Fulfillment FulfillmentType `gorm:"size:16;not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
