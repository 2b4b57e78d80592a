package model

import "time"

const StockChangeTypeOrder = "order"

// StockHistory is an append-only audit row. Rows are never updated or
// deleted; current stock lives on the product row.
type StockHistory struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ProductID uint64    `gorm:"column:product_id;index;not null"`
	Delta     int64     `gorm:"column:delta;not null"`
	Type      string    `gorm:"column:type;size:32;not null"`
	Note      string    `gorm:"column:note;type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (StockHistory) TableName() string {
	return "stock_history"
}
