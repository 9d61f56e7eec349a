package models

import "github.com/shopspring/decimal"

// Item is a sellable produce type offered in the item dropdown.
type Item struct {
	Name         string          `gorm:"column:name;primaryKey;type:varchar(50)"`
	ItemCode     string          `gorm:"column:item_code;type:varchar(140);index"`
	ItemName     string          `gorm:"column:item_name;type:varchar(140);not null"`
	StandardRate decimal.Decimal `gorm:"column:standard_rate;type:decimal(20,4);default:0"`
	Disabled     bool            `gorm:"column:disabled;default:false;index"`
}

func (Item) TableName() string {
	return "items"
}
