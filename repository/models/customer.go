package models

// Customer is a buyer referenced by invoice item rows.
type Customer struct {
	Name         string `gorm:"column:name;primaryKey;type:varchar(50)"`
	CustomerName string `gorm:"column:customer_name;type:varchar(140);not null"`
	Disabled     bool   `gorm:"column:disabled;default:false"`
}

func (Customer) TableName() string {
	return "customers"
}
