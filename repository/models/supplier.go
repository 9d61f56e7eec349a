package models

// Supplier is the source of invoiced produce. The mobile app only ever
// lists farmer suppliers (is_farmer = true).
type Supplier struct {
	Name         string `gorm:"column:name;primaryKey;type:varchar(50)"`
	SupplierName string `gorm:"column:supplier_name;type:varchar(140);not null"`
	IsFarmer     bool   `gorm:"column:is_farmer;default:false;index"`
	Disabled     bool   `gorm:"column:disabled;default:false"`

	// Relationships
	Invoices []InvoiceForm `gorm:"foreignKey:SupplierID"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
