package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Docstatus values follow the document lifecycle: a form starts as a
// draft, may be submitted once, and a submitted form can only be cancelled.
const (
	DocstatusDraft     = 0
	DocstatusSubmitted = 1
	DocstatusCancelled = 2
)

// DocstatusLabel maps the numeric lifecycle flag to the string the mobile
// app displays. Unknown values fall back to "draft".
func DocstatusLabel(docstatus int) string {
	switch docstatus {
	case DocstatusSubmitted:
		return "submitted"
	case DocstatusCancelled:
		return "cancelled"
	default:
		return "draft"
	}
}

// InvoiceForm is a farm-supplier invoice document.
type InvoiceForm struct {
	Name                     string          `gorm:"column:name;primaryKey;type:varchar(50)"`
	PostingDate              time.Time       `gorm:"column:posting_date;type:date;index;not null"`
	PostingTime              string          `gorm:"column:posting_time;type:varchar(20)"`
	SupplierID               string          `gorm:"column:supplier;type:varchar(50);index"`
	Supplier                 *Supplier       `gorm:"foreignKey:SupplierID"`
	SupplierName             string          `gorm:"column:supplier_name;type:varchar(140)"`
	GrandTotal               decimal.Decimal `gorm:"column:grand_total;type:decimal(20,4);default:0"`
	PamperCommission         decimal.Decimal `gorm:"column:pamper_commission;type:decimal(20,4);default:0"`
	TotalCommissionsAndTaxes decimal.Decimal `gorm:"column:total_commissions_and_taxes;type:decimal(20,4);default:0"`
	Docstatus                int             `gorm:"column:docstatus;default:0;index"`
	LockUpdate               bool            `gorm:"column:lock_update;default:false"`
	Remarks                  string          `gorm:"column:remarks;type:text"`
	CreatedAt                time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	// Child tables
	Items       []InvoiceItem       `gorm:"foreignKey:Parent;constraint:OnDelete:CASCADE"`
	Commissions []InvoiceCommission `gorm:"foreignKey:Parent;constraint:OnDelete:CASCADE"`
}

func (InvoiceForm) TableName() string {
	return "invoice_forms"
}

// InvoiceItem is a row in the invoice's items child table.
type InvoiceItem struct {
	Name       string          `gorm:"column:name;primaryKey;type:varchar(50)"`
	Parent     string          `gorm:"column:parent;type:varchar(50);index;not null"`
	Idx        int             `gorm:"column:idx"`
	ItemCode   string          `gorm:"column:item_code;type:varchar(140)"`
	ItemName   string          `gorm:"column:item_name;type:varchar(140)"`
	Qty        decimal.Decimal `gorm:"column:qty;type:decimal(20,4);default:0"`
	Price      decimal.Decimal `gorm:"column:price;type:decimal(20,4);default:0"`
	Total      decimal.Decimal `gorm:"column:total;type:decimal(20,4);default:0"`
	CustomerID string          `gorm:"column:customer;type:varchar(50)"`
	Commission decimal.Decimal `gorm:"column:commission;type:decimal(20,4);default:0"`
}

func (InvoiceItem) TableName() string {
	return "invoice_form_items"
}

// InvoiceCommission is a row in the invoice's commissions child table,
// one per item row, carrying the commission and tax breakdown.
type InvoiceCommission struct {
	Name            string          `gorm:"column:name;primaryKey;type:varchar(50)"`
	Parent          string          `gorm:"column:parent;type:varchar(50);index;not null"`
	Idx             int             `gorm:"column:idx"`
	Item            string          `gorm:"column:item;type:varchar(140)"`
	Price           decimal.Decimal `gorm:"column:price;type:decimal(20,4);default:0"`
	Commission      decimal.Decimal `gorm:"column:commission;type:decimal(20,4);default:0"`
	TotalCommission decimal.Decimal `gorm:"column:total_commission;type:decimal(20,4);default:0"`
	Taxes           decimal.Decimal `gorm:"column:taxes;type:decimal(20,4);default:0"`
	CommissionTotal decimal.Decimal `gorm:"column:commission_total;type:decimal(20,4);default:0"`
}

func (InvoiceCommission) TableName() string {
	return "invoice_form_commissions"
}
