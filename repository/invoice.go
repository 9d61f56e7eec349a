package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/amrbasha900/mobile-endpoints/repository/models"
)

// InvoiceListFilter narrows the invoice list query. Zero values mean "no
// filter". Page is 1-based and must already be clamped by the caller.
type InvoiceListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Supplier  string
	Page      int
	PageSize  int
}

// InvoiceItemInput is one item row as accepted by create/update.
type InvoiceItemInput struct {
	ItemCode string
	ItemName string
	Qty      decimal.Decimal
	Price    decimal.Decimal
	Total    decimal.Decimal // zero means derive from Qty * Price
	Customer string
}

// CreateInvoiceInput carries everything needed to create a draft invoice.
type CreateInvoiceInput struct {
	PostingDate      time.Time
	SupplierID       string
	SupplierName     string
	Items            []InvoiceItemInput
	CommissionRate   decimal.Decimal
	TaxRate          decimal.Decimal
	PamperCommission decimal.Decimal
}

// UpdateInvoiceInput carries the patched fields for an invoice update.
// Nil pointers leave the stored value untouched; a non-nil Items slice
// replaces the whole child table.
type UpdateInvoiceInput struct {
	PostingDate  *time.Time
	SupplierID   *string
	SupplierName *string
	Items        []InvoiceItemInput
}

// InvoiceTotals is the computed money breakdown of an invoice.
type InvoiceTotals struct {
	GrandTotal               decimal.Decimal
	TotalCommission          decimal.Decimal
	TaxesOnCommission        decimal.Decimal
	TotalCommissionsAndTaxes decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// NormalizeItems fills derived item fields in place: a missing item code
// falls back to the item name (and vice versa) and a zero line total is
// derived as qty * price.
func NormalizeItems(items []InvoiceItemInput) {
	for i := range items {
		if items[i].ItemCode == "" {
			items[i].ItemCode = items[i].ItemName
		}
		if items[i].ItemName == "" {
			items[i].ItemName = items[i].ItemCode
		}
		if items[i].Total.IsZero() {
			items[i].Total = items[i].Qty.Mul(items[i].Price)
		}
	}
}

// ComputeInvoiceTotals sums normalized line totals and derives the
// commission and tax amounts from the given percentage rates.
func ComputeInvoiceTotals(items []InvoiceItemInput, commissionRate, taxRate decimal.Decimal) InvoiceTotals {
	grandTotal := decimal.Zero
	for _, it := range items {
		grandTotal = grandTotal.Add(it.Total)
	}
	totalCommission := grandTotal.Mul(commissionRate).Div(oneHundred)
	taxesOnCommission := totalCommission.Mul(taxRate).Div(oneHundred)
	return InvoiceTotals{
		GrandTotal:               grandTotal,
		TotalCommission:          totalCommission,
		TaxesOnCommission:        taxesOnCommission,
		TotalCommissionsAndTaxes: totalCommission.Add(taxesOnCommission),
	}
}

// ListInvoices returns one page of invoices plus the total row count for
// the same filters. Ordering is newest posting date first.
func (r *Repository) ListInvoices(filter InvoiceListFilter) ([]models.InvoiceForm, int64, *RepositoryError) {
	query := r.db.Model(&models.InvoiceForm{})
	if filter.StartDate != nil {
		query = query.Where("posting_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("posting_date <= ?", *filter.EndDate)
	}
	if filter.Supplier != "" {
		query = query.Where("supplier = ?", filter.Supplier)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, wrapDBError(err, ErrCodeDatabaseError)
	}

	offset := (filter.Page - 1) * filter.PageSize
	var invoices []models.InvoiceForm
	err := query.
		Order("posting_date DESC, created_at DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, wrapDBError(err, ErrCodeDatabaseError)
	}

	return invoices, totalCount, nil
}

// GetInvoice loads one invoice with its child tables.
func (r *Repository) GetInvoice(name string) (*models.InvoiceForm, *RepositoryError) {
	var invoice models.InvoiceForm
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Preload("Commissions", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("name = ?", name).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RepositoryError{
				Code:    ErrCodeEntityNotFound,
				Message: "Invoice does not exist",
				Detail:  fmt.Sprintf("Invoice Form %s does not exist", name),
			}
		}
		return nil, wrapDBError(err, ErrCodeDatabaseError)
	}
	return &invoice, nil
}

// CreateInvoice creates a draft invoice with its item and commission rows
// in one transaction and returns the stored document.
func (r *Repository) CreateInvoice(input CreateInvoiceInput) (*models.InvoiceForm, *RepositoryError) {
	NormalizeItems(input.Items)
	totals := ComputeInvoiceTotals(input.Items, input.CommissionRate, input.TaxRate)

	invoice := models.InvoiceForm{
		Name:                     r.newDocName("INV"),
		PostingDate:              input.PostingDate,
		PostingTime:              time.Now().Format("15:04:05"),
		SupplierID:               input.SupplierID,
		SupplierName:             input.SupplierName,
		GrandTotal:               totals.GrandTotal,
		PamperCommission:         input.PamperCommission,
		TotalCommissionsAndTaxes: totals.TotalCommissionsAndTaxes,
		Docstatus:                models.DocstatusDraft,
		LockUpdate:               true,
	}

	for i, it := range input.Items {
		invoice.Items = append(invoice.Items, models.InvoiceItem{
			Name:       r.newDocName("INVI"),
			Parent:     invoice.Name,
			Idx:        i + 1,
			ItemCode:   it.ItemCode,
			ItemName:   it.ItemName,
			Qty:        it.Qty,
			Price:      it.Price,
			Total:      it.Total,
			CustomerID: it.Customer,
			Commission: input.CommissionRate,
		})

		itemCommission := it.Total.Mul(input.CommissionRate).Div(oneHundred)
		itemTaxes := itemCommission.Mul(input.TaxRate).Div(oneHundred)
		invoice.Commissions = append(invoice.Commissions, models.InvoiceCommission{
			Name:            r.newDocName("INVC"),
			Parent:          invoice.Name,
			Idx:             i + 1,
			Item:            it.ItemCode,
			Price:           it.Total,
			Commission:      input.CommissionRate,
			TotalCommission: itemCommission,
			Taxes:           itemTaxes,
			CommissionTotal: itemCommission.Add(itemTaxes),
		})
	}

	dbTx := r.db.Begin()
	if err := dbTx.Create(&invoice).Error; err != nil {
		dbTx.Rollback()
		return nil, wrapDBError(err, ErrCodeInsertFailed)
	}
	if err := dbTx.Commit().Error; err != nil {
		return nil, &RepositoryError{
			Code:    ErrCodeCommitFailed,
			Message: "Failed to commit transaction",
			Detail:  err.Error(),
		}
	}

	return &invoice, nil
}

// UpdateInvoice patches header fields and, when items are provided,
// replaces the child table. Submitted and cancelled documents refuse the
// update.
func (r *Repository) UpdateInvoice(name string, input UpdateInvoiceInput) (*models.InvoiceForm, *RepositoryError) {
	dbTx := r.db.Begin()

	var invoice models.InvoiceForm
	err := dbTx.Where("name = ?", name).First(&invoice).Error
	if err != nil {
		dbTx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RepositoryError{
				Code:    ErrCodeEntityNotFound,
				Message: "Invoice does not exist",
				Detail:  fmt.Sprintf("Invoice Form %s does not exist", name),
			}
		}
		return nil, wrapDBError(err, ErrCodeDatabaseError)
	}

	if invoice.Docstatus != models.DocstatusDraft {
		dbTx.Rollback()
		return nil, &RepositoryError{
			Code:    ErrCodeInvalidState,
			Message: "Only draft invoices can be updated",
			Detail:  fmt.Sprintf("Invoice %s has docstatus %d", name, invoice.Docstatus),
		}
	}

	if input.PostingDate != nil {
		invoice.PostingDate = *input.PostingDate
	}
	if input.SupplierID != nil {
		invoice.SupplierID = *input.SupplierID
	}
	if input.SupplierName != nil {
		invoice.SupplierName = *input.SupplierName
	}

	if input.Items != nil {
		NormalizeItems(input.Items)
		if err := dbTx.Where("parent = ?", invoice.Name).Delete(&models.InvoiceItem{}).Error; err != nil {
			dbTx.Rollback()
			return nil, wrapDBError(err, ErrCodeUpdateFailed)
		}
		for i, it := range input.Items {
			row := models.InvoiceItem{
				Name:       r.newDocName("INVI"),
				Parent:     invoice.Name,
				Idx:        i + 1,
				ItemCode:   it.ItemCode,
				ItemName:   it.ItemName,
				Qty:        it.Qty,
				Price:      it.Price,
				Total:      it.Total,
				CustomerID: it.Customer,
			}
			if err := dbTx.Create(&row).Error; err != nil {
				dbTx.Rollback()
				return nil, wrapDBError(err, ErrCodeUpdateFailed)
			}
		}
		// Keep the stored grand total in sync with the replaced rows.
		grandTotal := decimal.Zero
		for _, it := range input.Items {
			grandTotal = grandTotal.Add(it.Total)
		}
		invoice.GrandTotal = grandTotal
	}

	if err := dbTx.Save(&invoice).Error; err != nil {
		dbTx.Rollback()
		return nil, wrapDBError(err, ErrCodeUpdateFailed)
	}
	if err := dbTx.Commit().Error; err != nil {
		return nil, &RepositoryError{
			Code:    ErrCodeCommitFailed,
			Message: "Failed to commit transaction",
			Detail:  err.Error(),
		}
	}

	return &invoice, nil
}

// SubmitInvoice moves a draft invoice to submitted state.
func (r *Repository) SubmitInvoice(name string) (*models.InvoiceForm, *RepositoryError) {
	dbTx := r.db.Begin()

	var invoice models.InvoiceForm
	err := dbTx.Where("name = ?", name).First(&invoice).Error
	if err != nil {
		dbTx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RepositoryError{
				Code:    ErrCodeEntityNotFound,
				Message: "Invoice does not exist",
				Detail:  fmt.Sprintf("Invoice Form %s does not exist", name),
			}
		}
		return nil, wrapDBError(err, ErrCodeDatabaseError)
	}

	if invoice.Docstatus != models.DocstatusDraft {
		dbTx.Rollback()
		return nil, &RepositoryError{
			Code:    ErrCodeInvalidState,
			Message: "Only draft invoices can be submitted",
			Detail:  fmt.Sprintf("Invoice %s has docstatus %d", name, invoice.Docstatus),
		}
	}

	invoice.Docstatus = models.DocstatusSubmitted
	if err := dbTx.Save(&invoice).Error; err != nil {
		dbTx.Rollback()
		return nil, wrapDBError(err, ErrCodeUpdateFailed)
	}
	if err := dbTx.Commit().Error; err != nil {
		return nil, &RepositoryError{
			Code:    ErrCodeCommitFailed,
			Message: "Failed to commit transaction",
			Detail:  err.Error(),
		}
	}

	return &invoice, nil
}

// DeleteInvoice removes a draft or cancelled invoice and its child rows.
func (r *Repository) DeleteInvoice(name string) *RepositoryError {
	dbTx := r.db.Begin()

	var invoice models.InvoiceForm
	err := dbTx.Where("name = ?", name).First(&invoice).Error
	if err != nil {
		dbTx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RepositoryError{
				Code:    ErrCodeEntityNotFound,
				Message: "Invoice does not exist",
				Detail:  fmt.Sprintf("Invoice Form %s does not exist", name),
			}
		}
		return wrapDBError(err, ErrCodeDatabaseError)
	}

	if invoice.Docstatus == models.DocstatusSubmitted {
		dbTx.Rollback()
		return &RepositoryError{
			Code:    ErrCodeInvalidState,
			Message: "Submitted invoices cannot be deleted",
			Detail:  fmt.Sprintf("Invoice %s is submitted, cancel it first", name),
		}
	}

	if err := dbTx.Where("parent = ?", invoice.Name).Delete(&models.InvoiceItem{}).Error; err != nil {
		dbTx.Rollback()
		return wrapDBError(err, ErrCodeDeleteFailed)
	}
	if err := dbTx.Where("parent = ?", invoice.Name).Delete(&models.InvoiceCommission{}).Error; err != nil {
		dbTx.Rollback()
		return wrapDBError(err, ErrCodeDeleteFailed)
	}
	if err := dbTx.Delete(&invoice).Error; err != nil {
		dbTx.Rollback()
		return wrapDBError(err, ErrCodeDeleteFailed)
	}
	if err := dbTx.Commit().Error; err != nil {
		return &RepositoryError{
			Code:    ErrCodeCommitFailed,
			Message: "Failed to commit transaction",
			Detail:  err.Error(),
		}
	}

	return nil
}
