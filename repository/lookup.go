package repository

import (
	"github.com/amrbasha900/mobile-endpoints/repository/models"
)

// LookupFilter narrows a dropdown lookup query. Page is 1-based and must
// already be clamped by the caller; Search is a raw substring.
type LookupFilter struct {
	Page     int
	PageSize int
	Search   string
}

func (f LookupFilter) offset() int {
	return (f.Page - 1) * f.PageSize
}

// ListSuppliers returns one page of farmer suppliers. One extra row is
// fetched to detect whether more pages exist without a count query.
func (r *Repository) ListSuppliers(filter LookupFilter) ([]models.Supplier, bool, *RepositoryError) {
	query := r.db.Model(&models.Supplier{}).Where("is_farmer = ?", true)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("supplier_name ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	var suppliers []models.Supplier
	err := query.
		Order("supplier_name ASC, name ASC").
		Offset(filter.offset()).
		Limit(filter.PageSize + 1).
		Find(&suppliers).Error
	if err != nil {
		return nil, false, wrapDBError(err, ErrCodeDatabaseError)
	}

	hasMore := len(suppliers) > filter.PageSize
	if hasMore {
		suppliers = suppliers[:filter.PageSize]
	}
	return suppliers, hasMore, nil
}

// ListCustomers returns one page of customers.
func (r *Repository) ListCustomers(filter LookupFilter) ([]models.Customer, bool, *RepositoryError) {
	query := r.db.Model(&models.Customer{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("customer_name ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	var customers []models.Customer
	err := query.
		Order("customer_name ASC, name ASC").
		Offset(filter.offset()).
		Limit(filter.PageSize + 1).
		Find(&customers).Error
	if err != nil {
		return nil, false, wrapDBError(err, ErrCodeDatabaseError)
	}

	hasMore := len(customers) > filter.PageSize
	if hasMore {
		customers = customers[:filter.PageSize]
	}
	return customers, hasMore, nil
}

// ListItems returns one page of enabled items.
func (r *Repository) ListItems(filter LookupFilter) ([]models.Item, bool, *RepositoryError) {
	query := r.db.Model(&models.Item{}).Where("disabled = ?", false)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("item_name ILIKE ? OR name ILIKE ? OR item_code ILIKE ?", pattern, pattern, pattern)
	}

	var items []models.Item
	err := query.
		Order("item_name ASC, name ASC").
		Offset(filter.offset()).
		Limit(filter.PageSize + 1).
		Find(&items).Error
	if err != nil {
		return nil, false, wrapDBError(err, ErrCodeDatabaseError)
	}

	hasMore := len(items) > filter.PageSize
	if hasMore {
		items = items[:filter.PageSize]
	}
	return items, hasMore, nil
}
