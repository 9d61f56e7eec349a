package srvreg

import (
	"fmt"
	"net/http"

	"github.com/amrbasha900/mobile-endpoints/permission"
	"github.com/amrbasha900/mobile-endpoints/repository"
)

type lookupRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type itemLookupRow struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// GetSuppliersHandler serves the farmer supplier dropdown.
func (sr *ServiceRegistry) GetSuppliersHandler(req *Request) (*Response, error) {
	if !permission.HasPermission(req.User, permission.DoctypeSupplier, permission.Read) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("read permission denied")
	}

	page := parsePage(queryValue(req.Query, "page"))
	pageSize := parsePageSize(queryValue(req.Query, "page_size"), 100, LookupPageSizeMax)

	suppliers, hasMore, repoErr := sr.repository.ListSuppliers(repository.LookupFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   queryValue(req.Query, "search"),
	})
	if repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("listing suppliers: %s", repoErr.Message)
	}

	rows := make([]lookupRow, 0, len(suppliers))
	for _, s := range suppliers {
		displayName := s.SupplierName
		if displayName == "" {
			displayName = s.Name
		}
		rows = append(rows, lookupRow{ID: s.Name, Name: displayName})
	}

	return JSONResponse(http.StatusOK, map[string]interface{}{
		"suppliers": rows,
		"page":      page,
		"page_size": pageSize,
		"has_more":  hasMore,
	}), nil
}

// GetCustomersHandler serves the customer dropdown.
func (sr *ServiceRegistry) GetCustomersHandler(req *Request) (*Response, error) {
	if !permission.HasPermission(req.User, permission.DoctypeCustomer, permission.Read) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("read permission denied")
	}

	page := parsePage(queryValue(req.Query, "page"))
	pageSize := parsePageSize(queryValue(req.Query, "page_size"), 20, LookupPageSizeMax)

	customers, hasMore, repoErr := sr.repository.ListCustomers(repository.LookupFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   queryValue(req.Query, "search"),
	})
	if repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("listing customers: %s", repoErr.Message)
	}

	rows := make([]lookupRow, 0, len(customers))
	for _, c := range customers {
		displayName := c.CustomerName
		if displayName == "" {
			displayName = c.Name
		}
		rows = append(rows, lookupRow{ID: c.Name, Name: displayName})
	}

	return JSONResponse(http.StatusOK, map[string]interface{}{
		"customers": rows,
		"page":      page,
		"page_size": pageSize,
		"has_more":  hasMore,
	}), nil
}

// GetItemsHandler serves the item dropdown.
func (sr *ServiceRegistry) GetItemsHandler(req *Request) (*Response, error) {
	if !permission.HasPermission(req.User, permission.DoctypeItem, permission.Read) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("read permission denied")
	}

	page := parsePage(queryValue(req.Query, "page"))
	pageSize := parsePageSize(queryValue(req.Query, "page_size"), 20, LookupPageSizeMax)

	items, hasMore, repoErr := sr.repository.ListItems(repository.LookupFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   queryValue(req.Query, "search"),
	})
	if repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("listing items: %s", repoErr.Message)
	}

	rows := make([]itemLookupRow, 0, len(items))
	for _, it := range items {
		displayName := it.ItemName
		if displayName == "" {
			displayName = it.Name
		}
		rows = append(rows, itemLookupRow{
			ID:    it.Name,
			Name:  displayName,
			Price: it.StandardRate.InexactFloat64(),
		})
	}

	return JSONResponse(http.StatusOK, map[string]interface{}{
		"items":     rows,
		"page":      page,
		"page_size": pageSize,
		"has_more":  hasMore,
	}), nil
}

// GetUserDefaultCompanyHandler returns the authenticated user's default
// company from their stored defaults.
func (sr *ServiceRegistry) GetUserDefaultCompanyHandler(req *Request) (*Response, error) {
	if req.User == nil {
		return ErrorResponse(http.StatusUnauthorized, "Authentication required"), fmt.Errorf("no authenticated user")
	}
	return JSONResponse(http.StatusOK, map[string]string{
		"default_company": req.User.DefaultCompany,
	}), nil
}
