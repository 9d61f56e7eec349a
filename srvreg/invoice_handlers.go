package srvreg

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/amrbasha900/mobile-endpoints/permission"
	"github.com/amrbasha900/mobile-endpoints/repository"
	"github.com/amrbasha900/mobile-endpoints/repository/models"
)

// Commission and tax percentages applied when the client omits them.
// A zero rate in the payload also falls back, matching the upstream app.
const (
	DefaultCommissionRate = 5
	DefaultTaxRate        = 15
)

type invoicePermission struct {
	CanUpdate bool `json:"can_update"`
	CanDelete bool `json:"can_delete"`
	CanSubmit bool `json:"can_submit"`
	Locked    bool `json:"locked"`
}

type invoiceListRow struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoiceNumber"`
	SupplierID    string            `json:"supplierId"`
	SupplierName  string            `json:"supplierName"`
	Date          string            `json:"date"`
	Amount        float64           `json:"amount"`
	Permission    invoicePermission `json:"permission"`
}

type invoiceListResponse struct {
	Invoices   []invoiceListRow `json:"invoices"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalCount int64            `json:"total_count"`
	HasMore    bool             `json:"has_more"`
}

// GetInvoicesHandler serves the invoice list page for the mobile app.
func (sr *ServiceRegistry) GetInvoicesHandler(req *Request) (*Response, error) {
	if !permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Read) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("read permission denied")
	}

	page := parsePage(queryValue(req.Query, "page"))
	pageSize := parsePageSize(queryValue(req.Query, "page_size"), InvoicePageSizeDefault, InvoicePageSizeMax)

	startDate, err := parseDate(queryValue(req.Query, "start_date"))
	if err != nil {
		return ErrorResponse(http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD"), err
	}
	endDate, err := parseDate(queryValue(req.Query, "end_date"))
	if err != nil {
		return ErrorResponse(http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD"), err
	}

	invoices, totalCount, repoErr := sr.repository.ListInvoices(repository.InvoiceListFilter{
		StartDate: startDate,
		EndDate:   endDate,
		Supplier:  queryValue(req.Query, "supplier"),
		Page:      page,
		PageSize:  pageSize,
	})
	if repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("listing invoices: %s", repoErr.Message)
	}

	// Optional text search is a post-filter on the fetched page, scanning
	// name and supplier name. The total count intentionally ignores it.
	search := queryValue(req.Query, "search")

	canUpdate := permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Write)
	canDelete := permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Delete)
	canSubmit := permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Submit)

	rows := make([]invoiceListRow, 0, len(invoices))
	for _, inv := range invoices {
		if !matchesSearch(search, inv.Name, inv.SupplierName) {
			continue
		}
		rows = append(rows, invoiceListRow{
			ID:            inv.Name,
			InvoiceNumber: inv.Name,
			SupplierID:    inv.SupplierID,
			SupplierName:  inv.SupplierName,
			Date:          inv.PostingDate.Format("2006-01-02"),
			Amount:        inv.GrandTotal.InexactFloat64(),
			Permission: invoicePermission{
				CanUpdate: canUpdate && inv.Docstatus == models.DocstatusDraft,
				CanDelete: canDelete && inv.Docstatus != models.DocstatusSubmitted,
				CanSubmit: canSubmit && inv.Docstatus == models.DocstatusDraft,
				Locked:    false,
			},
		})
	}

	start := (page - 1) * pageSize
	return JSONResponse(http.StatusOK, invoiceListResponse{
		Invoices:   rows,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		HasMore:    int64(start+len(rows)) < totalCount,
	}), nil
}

type invoiceItemRow struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	Total        float64 `json:"total"`
	CustomerID   string  `json:"customerId"`
	CustomerName string  `json:"customerName"`
}

type invoiceDetailResponse struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoiceNumber"`
	SupplierID    string            `json:"supplierId"`
	SupplierName  string            `json:"supplierName"`
	Date          string            `json:"date"`
	Amount        float64           `json:"amount"`
	Status        string            `json:"status"`
	IsLocked      bool              `json:"is_locked"`
	Items         []invoiceItemRow  `json:"items"`
	Tax           float64           `json:"tax"`
	Payments      []interface{}     `json:"payments"`
	Notes         string            `json:"notes"`
	Customer      string            `json:"customer"`
	CustomerName  string            `json:"customer_name"`
	Permission    invoicePermission `json:"permission"`
}

// GetInvoiceDetailsHandler serves the invoice detail view.
func (sr *ServiceRegistry) GetInvoiceDetailsHandler(req *Request) (*Response, error) {
	name := req.PathParams["name"]
	if name == "" {
		return ErrorResponse(http.StatusBadRequest, "Missing invoice name"), fmt.Errorf("missing invoice name")
	}
	if !permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Read) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("read permission denied")
	}

	invoice, repoErr := sr.repository.GetInvoice(name)
	if repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("loading invoice: %s", repoErr.Message)
	}

	items := make([]invoiceItemRow, 0, len(invoice.Items))
	for _, it := range invoice.Items {
		displayName := it.ItemName
		if displayName == "" {
			displayName = it.ItemCode
		}
		items = append(items, invoiceItemRow{
			ID:           it.Name,
			Name:         displayName,
			Quantity:     it.Qty.InexactFloat64(),
			Price:        it.Price.InexactFloat64(),
			Total:        it.Total.InexactFloat64(),
			CustomerID:   it.CustomerID,
			CustomerName: it.CustomerID,
		})
	}

	canUpdate := permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Write)
	canDelete := permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Delete)
	canSubmit := permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Submit)

	return JSONResponse(http.StatusOK, invoiceDetailResponse{
		ID:            invoice.Name,
		InvoiceNumber: invoice.Name,
		SupplierID:    invoice.SupplierID,
		SupplierName:  invoice.SupplierName,
		Date:          invoice.PostingDate.Format("2006-01-02"),
		Amount:        invoice.GrandTotal.InexactFloat64(),
		Status:        models.DocstatusLabel(invoice.Docstatus),
		IsLocked:      invoice.LockUpdate,
		Items:         items,
		Tax:           invoice.TotalCommissionsAndTaxes.InexactFloat64(),
		Payments:      []interface{}{},
		Notes:         invoice.Remarks,
		Customer:      "",
		CustomerName:  "",
		Permission: invoicePermission{
			CanUpdate: canUpdate && invoice.Docstatus == models.DocstatusDraft,
			CanDelete: canDelete && invoice.Docstatus != models.DocstatusSubmitted,
			CanSubmit: canSubmit && invoice.Docstatus == models.DocstatusDraft,
			Locked:    invoice.LockUpdate,
		},
	}), nil
}

type invoiceItemBody struct {
	ItemCode   string   `json:"item_code"`
	ItemName   string   `json:"item_name"`
	Qty        *float64 `json:"qty"`
	Quantity   *float64 `json:"quantity"`
	Price      float64  `json:"price"`
	Total      *float64 `json:"total"`
	Customer   string   `json:"customer"`
	CustomerID string   `json:"customerId"`
}

func (b invoiceItemBody) toInput() repository.InvoiceItemInput {
	qty := 0.0
	if b.Qty != nil {
		qty = *b.Qty
	} else if b.Quantity != nil {
		qty = *b.Quantity
	}
	total := decimal.Zero
	if b.Total != nil {
		total = decimal.NewFromFloat(*b.Total)
	}
	customer := b.Customer
	if customer == "" {
		customer = b.CustomerID
	}
	return repository.InvoiceItemInput{
		ItemCode: b.ItemCode,
		ItemName: b.ItemName,
		Qty:      decimal.NewFromFloat(qty),
		Price:    decimal.NewFromFloat(b.Price),
		Total:    total,
		Customer: customer,
	}
}

type createInvoiceBody struct {
	PostingDate      string            `json:"posting_date"`
	Supplier         string            `json:"supplier"`
	SupplierName     string            `json:"supplier_name"`
	Items            []invoiceItemBody `json:"items"`
	CommissionRate   float64           `json:"commission_rate"`
	TaxRate          float64           `json:"tax_rate"`
	PamperCommission float64           `json:"pamper_commission"`
}

type createdCommissionRow struct {
	Item            string  `json:"item"`
	Price           float64 `json:"price"`
	Commission      float64 `json:"commission"`
	TotalCommission float64 `json:"total_commission"`
	Taxes           float64 `json:"taxes"`
	CommissionTotal float64 `json:"commission_total"`
}

type createdItemRow struct {
	ItemCode string  `json:"item_code"`
	ItemName string  `json:"item_name"`
	Qty      float64 `json:"qty"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
	Customer string  `json:"customer"`
}

type createInvoiceResponse struct {
	Name                     string                 `json:"name"`
	PostingDate              string                 `json:"posting_date"`
	Supplier                 string                 `json:"supplier"`
	SupplierName             string                 `json:"supplier_name"`
	GrandTotal               float64                `json:"grand_total"`
	TotalCommissionsAndTaxes float64                `json:"total_commissions_and_taxes"`
	PamperCommission         float64                `json:"pamper_commission"`
	Doctype                  string                 `json:"doctype"`
	Items                    []createdItemRow       `json:"items"`
	Commissions              []createdCommissionRow `json:"commissions"`
}

// CreateInvoiceHandler creates a draft invoice with computed totals.
func (sr *ServiceRegistry) CreateInvoiceHandler(req *Request) (*Response, error) {
	if !permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Create) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("create permission denied")
	}

	var body createInvoiceBody
	if err := decodeBody(req.Body, &body); err != nil {
		return ErrorResponse(http.StatusUnprocessableEntity, "Invalid body format: "+err.Error()), err
	}

	if body.PostingDate == "" || body.Supplier == "" {
		return ErrorResponse(http.StatusBadRequest, "Missing required fields: posting_date, supplier"),
			fmt.Errorf("missing required fields")
	}
	postingDate, err := parseDate(body.PostingDate)
	if err != nil {
		return ErrorResponse(http.StatusBadRequest, "Invalid posting_date, expected YYYY-MM-DD"), err
	}
	if len(body.Items) == 0 {
		return ErrorResponse(http.StatusBadRequest, "At least one item is required"),
			fmt.Errorf("no items")
	}

	items := make([]repository.InvoiceItemInput, 0, len(body.Items))
	for i, it := range body.Items {
		if it.ItemCode == "" && it.ItemName == "" {
			return ErrorResponse(http.StatusBadRequest,
					fmt.Sprintf("Item %d needs an item_code or item_name", i+1)),
				fmt.Errorf("item without code or name")
		}
		items = append(items, it.toInput())
	}

	commissionRate := body.CommissionRate
	if commissionRate == 0 {
		commissionRate = DefaultCommissionRate
	}
	taxRate := body.TaxRate
	if taxRate == 0 {
		taxRate = DefaultTaxRate
	}

	invoice, repoErr := sr.repository.CreateInvoice(repository.CreateInvoiceInput{
		PostingDate:      *postingDate,
		SupplierID:       body.Supplier,
		SupplierName:     body.SupplierName,
		Items:            items,
		CommissionRate:   decimal.NewFromFloat(commissionRate),
		TaxRate:          decimal.NewFromFloat(taxRate),
		PamperCommission: decimal.NewFromFloat(body.PamperCommission),
	})
	if repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("creating invoice: %s", repoErr.Message)
	}

	itemRows := make([]createdItemRow, 0, len(invoice.Items))
	for _, it := range invoice.Items {
		itemRows = append(itemRows, createdItemRow{
			ItemCode: it.ItemCode,
			ItemName: it.ItemName,
			Qty:      it.Qty.InexactFloat64(),
			Price:    it.Price.InexactFloat64(),
			Total:    it.Total.InexactFloat64(),
			Customer: it.CustomerID,
		})
	}
	commissionRows := make([]createdCommissionRow, 0, len(invoice.Commissions))
	for _, c := range invoice.Commissions {
		commissionRows = append(commissionRows, createdCommissionRow{
			Item:            c.Item,
			Price:           c.Price.InexactFloat64(),
			Commission:      c.Commission.InexactFloat64(),
			TotalCommission: c.TotalCommission.InexactFloat64(),
			Taxes:           c.Taxes.InexactFloat64(),
			CommissionTotal: c.CommissionTotal.InexactFloat64(),
		})
	}

	return JSONResponse(http.StatusCreated, createInvoiceResponse{
		Name:                     invoice.Name,
		PostingDate:              invoice.PostingDate.Format("2006-01-02"),
		Supplier:                 invoice.SupplierID,
		SupplierName:             invoice.SupplierName,
		GrandTotal:               invoice.GrandTotal.InexactFloat64(),
		TotalCommissionsAndTaxes: invoice.TotalCommissionsAndTaxes.InexactFloat64(),
		PamperCommission:         invoice.PamperCommission.InexactFloat64(),
		Doctype:                  permission.DoctypeInvoiceForm,
		Items:                    itemRows,
		Commissions:              commissionRows,
	}), nil
}

type updateInvoiceBody struct {
	PostingDate  *string           `json:"posting_date"`
	Supplier     *string           `json:"supplier"`
	SupplierName *string           `json:"supplier_name"`
	Items        []invoiceItemBody `json:"items"`
}

// UpdateInvoiceHandler patches header fields and optionally replaces the
// item table of a draft invoice.
func (sr *ServiceRegistry) UpdateInvoiceHandler(req *Request) (*Response, error) {
	name := req.PathParams["name"]
	if name == "" {
		return ErrorResponse(http.StatusBadRequest, "Missing invoice name"), fmt.Errorf("missing invoice name")
	}
	if !permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Write) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("write permission denied")
	}

	input := repository.UpdateInvoiceInput{}
	if req.Body != "" {
		var body updateInvoiceBody
		if err := decodeBody(req.Body, &body); err != nil {
			return ErrorResponse(http.StatusUnprocessableEntity, "Invalid body format: "+err.Error()), err
		}
		if body.PostingDate != nil && *body.PostingDate != "" {
			postingDate, err := parseDate(*body.PostingDate)
			if err != nil {
				return ErrorResponse(http.StatusBadRequest, "Invalid posting_date, expected YYYY-MM-DD"), err
			}
			input.PostingDate = postingDate
		}
		if body.Supplier != nil && *body.Supplier != "" {
			input.SupplierID = body.Supplier
		}
		if body.SupplierName != nil && *body.SupplierName != "" {
			input.SupplierName = body.SupplierName
		}
		if body.Items != nil {
			items := make([]repository.InvoiceItemInput, 0, len(body.Items))
			for _, it := range body.Items {
				items = append(items, it.toInput())
			}
			input.Items = items
		}
	}

	invoice, repoErr := sr.repository.UpdateInvoice(name, input)
	if repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("updating invoice: %s", repoErr.Message)
	}

	return JSONResponse(http.StatusOK, map[string]string{"name": invoice.Name}), nil
}

// SubmitInvoiceHandler moves a draft invoice to submitted.
func (sr *ServiceRegistry) SubmitInvoiceHandler(req *Request) (*Response, error) {
	name := req.PathParams["name"]
	if name == "" {
		return ErrorResponse(http.StatusBadRequest, "Missing invoice name"), fmt.Errorf("missing invoice name")
	}
	if !permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Submit) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("submit permission denied")
	}

	invoice, repoErr := sr.repository.SubmitInvoice(name)
	if repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("submitting invoice: %s", repoErr.Message)
	}

	return JSONResponse(http.StatusOK, map[string]interface{}{
		"name":      invoice.Name,
		"docstatus": invoice.Docstatus,
	}), nil
}

// DeleteInvoiceHandler deletes a non-submitted invoice.
func (sr *ServiceRegistry) DeleteInvoiceHandler(req *Request) (*Response, error) {
	name := req.PathParams["name"]
	if name == "" {
		return ErrorResponse(http.StatusBadRequest, "Missing invoice name"), fmt.Errorf("missing invoice name")
	}
	if !permission.HasPermission(req.User, permission.DoctypeInvoiceForm, permission.Delete) {
		return ErrorResponse(http.StatusForbidden, "Not permitted"), fmt.Errorf("delete permission denied")
	}

	if repoErr := sr.repository.DeleteInvoice(name); repoErr != nil {
		return repoErrorResponse(repoErr), fmt.Errorf("deleting invoice: %s", repoErr.Message)
	}

	return JSONResponse(http.StatusOK, map[string]bool{"deleted": true}), nil
}

// decodeBody parses a JSON request body into v. Bodies may arrive either
// as the object itself or wrapped as {"data": {...}}, with the wrapped
// value optionally string-encoded, as the mobile client historically sent.
func decodeBody(body string, v interface{}) error {
	raw := []byte(body)

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		inner := envelope.Data
		var encoded string
		if json.Unmarshal(inner, &encoded) == nil {
			inner = []byte(encoded)
		}
		raw = inner
	}

	return json.Unmarshal(raw, v)
}
