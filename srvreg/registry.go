// Package srvreg routes mobile API requests to their endpoint handlers.
// Handlers receive a framework-independent Request and produce a Response;
// the HTTP server converts between those and net/http.
package srvreg

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/amrbasha900/mobile-endpoints/repository"
	"github.com/amrbasha900/mobile-endpoints/repository/models"
)

// Request represents the client's original HTTP request.
type Request struct {
	Method     string
	Path       string
	Query      url.Values
	Headers    map[string]string
	Body       string
	RemoteAddr string
	RequestID  string
	Timestamp  time.Time

	// User is the authenticated API user, resolved by the server's auth
	// middleware before dispatch.
	User *models.User

	// PathParams holds values bound to :param segments of the matched route.
	PathParams map[string]string
}

// Response is the computed endpoint response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Repository is the slice of the persistence layer the handlers use.
type Repository interface {
	ListInvoices(filter repository.InvoiceListFilter) ([]models.InvoiceForm, int64, *repository.RepositoryError)
	GetInvoice(name string) (*models.InvoiceForm, *repository.RepositoryError)
	CreateInvoice(input repository.CreateInvoiceInput) (*models.InvoiceForm, *repository.RepositoryError)
	UpdateInvoice(name string, input repository.UpdateInvoiceInput) (*models.InvoiceForm, *repository.RepositoryError)
	SubmitInvoice(name string) (*models.InvoiceForm, *repository.RepositoryError)
	DeleteInvoice(name string) *repository.RepositoryError
	ListSuppliers(filter repository.LookupFilter) ([]models.Supplier, bool, *repository.RepositoryError)
	ListCustomers(filter repository.LookupFilter) ([]models.Customer, bool, *repository.RepositoryError)
	ListItems(filter repository.LookupFilter) ([]models.Item, bool, *repository.RepositoryError)
}

// ServiceHandler is a function type for endpoint handlers.
type ServiceHandler func(*Request) (*Response, error)

// RouteKey uniquely identifies a route.
type RouteKey struct {
	Method string
	Path   string
}

// ServiceRegistry manages all endpoint handlers.
type ServiceRegistry struct {
	handlers    map[RouteKey]ServiceHandler
	exactRoutes map[RouteKey]bool
	mu          sync.RWMutex
	repository  Repository
	logger      zerolog.Logger
}

// NewServiceRegistry creates a new service registry.
func NewServiceRegistry(repo Repository, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		handlers:    make(map[RouteKey]ServiceHandler),
		exactRoutes: make(map[RouteKey]bool),
		repository:  repo,
		logger:      logger,
	}
}

// RegisterHandler registers a new endpoint handler.
func (sr *ServiceRegistry) RegisterHandler(method, path string, isExactPath bool, handler ServiceHandler) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	key := RouteKey{Method: strings.ToUpper(method), Path: path}
	sr.handlers[key] = handler
	sr.exactRoutes[key] = isExactPath
}

// GetHandlerForPath finds the handler for a method and path, returning the
// values bound to any :param segments of the matched pattern.
func (sr *ServiceRegistry) GetHandlerForPath(method, path string) (ServiceHandler, map[string]string, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	// Exact match first
	key := RouteKey{Method: strings.ToUpper(method), Path: path}
	if handler, ok := sr.handlers[key]; ok && sr.exactRoutes[key] {
		return handler, nil, true
	}

	// Pattern matching
	for routeKey, handler := range sr.handlers {
		if routeKey.Method != strings.ToUpper(method) {
			continue
		}
		if sr.exactRoutes[routeKey] {
			continue
		}
		if params, ok := matchPath(routeKey.Path, path); ok {
			return handler, params, true
		}
	}

	return nil, nil, false
}

// matchPath matches patterns like "/api/invoices/:name" against a concrete
// path, returning the bound parameter values.
func matchPath(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	var params map[string]string
	for i := range patternParts {
		if name, ok := strings.CutPrefix(patternParts[i], ":"); ok {
			if pathParts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = pathParts[i]
			continue
		}
		if patternParts[i] != pathParts[i] {
			return nil, false
		}
	}

	return params, true
}

// RegisterDefaultServices wires up the mobile invoicing endpoints.
func (sr *ServiceRegistry) RegisterDefaultServices() {
	// Invoice Form
	sr.RegisterHandler("GET", "/api/invoices", true, sr.GetInvoicesHandler)
	sr.RegisterHandler("POST", "/api/invoices", true, sr.CreateInvoiceHandler)
	sr.RegisterHandler("GET", "/api/invoices/:name", false, sr.GetInvoiceDetailsHandler)
	sr.RegisterHandler("POST", "/api/invoices/:name/update", false, sr.UpdateInvoiceHandler)
	sr.RegisterHandler("POST", "/api/invoices/:name/submit", false, sr.SubmitInvoiceHandler)
	sr.RegisterHandler("POST", "/api/invoices/:name/delete", false, sr.DeleteInvoiceHandler)
	// Lookups
	sr.RegisterHandler("GET", "/api/suppliers", true, sr.GetSuppliersHandler)
	sr.RegisterHandler("GET", "/api/customers", true, sr.GetCustomersHandler)
	sr.RegisterHandler("GET", "/api/items", true, sr.GetItemsHandler)
	// User defaults
	sr.RegisterHandler("GET", "/api/user/default-company", true, sr.GetUserDefaultCompanyHandler)
}

// Dispatch executes the request against the registered handlers.
func (sr *ServiceRegistry) Dispatch(req *Request) *Response {
	handler, params, found := sr.GetHandlerForPath(req.Method, req.Path)
	if !found {
		return ErrorResponse(http.StatusNotFound,
			fmt.Sprintf("Service not found for %s %s", req.Method, req.Path))
	}
	req.PathParams = params

	response, err := handler(req)
	if err != nil {
		sr.logger.Warn().
			Err(err).
			Str("request_id", req.RequestID).
			Str("path", req.Path).
			Msg("endpoint handler rejected request")
	}
	if response == nil {
		return ErrorResponse(http.StatusInternalServerError, "Internal server error")
	}
	return response
}

// ConvertHTTPRequest converts an http.Request into a dispatchable Request.
func ConvertHTTPRequest(r *http.Request, requestID string) (*Request, error) {
	headers := make(map[string]string)
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	body := ""
	if r.Body != nil {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		body = strings.TrimSpace(string(bodyBytes))
	}

	return &Request{
		Method:     r.Method,
		Path:       strings.TrimSuffix(r.URL.Path, "/"),
		Query:      r.URL.Query(),
		Headers:    headers,
		Body:       body,
		RemoteAddr: r.RemoteAddr,
		RequestID:  requestID,
		Timestamp:  time.Now(),
	}, nil
}

var defaultHeaders = map[string]string{"Content-Type": "application/json"}

// JSONResponse marshals payload into a Response with the given status.
func JSONResponse(statusCode int, payload interface{}) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return ErrorResponse(http.StatusInternalServerError, "Failed to encode response")
	}
	return &Response{
		StatusCode: statusCode,
		Headers:    defaultHeaders,
		Body:       string(body),
	}
}

// ErrorResponse builds an {"error": ...} response.
func ErrorResponse(statusCode int, message string) *Response {
	return JSONResponse(statusCode, map[string]string{"error": message})
}

// repoErrorResponse maps repository error codes onto HTTP statuses.
func repoErrorResponse(repoErr *repository.RepositoryError) *Response {
	switch repoErr.Code {
	case repository.ErrCodeEntityNotFound:
		return ErrorResponse(http.StatusNotFound, repoErr.Message)
	case repository.ErrCodeInvalidState, repository.ErrCodeConflict, repository.PgErrUniqueViolation:
		return ErrorResponse(http.StatusConflict, repoErr.Message)
	case repository.ErrCodeValidation, repository.PgErrForeignKeyViolation, repository.PgErrNotNullViolation, repository.PgErrCheckViolation:
		return ErrorResponse(http.StatusBadRequest, repoErr.Message)
	case repository.ErrCodeUnauthorized:
		return ErrorResponse(http.StatusForbidden, repoErr.Message)
	default:
		return ErrorResponse(http.StatusInternalServerError, "Internal server error")
	}
}
