package srvreg

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Per-endpoint page size caps. The invoice list keeps a tighter cap than
// the dropdown lookups.
const (
	InvoicePageSizeDefault = 20
	InvoicePageSizeMax     = 100

	LookupPageSizeMax = 200
)

// parsePage coerces a page parameter to a 1-based page number.
func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parsePageSize coerces a page_size parameter into [1, max], falling back
// to def when absent or unparseable.
func parsePageSize(raw string, def, max int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return clampPageSize(def, max)
	}
	size, err := strconv.Atoi(trimmed)
	if err != nil {
		return clampPageSize(def, max)
	}
	return clampPageSize(size, max)
}

func clampPageSize(size, max int) int {
	if size < 1 {
		return 1
	}
	if size > max {
		return max
	}
	return size
}

// parseDate parses a YYYY-MM-DD query parameter. Empty input yields nil.
func parseDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryValue returns a query parameter, trimmed.
func queryValue(query url.Values, key string) string {
	return strings.TrimSpace(query.Get(key))
}

// matchesSearch reports whether the needle occurs in any of the haystacks,
// case-insensitively. Used for the in-memory page scan on the invoice list.
func matchesSearch(needle string, haystacks ...string) bool {
	n := strings.ToLower(strings.TrimSpace(needle))
	if n == "" {
		return true
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), n) {
			return true
		}
	}
	return false
}
