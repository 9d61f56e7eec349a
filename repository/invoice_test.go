package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestNormalizeItems(t *testing.T) {
	items := []InvoiceItemInput{
		{ItemName: "Tomato", Qty: dec("10"), Price: dec("5")},
		{ItemCode: "CUCUMBER", Qty: dec("4"), Price: dec("12.5")},
		{ItemCode: "OKRA", ItemName: "Okra", Qty: dec("3"), Price: dec("7"), Total: dec("1000")},
	}
	NormalizeItems(items)

	assert.Equal(t, "Tomato", items[0].ItemCode)
	assert.Equal(t, "Tomato", items[0].ItemName)
	assert.True(t, items[0].Total.Equal(dec("50")))

	assert.Equal(t, "CUCUMBER", items[1].ItemName)
	assert.True(t, items[1].Total.Equal(dec("50")))

	// An explicit total is never recomputed.
	assert.True(t, items[2].Total.Equal(dec("1000")))
}

func TestComputeInvoiceTotals(t *testing.T) {
	items := []InvoiceItemInput{
		{ItemCode: "A", Total: dec("600")},
		{ItemCode: "B", Total: dec("400")},
	}

	totals := ComputeInvoiceTotals(items, dec("5"), dec("15"))
	assert.True(t, totals.GrandTotal.Equal(dec("1000")), "grand total %s", totals.GrandTotal)
	assert.True(t, totals.TotalCommission.Equal(dec("50")), "commission %s", totals.TotalCommission)
	assert.True(t, totals.TaxesOnCommission.Equal(dec("7.5")), "taxes %s", totals.TaxesOnCommission)
	assert.True(t, totals.TotalCommissionsAndTaxes.Equal(dec("57.5")), "total %s", totals.TotalCommissionsAndTaxes)
}

func TestComputeInvoiceTotalsEmpty(t *testing.T) {
	totals := ComputeInvoiceTotals(nil, dec("5"), dec("15"))
	assert.True(t, totals.GrandTotal.IsZero())
	assert.True(t, totals.TotalCommissionsAndTaxes.IsZero())
}

func TestComputeInvoiceTotalsFractionalRates(t *testing.T) {
	items := []InvoiceItemInput{{ItemCode: "A", Total: dec("333.33")}}

	totals := ComputeInvoiceTotals(items, dec("7.5"), dec("15"))
	assert.True(t, totals.TotalCommission.Equal(dec("24.99975")), "commission %s", totals.TotalCommission)
	assert.True(t, totals.TaxesOnCommission.Equal(dec("3.7499625")), "taxes %s", totals.TaxesOnCommission)
}

func TestRepositoryErrorError(t *testing.T) {
	err := &RepositoryError{Code: ErrCodeEntityNotFound, Message: "Invoice does not exist", Detail: "Invoice Form INV-1 does not exist"}
	assert.Contains(t, err.Error(), ErrCodeEntityNotFound)
	assert.Contains(t, err.Error(), "Invoice does not exist")
}
