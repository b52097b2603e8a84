// Package testhelpers provides utilities for testing PocketBase-based
// applications.
package testhelpers

import (
	"encoding/json"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"

	"solarmanager/collections"
	"solarmanager/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test
// finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// SeedDefaults writes the default rate configuration and starter catalog.
func SeedDefaults(t *testing.T, app *pocketbase.PocketBase) {
	t.Helper()

	if err := collections.Seed(app); err != nil {
		t.Fatalf("failed to seed defaults: %v", err)
	}
}

// CreateTestCustomer creates a customer record with the given name.
func CreateTestCustomer(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("customers")
	if err != nil {
		t.Fatalf("failed to find customers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("city", "Freiburg")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test customer: %v", err)
	}
	return record
}

// CreateTestMaterial creates a material record with the given article
// number and purchase price.
func CreateTestMaterial(t *testing.T, app *pocketbase.PocketBase, articleNumber string, purchasePrice float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("materials")
	if err != nil {
		t.Fatalf("failed to find materials collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("article_number", articleNumber)
	record.Set("name", "Test material "+articleNumber)
	record.Set("unit", "Stk")
	record.Set("purchase_price", purchasePrice)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test material: %v", err)
	}
	return record
}

// CreateTestPosition creates a service position with pre-cached prices.
func CreateTestPosition(t *testing.T, app *pocketbase.PocketBase, positionNumber, category, unit string, prices services.CalculatedPrices) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("service_positions")
	if err != nil {
		t.Fatalf("failed to find service_positions collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("position_number", positionNumber)
	record.Set("name", "Test position "+positionNumber)
	record.Set("category", category)
	record.Set("unit", unit)
	setJSONField(t, record, "calculated", prices)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test position: %v", err)
	}
	return record
}

// CreateTestQuotation creates a quotation with the given status, line
// items and totals, with a single-entry history.
func CreateTestQuotation(t *testing.T, app *pocketbase.PocketBase, customerID, number, status string, items []services.LineItem, totals services.QuotationTotals) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		t.Fatalf("failed to find quotations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("number", number)
	record.Set("customer", customerID)
	record.Set("status", status)
	setJSONField(t, record, "line_items", items)
	record.Set("subtotal_net", totals.SubtotalNet.InexactFloat64())
	record.Set("labor_reduction_total", totals.LaborReductionTotal.InexactFloat64())
	record.Set("discount_percent", totals.DiscountPercent.InexactFloat64())
	record.Set("discount_amount", totals.DiscountAmount.InexactFloat64())
	record.Set("net_total", totals.NetTotal.InexactFloat64())
	record.Set("tax_rate", totals.TaxRate.InexactFloat64())
	record.Set("tax_amount", totals.TaxAmount.InexactFloat64())
	record.Set("gross_total", totals.GrossTotal.InexactFloat64())
	record.Set("module_count", totals.ModuleCount)
	record.Set("applied_tier", totals.AppliedTier)

	if err := services.AppendHistory(record, "test", "quotation created"); err != nil {
		t.Fatalf("failed to append history: %v", err)
	}
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quotation: %v", err)
	}
	return record
}

// SimpleTotals builds a consistent totals breakdown from a net amount and
// tax rate, for tests that do not exercise the totals engine itself.
func SimpleTotals(net float64, taxRate float64) services.QuotationTotals {
	netD := decimal.NewFromFloat(net)
	rate := decimal.NewFromFloat(taxRate)
	tax := netD.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	return services.QuotationTotals{
		SubtotalNet: netD,
		NetTotal:    netD,
		TaxRate:     rate,
		TaxAmount:   tax,
		GrossTotal:  netD.Add(tax),
	}
}

func setJSONField(t *testing.T, record *core.Record, field string, value any) {
	t.Helper()

	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", field, err)
	}
	record.Set(field, types.JSONRaw(raw))
}
