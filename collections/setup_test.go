package collections_test

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"solarmanager/collections"
	"solarmanager/testhelpers"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"customers",
	"projects",
	"materials",
	"service_positions",
	"settings",
	"quotations",
	"invoices",
	"sequences",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_QuotationFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		t.Fatalf("quotations collection missing: %v", err)
	}

	for _, field := range []string{
		"number", "status", "customer", "line_items", "factor_selection",
		"history", "version", "subtotal_net", "labor_reduction_total",
		"discount_percent", "discount_amount", "net_total", "tax_rate",
		"tax_amount", "gross_total", "module_count", "applied_tier",
	} {
		if col.Fields.GetByName(field) == nil {
			t.Errorf("quotations is missing field %q", field)
		}
	}
}

func TestSetup_InvoiceFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, err := app.FindCollectionByNameOrId("invoices")
	if err != nil {
		t.Fatalf("invoices collection missing: %v", err)
	}

	for _, field := range []string{
		"number", "kind", "status", "quotation", "customer",
		"deposit_percent", "deposit_amount", "deposit_invoice",
		"summary_text", "gross_total", "history", "version",
	} {
		if col.Fields.GetByName(field) == nil {
			t.Errorf("invoices is missing field %q", field)
		}
	}
}

func TestSetup_UniqueNumberConstraint(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Eindeutig GmbH")

	testhelpers.CreateTestQuotation(t, app, customer.Id, "SM-QT-U-0001",
		"draft", nil, testhelpers.SimpleTotals(100, 19))

	col, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		t.Fatal(err)
	}
	dup := core.NewRecord(col)
	dup.Set("number", "SM-QT-U-0001")
	dup.Set("customer", customer.Id)
	dup.Set("status", "draft")
	if err := app.Save(dup); err == nil {
		t.Error("duplicate quotation number was accepted")
	}
}
