package services_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"solarmanager/services"
	"solarmanager/testhelpers"
)

func TestLoadStatistics(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Statistik GmbH")

	testhelpers.CreateTestQuotation(t, app, customer.Id, "SM-QT-ST-0001",
		services.QuotationDraftStatus, nil, testhelpers.SimpleTotals(1000, 19))
	testhelpers.CreateTestQuotation(t, app, customer.Id, "SM-QT-ST-0002",
		services.QuotationSent, nil, testhelpers.SimpleTotals(2000, 19))
	accepted := testhelpers.CreateTestQuotation(t, app, customer.Id, "SM-QT-ST-0003",
		services.QuotationAccepted, nil, testhelpers.SimpleTotals(5000, 19))
	testhelpers.CreateTestQuotation(t, app, customer.Id, "SM-QT-ST-0004",
		services.QuotationRejected, nil, testhelpers.SimpleTotals(700, 19))

	dep := services.CreateInvoiceFromQuotation(app, accepted.Id, decimal.NewFromInt(30), "", "SM-IN", "tester")
	if !dep.Success {
		t.Fatalf("deposit failed: %s", dep.Error)
	}
	if r := services.UpdateInvoiceStatus(app, dep.InvoiceID, services.InvoiceSent, "tester"); !r.Success {
		t.Fatalf("status failed: %s", r.Error)
	}
	fin := services.CreateInvoiceFromQuotation(app, accepted.Id, decimal.NewFromInt(30), "", "SM-IN", "tester")
	if !fin.Success {
		t.Fatalf("final failed: %s", fin.Error)
	}
	if r := services.UpdateInvoiceStatus(app, fin.InvoiceID, services.InvoicePaid, "tester"); !r.Success {
		t.Fatalf("status failed: %s", r.Error)
	}
	if r := services.UpdateInvoiceStatus(app, fin.InvoiceID, services.InvoicePaid, "tester"); !r.Success {
		t.Fatalf("repeated status failed: %s", r.Error)
	}

	stats, err := services.LoadStatistics(app)
	if err != nil {
		t.Fatalf("load statistics: %v", err)
	}

	if got := stats.Quotations[services.QuotationDraftStatus].Count; got != 1 {
		t.Errorf("draft quotations = %d, want 1", got)
	}
	if got := stats.Quotations[services.QuotationSent].Count; got != 1 {
		t.Errorf("sent quotations = %d, want 1", got)
	}

	// Open volume is draft + sent gross: 1190 + 2380.
	if !stats.OpenQuotationVolume.Equal(decimal.NewFromInt(3570)) {
		t.Errorf("OpenQuotationVolume = %s, want 3570", stats.OpenQuotationVolume)
	}
	if !stats.AcceptedQuotationVolume.Equal(decimal.NewFromInt(5950)) {
		t.Errorf("AcceptedQuotationVolume = %s, want 5950", stats.AcceptedQuotationVolume)
	}

	// 5,950 gross split 30/70: 1,785 deposit outstanding, 4,165 final paid.
	if !stats.OutstandingVolume.Equal(decimal.NewFromInt(1785)) {
		t.Errorf("OutstandingVolume = %s, want 1785", stats.OutstandingVolume)
	}
	if !stats.PaidVolume.Equal(decimal.NewFromInt(4165)) {
		t.Errorf("PaidVolume = %s, want 4165", stats.PaidVolume)
	}
	if got := stats.Invoices[services.InvoiceSent].Count; got != 1 {
		t.Errorf("sent invoices = %d, want 1", got)
	}
	if got := stats.Invoices[services.InvoicePaid].Count; got != 1 {
		t.Errorf("paid invoices = %d, want 1", got)
	}
}

func TestLoadStatistics_EmptyStore(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	stats, err := services.LoadStatistics(app)
	if err != nil {
		t.Fatalf("load statistics: %v", err)
	}
	if len(stats.Quotations) != 0 || len(stats.Invoices) != 0 {
		t.Errorf("expected empty buckets, got %+v", stats)
	}
	if !stats.OpenQuotationVolume.IsZero() || !stats.PaidVolume.IsZero() {
		t.Errorf("expected zero volumes, got %+v", stats)
	}
}
