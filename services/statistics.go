package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// StatusBucket accumulates document count and gross volume for one status.
type StatusBucket struct {
	Count      int             `json:"count"`
	GrossTotal decimal.Decimal `json:"gross_total"`
}

// Statistics is a pure aggregation over the in-memory document sets,
// grouped by status. It carries no state of its own and is recomputed on
// every request.
type Statistics struct {
	Quotations map[string]StatusBucket `json:"quotations"`
	Invoices   map[string]StatusBucket `json:"invoices"`

	OpenQuotationVolume     decimal.Decimal `json:"open_quotation_volume"`
	AcceptedQuotationVolume decimal.Decimal `json:"accepted_quotation_volume"`
	OutstandingVolume       decimal.Decimal `json:"outstanding_volume"`
	PaidVolume              decimal.Decimal `json:"paid_volume"`
}

// CalculateStatistics aggregates counts and gross totals by status.
func CalculateStatistics(quotations, invoices []*core.Record) Statistics {
	stats := Statistics{
		Quotations: make(map[string]StatusBucket),
		Invoices:   make(map[string]StatusBucket),
	}

	for _, rec := range quotations {
		status := rec.GetString("status")
		gross := decimal.NewFromFloat(rec.GetFloat("gross_total"))

		bucket := stats.Quotations[status]
		bucket.Count++
		bucket.GrossTotal = bucket.GrossTotal.Add(gross)
		stats.Quotations[status] = bucket

		switch status {
		case QuotationDraftStatus, QuotationSent:
			stats.OpenQuotationVolume = stats.OpenQuotationVolume.Add(gross)
		case QuotationAccepted:
			stats.AcceptedQuotationVolume = stats.AcceptedQuotationVolume.Add(gross)
		}
	}

	for _, rec := range invoices {
		status := rec.GetString("status")
		gross := decimal.NewFromFloat(rec.GetFloat("gross_total"))

		bucket := stats.Invoices[status]
		bucket.Count++
		bucket.GrossTotal = bucket.GrossTotal.Add(gross)
		stats.Invoices[status] = bucket

		switch status {
		case InvoiceSent, InvoiceOverdue:
			stats.OutstandingVolume = stats.OutstandingVolume.Add(gross)
		case InvoicePaid:
			stats.PaidVolume = stats.PaidVolume.Add(gross)
		}
	}

	return stats
}

// LoadStatistics fetches all quotations and invoices and aggregates them.
func LoadStatistics(app core.App) (Statistics, error) {
	quotations, err := app.FindAllRecords("quotations")
	if err != nil {
		return Statistics{}, fmt.Errorf("load quotations: %w", err)
	}
	invoices, err := app.FindAllRecords("invoices")
	if err != nil {
		return Statistics{}, fmt.Errorf("load invoices: %w", err)
	}
	return CalculateStatistics(quotations, invoices), nil
}
