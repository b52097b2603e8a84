package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// Quotation status lifecycle. Line items may only change while the
// document is in draft or sent.
const (
	QuotationDraftStatus = "draft"
	QuotationSent        = "sent"
	QuotationAccepted    = "accepted"
	QuotationRejected    = "rejected"
	QuotationExpired     = "expired"
)

var quotationStatuses = map[string]bool{
	QuotationDraftStatus: true,
	QuotationSent:        true,
	QuotationAccepted:    true,
	QuotationRejected:    true,
	QuotationExpired:     true,
}

// QuotationSequence is the sequences-collection counter for quotations.
const QuotationSequence = "quotations"

// SaveResult reports the outcome of a mutating document operation. Store
// failures land in Error, validation failures in Fields; neither is ever
// raised as a panic or returned as a bare error to the UI layer.
type SaveResult struct {
	Success bool              `json:"success"`
	ID      string            `json:"id,omitempty"`
	Number  string            `json:"number,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func failure(format string, args ...any) SaveResult {
	return SaveResult{Error: fmt.Sprintf(format, args...)}
}

// QuotationDraft is the caller-supplied input for creating or updating a
// quotation. Items are re-priced against FactorSelection before totals are
// computed, so callers may pass items in any factor state.
type QuotationDraft struct {
	CustomerID      string
	ProjectID       string
	Items           []LineItem
	FactorSelection FactorSelection
	DiscountPercent decimal.Decimal
	TaxOverride     decimal.NullDecimal
	ValidUntil      string
	PaymentTerms    string
	DeliveryTerms   string
}

// ValidateQuotation checks the required selections and returns a
// field-keyed message map. An empty map means the draft is valid.
func ValidateQuotation(d QuotationDraft) map[string]string {
	errs := make(map[string]string)
	if d.CustomerID == "" {
		errs["customer"] = "a customer must be selected"
	}
	if len(d.Items) == 0 {
		errs["line_items"] = "at least one line item is required"
	}
	return errs
}

// CreateQuotation validates the draft, prices it and persists a new
// quotation in draft status. Document number allocation and the insert run
// in one transaction so failed saves never burn a number.
func CreateQuotation(app core.App, d QuotationDraft, cfg RateConfiguration, numberPrefix, actor string) SaveResult {
	if fields := ValidateQuotation(d); len(fields) > 0 {
		return SaveResult{Error: "validation failed", Fields: fields}
	}

	items := SortLineItems(ApplyLaborFactors(d.Items, cfg, d.FactorSelection))
	totals := CalculateOfferTotals(items, d.DiscountPercent, d.TaxOverride, cfg)

	var result SaveResult
	err := app.RunInTransaction(func(tx core.App) error {
		number, err := NextDocumentNumber(tx, QuotationSequence, numberPrefix, time.Now())
		if err != nil {
			return err
		}

		col, err := tx.FindCollectionByNameOrId("quotations")
		if err != nil {
			return fmt.Errorf("quotations collection missing: %w", err)
		}

		rec := core.NewRecord(col)
		rec.Set("number", number)
		rec.Set("status", QuotationDraftStatus)
		if err := applyQuotationDraft(rec, d, items, totals); err != nil {
			return err
		}
		if err := AppendHistory(rec, actor, "quotation created"); err != nil {
			return err
		}
		if err := tx.Save(rec); err != nil {
			return fmt.Errorf("save quotation: %w", err)
		}

		result = SaveResult{Success: true, ID: rec.Id, Number: number}
		return nil
	})
	if err != nil {
		return failure("create quotation: %v", err)
	}
	return result
}

// UpdateQuotation re-prices and persists an existing quotation. Only draft
// and sent documents are mutable; each accepted mutation appends a history
// entry and bumps the version.
func UpdateQuotation(app core.App, id string, d QuotationDraft, cfg RateConfiguration, actor string) SaveResult {
	rec, err := app.FindRecordById("quotations", id)
	if err != nil {
		return failure("quotation %s not found", id)
	}
	if status := rec.GetString("status"); status != QuotationDraftStatus && status != QuotationSent {
		return failure("quotation %s is %s and can no longer be edited", rec.GetString("number"), status)
	}
	if fields := ValidateQuotation(d); len(fields) > 0 {
		return SaveResult{Error: "validation failed", Fields: fields}
	}

	items := SortLineItems(ApplyLaborFactors(d.Items, cfg, d.FactorSelection))
	totals := CalculateOfferTotals(items, d.DiscountPercent, d.TaxOverride, cfg)

	if err := applyQuotationDraft(rec, d, items, totals); err != nil {
		return failure("update quotation: %v", err)
	}
	if err := AppendHistory(rec, actor, "quotation updated"); err != nil {
		return failure("update quotation: %v", err)
	}
	if err := app.Save(rec); err != nil {
		return failure("save quotation: %v", err)
	}
	return SaveResult{Success: true, ID: rec.Id, Number: rec.GetString("number")}
}

// UpdateQuotationStatus moves a quotation through its lifecycle and records
// the change in the history.
func UpdateQuotationStatus(app core.App, id, status, actor string) SaveResult {
	if !quotationStatuses[status] {
		return failure("unknown quotation status %q", status)
	}
	rec, err := app.FindRecordById("quotations", id)
	if err != nil {
		return failure("quotation %s not found", id)
	}
	if rec.GetString("status") == status {
		return SaveResult{Success: true, ID: rec.Id, Number: rec.GetString("number")}
	}

	rec.Set("status", status)
	if err := AppendHistory(rec, actor, "status changed to "+status); err != nil {
		return failure("update status: %v", err)
	}
	if err := app.Save(rec); err != nil {
		return failure("save quotation: %v", err)
	}
	return SaveResult{Success: true, ID: rec.Id, Number: rec.GetString("number")}
}

// DeleteQuotation removes a quotation. Quotations that already have
// derived invoices are kept for reconciliation and cannot be deleted.
func DeleteQuotation(app core.App, id string) SaveResult {
	rec, err := app.FindRecordById("quotations", id)
	if err != nil {
		return failure("quotation %s not found", id)
	}

	if inv, err := app.FindFirstRecordByFilter(
		"invoices",
		"quotation = {:id}",
		map[string]any{"id": id},
	); err == nil && inv != nil {
		return failure("quotation %s has invoice %s and cannot be deleted", rec.GetString("number"), inv.GetString("number"))
	}

	if err := app.Delete(rec); err != nil {
		return failure("delete quotation: %v", err)
	}
	return SaveResult{Success: true, ID: id, Number: rec.GetString("number")}
}

// QuotationItems reads the line item array of a quotation or invoice record.
func QuotationItems(rec *core.Record) ([]LineItem, error) {
	var items []LineItem
	raw := rec.GetString("line_items")
	if raw == "" || raw == "null" {
		return nil, nil
	}
	if err := rec.UnmarshalJSONField("line_items", &items); err != nil {
		return nil, fmt.Errorf("document %s: invalid line_items: %w", rec.Id, err)
	}
	return items, nil
}

// TotalsFromRecord reconstructs the totals breakdown stored on a document
// record.
func TotalsFromRecord(rec *core.Record) QuotationTotals {
	return QuotationTotals{
		SubtotalNet:         decimal.NewFromFloat(rec.GetFloat("subtotal_net")),
		LaborReductionTotal: decimal.NewFromFloat(rec.GetFloat("labor_reduction_total")),
		DiscountPercent:     decimal.NewFromFloat(rec.GetFloat("discount_percent")),
		DiscountAmount:      decimal.NewFromFloat(rec.GetFloat("discount_amount")),
		NetTotal:            decimal.NewFromFloat(rec.GetFloat("net_total")),
		TaxRate:             decimal.NewFromFloat(rec.GetFloat("tax_rate")),
		TaxAmount:           decimal.NewFromFloat(rec.GetFloat("tax_amount")),
		GrossTotal:          decimal.NewFromFloat(rec.GetFloat("gross_total")),
		ModuleCount:         rec.GetInt("module_count"),
		AppliedTier:         rec.GetString("applied_tier"),
	}
}

// applyQuotationDraft writes the priced draft onto the record.
func applyQuotationDraft(rec *core.Record, d QuotationDraft, items []LineItem, totals QuotationTotals) error {
	rec.Set("customer", d.CustomerID)
	rec.Set("project", d.ProjectID)
	rec.Set("valid_until", d.ValidUntil)
	rec.Set("payment_terms", d.PaymentTerms)
	rec.Set("delivery_terms", d.DeliveryTerms)

	rawItems, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	rec.Set("line_items", types.JSONRaw(rawItems))

	rawSel, err := json.Marshal(d.FactorSelection)
	if err != nil {
		return fmt.Errorf("marshal factor selection: %w", err)
	}
	rec.Set("factor_selection", types.JSONRaw(rawSel))

	setTotals(rec, totals)
	return nil
}

// setTotals writes a totals breakdown onto a document record.
func setTotals(rec *core.Record, totals QuotationTotals) {
	rec.Set("subtotal_net", totals.SubtotalNet.InexactFloat64())
	rec.Set("labor_reduction_total", totals.LaborReductionTotal.InexactFloat64())
	rec.Set("discount_percent", totals.DiscountPercent.InexactFloat64())
	rec.Set("discount_amount", totals.DiscountAmount.InexactFloat64())
	rec.Set("net_total", totals.NetTotal.InexactFloat64())
	rec.Set("tax_rate", totals.TaxRate.InexactFloat64())
	rec.Set("tax_amount", totals.TaxAmount.InexactFloat64())
	rec.Set("gross_total", totals.GrossTotal.InexactFloat64())
	rec.Set("module_count", totals.ModuleCount)
	rec.Set("applied_tier", totals.AppliedTier)
}
