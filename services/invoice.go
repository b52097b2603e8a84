package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes a standalone full invoice from the
// deposit/final pair derived from an accepted quotation.
type InvoiceKind string

const (
	InvoiceFull    InvoiceKind = "full"
	InvoiceDeposit InvoiceKind = "deposit"
	InvoiceFinal   InvoiceKind = "final"
)

// Invoice status lifecycle.
const (
	InvoiceDraftStatus = "draft"
	InvoiceSent        = "sent"
	InvoicePaid        = "paid"
	InvoiceOverdue     = "overdue"
	InvoiceCancelled   = "cancelled"
)

var invoiceStatuses = map[string]bool{
	InvoiceDraftStatus: true,
	InvoiceSent:        true,
	InvoicePaid:        true,
	InvoiceOverdue:     true,
	InvoiceCancelled:   true,
}

// InvoiceSequence is the sequences-collection counter for invoices.
const InvoiceSequence = "invoices"

// InvoiceResult reports the outcome of an invoice operation.
type InvoiceResult struct {
	Success   bool        `json:"success"`
	InvoiceID string      `json:"invoice_id,omitempty"`
	Number    string      `json:"number,omitempty"`
	Kind      InvoiceKind `json:"kind,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func invoiceFailure(format string, args ...any) InvoiceResult {
	return InvoiceResult{Error: fmt.Sprintf(format, args...)}
}

// scaleTotalsToGross scales a quotation's totals so that the gross equals
// grossTarget while the internal VAT breakdown stays consistent with the
// parent document. Net is scaled and rounded, tax and discount are derived
// by subtraction so that gross == net + tax and
// net == subtotal - laborReduction - discount hold exactly.
func scaleTotalsToGross(orig QuotationTotals, grossTarget decimal.Decimal) QuotationTotals {
	if orig.GrossTotal.IsZero() {
		return QuotationTotals{
			DiscountPercent: orig.DiscountPercent,
			TaxRate:         orig.TaxRate,
		}
	}
	factor := grossTarget.Div(orig.GrossTotal)

	scaled := QuotationTotals{
		SubtotalNet:         roundCents(orig.SubtotalNet.Mul(factor)),
		LaborReductionTotal: roundCents(orig.LaborReductionTotal.Mul(factor)),
		DiscountPercent:     orig.DiscountPercent,
		NetTotal:            roundCents(orig.NetTotal.Mul(factor)),
		TaxRate:             orig.TaxRate,
		GrossTotal:          grossTarget,
	}
	scaled.DiscountAmount = scaled.SubtotalNet.Sub(scaled.LaborReductionTotal).Sub(scaled.NetTotal)
	scaled.TaxAmount = grossTarget.Sub(scaled.NetTotal)
	return scaled
}

// DeriveDepositTotals produces the totals of a deposit invoice over the
// given percentage of the quotation's gross.
func DeriveDepositTotals(q QuotationTotals, depositPercent decimal.Decimal) QuotationTotals {
	gross := roundCents(percentOf(q.GrossTotal, depositPercent))
	return scaleTotalsToGross(q, gross)
}

// DeriveFinalTotals produces the totals of the final invoice for the
// remainder after the deposit. The gross is computed by subtraction, which
// makes deposit gross + final gross equal the quotation gross by
// construction.
func DeriveFinalTotals(q QuotationTotals, depositGross decimal.Decimal) QuotationTotals {
	return scaleTotalsToGross(q, q.GrossTotal.Sub(depositGross))
}

// findLiveInvoice returns the non-cancelled invoice of the given kind for a
// quotation, or nil when none exists.
func findLiveInvoice(app core.App, quotationID string, kind InvoiceKind) *core.Record {
	rec, err := app.FindFirstRecordByFilter(
		"invoices",
		"quotation = {:quotation} && kind = {:kind} && status != 'cancelled'",
		map[string]any{"quotation": quotationID, "kind": string(kind)},
	)
	if err != nil {
		return nil
	}
	return rec
}

// CreateInvoiceFromQuotation derives the next invoice for an accepted
// quotation. Without a forced kind the billing state decides: no live
// deposit invoice yet produces a deposit invoice over depositPercent, an
// existing one produces the final invoice for the remainder. forcedKind
// bypasses that inference for correction scenarios.
func CreateInvoiceFromQuotation(app core.App, quotationID string, depositPercent decimal.Decimal, forcedKind InvoiceKind, numberPrefix, actor string) InvoiceResult {
	quotation, err := app.FindRecordById("quotations", quotationID)
	if err != nil {
		return invoiceFailure("quotation %s not found", quotationID)
	}
	if status := quotation.GetString("status"); status != QuotationAccepted {
		return invoiceFailure("quotation %s is %s, only accepted quotations can be billed", quotation.GetString("number"), status)
	}

	quotationNumber := quotation.GetString("number")
	quotationTotals := TotalsFromRecord(quotation)
	deposit := findLiveInvoice(app, quotationID, InvoiceDeposit)

	kind := forcedKind
	if kind == "" {
		if deposit == nil {
			kind = InvoiceDeposit
		} else {
			kind = InvoiceFinal
		}
	}

	var (
		invTotals     QuotationTotals
		summary       string
		depositAmount decimal.Decimal
		depositRef    string
	)

	switch kind {
	case InvoiceDeposit:
		if deposit != nil {
			return invoiceFailure("quotation %s already has deposit invoice %s", quotationNumber, deposit.GetString("number"))
		}
		invTotals = DeriveDepositTotals(quotationTotals, depositPercent)
		depositAmount = invTotals.GrossTotal
		summary = fmt.Sprintf("Deposit of %s%% on quotation %s", depositPercent.String(), quotationNumber)

	case InvoiceFinal:
		if final := findLiveInvoice(app, quotationID, InvoiceFinal); final != nil {
			return invoiceFailure("quotation %s is already fully billed by invoice %s", quotationNumber, final.GetString("number"))
		}
		// The deposit record is the source of truth for the percent; the
		// caller's value only applies when deriving a deposit invoice.
		var depositGross decimal.Decimal
		depositPercent = decimal.Zero
		if deposit != nil {
			depositGross = decimal.NewFromFloat(deposit.GetFloat("gross_total"))
			depositRef = deposit.Id
			depositPercent = decimal.NewFromFloat(deposit.GetFloat("deposit_percent"))
		}
		invTotals = DeriveFinalTotals(quotationTotals, depositGross)
		depositAmount = depositGross
		summary = fmt.Sprintf("Final invoice for quotation %s, less deposit of %s", quotationNumber, depositGross.StringFixed(2))

	case InvoiceFull:
		invTotals = quotationTotals
		summary = fmt.Sprintf("Invoice for quotation %s", quotationNumber)

	default:
		return invoiceFailure("unknown invoice kind %q", forcedKind)
	}

	var result InvoiceResult
	err = app.RunInTransaction(func(tx core.App) error {
		number, err := NextDocumentNumber(tx, InvoiceSequence, numberPrefix, time.Now())
		if err != nil {
			return err
		}

		col, err := tx.FindCollectionByNameOrId("invoices")
		if err != nil {
			return fmt.Errorf("invoices collection missing: %w", err)
		}

		rec := core.NewRecord(col)
		rec.Set("number", number)
		rec.Set("kind", string(kind))
		rec.Set("status", InvoiceDraftStatus)
		rec.Set("quotation", quotationID)
		rec.Set("customer", quotation.GetString("customer"))
		rec.Set("project", quotation.GetString("project"))
		rec.Set("summary_text", summary)
		setTotals(rec, invTotals)

		if kind == InvoiceDeposit || kind == InvoiceFinal {
			rec.Set("deposit_percent", depositPercent.InexactFloat64())
			rec.Set("deposit_amount", depositAmount.InexactFloat64())
		}
		if depositRef != "" {
			rec.Set("deposit_invoice", depositRef)
		}
		if kind == InvoiceFull {
			rec.Set("line_items", types.JSONRaw(quotation.GetString("line_items")))
		}

		if err := AppendHistory(rec, actor, "invoice created from quotation "+quotationNumber); err != nil {
			return err
		}
		if err := tx.Save(rec); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}

		if err := AppendHistory(quotation, actor, fmt.Sprintf("%s invoice %s issued", kind, number)); err != nil {
			return err
		}
		if err := tx.Save(quotation); err != nil {
			return fmt.Errorf("update quotation history: %w", err)
		}

		result = InvoiceResult{Success: true, InvoiceID: rec.Id, Number: number, Kind: kind}
		return nil
	})
	if err != nil {
		return invoiceFailure("create invoice: %v", err)
	}
	return result
}

// InvoiceDraft is the input for a standalone full invoice that is not
// derived from a quotation.
type InvoiceDraft struct {
	CustomerID      string
	ProjectID       string
	Items           []LineItem
	FactorSelection FactorSelection
	DiscountPercent decimal.Decimal
	TaxOverride     decimal.NullDecimal
	PaymentTerms    string
}

// CreateInvoice persists a standalone full invoice priced from its own
// line items.
func CreateInvoice(app core.App, d InvoiceDraft, cfg RateConfiguration, numberPrefix, actor string) InvoiceResult {
	if d.CustomerID == "" {
		return invoiceFailure("a customer must be selected")
	}
	if len(d.Items) == 0 {
		return invoiceFailure("at least one line item is required")
	}

	items := SortLineItems(ApplyLaborFactors(d.Items, cfg, d.FactorSelection))
	totals := CalculateOfferTotals(items, d.DiscountPercent, d.TaxOverride, cfg)

	var result InvoiceResult
	err := app.RunInTransaction(func(tx core.App) error {
		number, err := NextDocumentNumber(tx, InvoiceSequence, numberPrefix, time.Now())
		if err != nil {
			return err
		}
		col, err := tx.FindCollectionByNameOrId("invoices")
		if err != nil {
			return fmt.Errorf("invoices collection missing: %w", err)
		}

		rec := core.NewRecord(col)
		rec.Set("number", number)
		rec.Set("kind", string(InvoiceFull))
		rec.Set("status", InvoiceDraftStatus)
		rec.Set("customer", d.CustomerID)
		rec.Set("project", d.ProjectID)
		rec.Set("payment_terms", d.PaymentTerms)
		setTotals(rec, totals)

		rawItems, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("marshal line items: %w", err)
		}
		rec.Set("line_items", types.JSONRaw(rawItems))

		if err := AppendHistory(rec, actor, "invoice created"); err != nil {
			return err
		}
		if err := tx.Save(rec); err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}

		result = InvoiceResult{Success: true, InvoiceID: rec.Id, Number: number, Kind: InvoiceFull}
		return nil
	})
	if err != nil {
		return invoiceFailure("create invoice: %v", err)
	}
	return result
}

// UpdateInvoiceStatus moves an invoice through its lifecycle and records
// the change in the history.
func UpdateInvoiceStatus(app core.App, id, status, actor string) InvoiceResult {
	if !invoiceStatuses[status] {
		return invoiceFailure("unknown invoice status %q", status)
	}
	rec, err := app.FindRecordById("invoices", id)
	if err != nil {
		return invoiceFailure("invoice %s not found", id)
	}
	if rec.GetString("status") == status {
		return InvoiceResult{Success: true, InvoiceID: rec.Id, Number: rec.GetString("number")}
	}

	rec.Set("status", status)
	if err := AppendHistory(rec, actor, "status changed to "+status); err != nil {
		return invoiceFailure("update status: %v", err)
	}
	if err := app.Save(rec); err != nil {
		return invoiceFailure("save invoice: %v", err)
	}
	return InvoiceResult{Success: true, InvoiceID: rec.Id, Number: rec.GetString("number"), Kind: InvoiceKind(rec.GetString("kind"))}
}
