package services

import "github.com/shopspring/decimal"

// QuotationTotals is the aggregated money breakdown of a document. It is a
// pure function of the line items and the discount/tax inputs and is never
// stored without the items that produced it.
type QuotationTotals struct {
	SubtotalNet         decimal.Decimal `json:"subtotal_net"`
	LaborReductionTotal decimal.Decimal `json:"labor_reduction_total"`
	DiscountPercent     decimal.Decimal `json:"discount_percent"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	NetTotal            decimal.Decimal `json:"net_total"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	GrossTotal          decimal.Decimal `json:"gross_total"`
	ModuleCount         int             `json:"module_count"`
	AppliedTier         string          `json:"applied_tier"`
}

// pieceUnits are the unit spellings that count towards the module total.
var pieceUnits = map[string]bool{
	"piece": true,
	"pcs":   true,
	"Stk":   true,
	"Stück": true,
}

// CountModules counts the quantity-scale qualifying units: roof-mount line
// items priced per piece.
func CountModules(items []LineItem) int {
	count := 0
	for _, item := range items {
		if item.Trade != TradeRoofMount || !pieceUnits[item.Unit] {
			continue
		}
		count += int(item.Quantity.IntPart())
	}
	return count
}

// TierFor finds the quantity tier containing the given module count. A
// count exactly at a tier's min boundary belongs to that tier; the
// configuration invariant (contiguous, non-overlapping tiers) guarantees
// at most one match.
func TierFor(tiers []QuantityTier, count int) (QuantityTier, bool) {
	for _, t := range tiers {
		if t.Contains(count) {
			return t, true
		}
	}
	return QuantityTier{}, false
}

// CalculateOfferTotals aggregates line items into document totals. The
// quantity-scale reduction applies to labor cost only, material cost is
// exempt. taxOverride replaces the configured default tax rate when valid.
//
// Discount percentages outside [0,100] are accepted as-is and simply
// produce negative or above-total effects.
func CalculateOfferTotals(items []LineItem, discountPercent decimal.Decimal, taxOverride decimal.NullDecimal, cfg RateConfiguration) QuotationTotals {
	taxRate := cfg.DefaultTaxRate
	if taxOverride.Valid {
		taxRate = taxOverride.Decimal
	}

	totals := QuotationTotals{
		DiscountPercent: discountPercent,
		TaxRate:         taxRate,
		ModuleCount:     CountModules(items),
	}

	var tierPercent decimal.Decimal
	if cfg.TiersEnabled {
		if tier, ok := TierFor(cfg.QuantityTiers, totals.ModuleCount); ok {
			tierPercent = tier.DiscountPercent
			totals.AppliedTier = tier.Label
		}
	}

	var subtotal, laborReduction decimal.Decimal
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalNet)
		if item.Trade == TradeRoofMount && !tierPercent.IsZero() {
			reduction := percentOf(item.LaborCost().Mul(item.Quantity), tierPercent)
			laborReduction = laborReduction.Add(roundCents(reduction))
		}
	}

	totals.SubtotalNet = roundCents(subtotal)
	totals.LaborReductionTotal = roundCents(laborReduction)

	afterScale := totals.SubtotalNet.Sub(totals.LaborReductionTotal)
	totals.DiscountAmount = roundCents(percentOf(afterScale, discountPercent))
	totals.NetTotal = afterScale.Sub(totals.DiscountAmount)
	totals.TaxAmount = roundCents(percentOf(totals.NetTotal, taxRate))
	totals.GrossTotal = totals.NetTotal.Add(totals.TaxAmount)
	return totals
}
