package services

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LineItem is one priced row of a quotation or invoice. OriginalUnitPrice
// and OriginalLaborCost are the catalog values before any labor factor was
// applied; factor changes always re-derive from them so repeated changes
// never compound.
type LineItem struct {
	PositionID        string          `json:"position_id"`
	PositionNumber    string          `json:"position_number"`
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	Unit              string          `json:"unit"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	OriginalUnitPrice decimal.Decimal `json:"original_unit_price"`
	OriginalLaborCost decimal.Decimal `json:"original_labor_cost"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	TotalNet          decimal.Decimal `json:"total_net"`
	Trade             Trade           `json:"trade,omitempty"`
	AppliedFactorID   string          `json:"applied_factor_id,omitempty"`
	AppliedMultiplier decimal.Decimal `json:"applied_multiplier"`
	PriceOverridden   bool            `json:"price_overridden"`
	DefaultPosition   bool            `json:"default_position"`
	SortOrder         int             `json:"sort_order"`
}

// LaborCost returns the per-unit labor cost with the applied factor.
func (li LineItem) LaborCost() decimal.Decimal {
	if li.AppliedMultiplier.IsZero() || li.AppliedMultiplier.Equal(one) {
		return li.OriginalLaborCost
	}
	return roundCents(li.OriginalLaborCost.Mul(li.AppliedMultiplier))
}

// FactorSelection holds the currently selected labor factor id per trade.
type FactorSelection map[Trade]string

// NewLineItem builds a priced line item from a catalog position and applies
// the selected labor factor for the position's trade.
func NewLineItem(pos PositionInfo, qty decimal.Decimal, cfg RateConfiguration, sel FactorSelection) LineItem {
	item := LineItem{
		PositionID:        pos.ID,
		PositionNumber:    pos.PositionNumber,
		Description:       pos.Name,
		Quantity:          qty,
		Unit:              pos.Unit,
		UnitPrice:         pos.Prices.UnitPriceNet,
		OriginalUnitPrice: pos.Prices.UnitPriceNet,
		OriginalLaborCost: pos.Prices.LaborCost,
		AppliedMultiplier: one,
		DefaultPosition:   pos.DefaultPosition,
	}
	if trade, ok := TradeForCategory(pos.Category); ok {
		item.Trade = trade
	}
	applyFactor(&item, cfg, sel)
	item.TotalNet = lineTotal(item)
	return item
}

// applyFactor re-derives the unit price from the original catalog values
// and the selected factor. Material cost is never affected; only the labor
// share of the unit price shifts.
func applyFactor(item *LineItem, cfg RateConfiguration, sel FactorSelection) {
	item.AppliedFactorID = ""
	item.AppliedMultiplier = one
	item.UnitPrice = item.OriginalUnitPrice
	item.PriceOverridden = false

	if item.Trade == "" {
		return
	}
	id, ok := sel[item.Trade]
	if !ok {
		return
	}
	factor, ok := cfg.FactorFor(item.Trade, id)
	if !ok {
		return
	}

	adjustedLabor := roundCents(item.OriginalLaborCost.Mul(factor.Multiplier))
	item.UnitPrice = item.OriginalUnitPrice.Add(adjustedLabor.Sub(item.OriginalLaborCost))
	item.AppliedFactorID = factor.ID
	item.AppliedMultiplier = factor.Multiplier
	item.PriceOverridden = !factor.Multiplier.Equal(one)
}

// ApplyLaborFactors re-prices every line item for the given factor
// selection. The recomputation is a full pass from each item's original
// labor cost, so it is idempotent and safe to run after any number of
// selection changes in the same update cycle.
func ApplyLaborFactors(items []LineItem, cfg RateConfiguration, sel FactorSelection) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		applyFactor(&item, cfg, sel)
		item.TotalNet = lineTotal(item)
		out[i] = item
	}
	return out
}

// lineTotal computes the quantity-scaled, line-discounted net total.
func lineTotal(item LineItem) decimal.Decimal {
	gross := item.UnitPrice.Mul(item.Quantity)
	if !item.DiscountPercent.IsZero() {
		gross = gross.Sub(percentOf(gross, item.DiscountPercent))
	}
	return roundCents(gross)
}

// RemoveReplaced drops every line item whose position appears in the given
// replaces list and reports how many were removed. Matching is by position
// id or position number.
func RemoveReplaced(items []LineItem, replaces []string) ([]LineItem, int) {
	if len(replaces) == 0 {
		return items, 0
	}
	replaced := make(map[string]bool, len(replaces))
	for _, ref := range replaces {
		replaced[ref] = true
	}

	kept := items[:0:0]
	removed := 0
	for _, item := range items {
		if replaced[item.PositionID] || replaced[item.PositionNumber] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}

// SortLineItems orders items by sort order, with default (mandatory)
// positions always after manually added ones. The sort is stable so equal
// items keep their insertion order.
func SortLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DefaultPosition != out[j].DefaultPosition {
			return !out[i].DefaultPosition
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}
