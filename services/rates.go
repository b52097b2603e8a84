// Package services implements the quotation and invoice calculation engine:
// service position pricing, labor factor adjustments, quantity-scale
// discounts, document totals and deposit/final invoice derivation.
package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// Trade groups catalog categories that share a labor factor selection.
type Trade string

const (
	TradeRoofMount   Trade = "roof_mount"
	TradeElectrical  Trade = "electrical"
	TradeScaffolding Trade = "scaffolding"
)

// categoryTrades maps a service position category to its trade. New
// categories are added here, not as new branches in calling code.
var categoryTrades = map[string]Trade{
	"module_mounting": TradeRoofMount,
	"substructure":    TradeRoofMount,
	"roof_work":       TradeRoofMount,
	"inverter":        TradeElectrical,
	"cabling":         TradeElectrical,
	"meter_cabinet":   TradeElectrical,
	"grid_connection": TradeElectrical,
	"scaffolding":     TradeScaffolding,
}

// TradeForCategory resolves the trade for a category tag. The second return
// value is false for categories without a labor factor selection.
func TradeForCategory(category string) (Trade, bool) {
	t, ok := categoryTrades[category]
	return t, ok
}

// LaborFactor is one selectable complexity multiplier for a trade.
// Multiplier 1.0 means the catalog labor cost applies unchanged.
type LaborFactor struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// QuantityTier is one volume discount bracket, keyed by module count.
// MaxQty 0 means the tier is open-ended.
type QuantityTier struct {
	MinQty          int             `json:"min_qty"`
	MaxQty          int             `json:"max_qty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Label           string          `json:"label"`
}

// Contains reports whether the given module count falls into this tier.
func (t QuantityTier) Contains(count int) bool {
	if count < t.MinQty {
		return false
	}
	return t.MaxQty == 0 || count <= t.MaxQty
}

// RateConfiguration holds every rate input the engine needs. It is loaded
// once and passed explicitly into each calculation call; the engine keeps
// no ambient configuration state.
type RateConfiguration struct {
	HourlyRates          map[string]decimal.Decimal `json:"hourly_rates"`
	DefaultMarkupPercent decimal.Decimal            `json:"default_markup_percent"`
	DefaultTaxRate       decimal.Decimal            `json:"default_tax_rate"`
	LaborFactors         map[Trade][]LaborFactor    `json:"labor_factors"`
	QuantityTiers        []QuantityTier             `json:"quantity_tiers"`
	TiersEnabled         bool                       `json:"tiers_enabled"`
}

// HourlyRate returns the rate for a labor role, or zero when the role is
// unknown. Missing roles are a soft failure so incomplete catalog data
// never aborts a calculation.
func (c RateConfiguration) HourlyRate(role string) decimal.Decimal {
	if r, ok := c.HourlyRates[role]; ok {
		return r
	}
	return decimal.Zero
}

// FactorFor looks up a labor factor by trade and id.
func (c RateConfiguration) FactorFor(trade Trade, id string) (LaborFactor, bool) {
	for _, f := range c.LaborFactors[trade] {
		if f.ID == id {
			return f, true
		}
	}
	return LaborFactor{}, false
}

// DefaultRateConfiguration returns the built-in rates used when no settings
// record exists yet. The same values are written by collections.Seed.
func DefaultRateConfiguration() RateConfiguration {
	return RateConfiguration{
		HourlyRates: map[string]decimal.Decimal{
			"electrician": decimal.NewFromInt(72),
			"roofer":      decimal.NewFromInt(64),
			"helper":      decimal.NewFromInt(42),
		},
		DefaultMarkupPercent: decimal.NewFromInt(15),
		DefaultTaxRate:       decimal.NewFromInt(19),
		LaborFactors: map[Trade][]LaborFactor{
			TradeRoofMount: {
				{ID: "standard", Label: "Pitched roof, standard", Multiplier: decimal.NewFromInt(1)},
				{ID: "steep", Label: "Steep roof (> 45°)", Multiplier: decimal.NewFromFloat(1.2)},
				{ID: "flat", Label: "Flat roof with ballast", Multiplier: decimal.NewFromFloat(1.1)},
			},
			TradeElectrical: {
				{ID: "standard", Label: "Standard installation", Multiplier: decimal.NewFromInt(1)},
				{ID: "old_building", Label: "Old building wiring", Multiplier: decimal.NewFromFloat(1.3)},
			},
			TradeScaffolding: {
				{ID: "standard", Label: "Up to 2 storeys", Multiplier: decimal.NewFromInt(1)},
				{ID: "high", Label: "Above 2 storeys", Multiplier: decimal.NewFromFloat(1.25)},
			},
		},
		QuantityTiers: []QuantityTier{
			{MinQty: 0, MaxQty: 19, DiscountPercent: decimal.Zero, Label: "up to 19 modules"},
			{MinQty: 20, MaxQty: 39, DiscountPercent: decimal.NewFromInt(5), Label: "20-39 modules"},
			{MinQty: 40, MaxQty: 0, DiscountPercent: decimal.NewFromInt(10), Label: "40+ modules"},
		},
		TiersEnabled: true,
	}
}

// LoadRateConfiguration reads the settings record from the store. When no
// record exists yet the built-in defaults are returned.
func LoadRateConfiguration(app core.App) (RateConfiguration, error) {
	rec, err := app.FindFirstRecordByFilter("settings", "id != ''")
	if err != nil {
		return DefaultRateConfiguration(), nil
	}

	cfg := RateConfiguration{
		DefaultMarkupPercent: decimal.NewFromFloat(rec.GetFloat("default_markup_percent")),
		DefaultTaxRate:       decimal.NewFromFloat(rec.GetFloat("default_tax_rate")),
		TiersEnabled:         rec.GetBool("tiers_enabled"),
	}
	if err := rec.UnmarshalJSONField("hourly_rates", &cfg.HourlyRates); err != nil {
		return cfg, fmt.Errorf("settings: invalid hourly_rates: %w", err)
	}
	if err := rec.UnmarshalJSONField("labor_factors", &cfg.LaborFactors); err != nil {
		return cfg, fmt.Errorf("settings: invalid labor_factors: %w", err)
	}
	if err := rec.UnmarshalJSONField("quantity_tiers", &cfg.QuantityTiers); err != nil {
		return cfg, fmt.Errorf("settings: invalid quantity_tiers: %w", err)
	}
	return cfg, nil
}

// ValidateTiers checks the configuration invariant on quantity tiers:
// ascending, contiguous and non-overlapping, with at most one open-ended
// tier at the end. The engine itself does not re-check this at runtime.
func ValidateTiers(tiers []QuantityTier) error {
	for i, t := range tiers {
		if t.MaxQty != 0 && t.MaxQty < t.MinQty {
			return fmt.Errorf("tier %q: max %d below min %d", t.Label, t.MaxQty, t.MinQty)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if prev.MaxQty == 0 {
			return fmt.Errorf("tier %q: follows an open-ended tier", t.Label)
		}
		if t.MinQty != prev.MaxQty+1 {
			return fmt.Errorf("tier %q: min %d does not continue previous max %d", t.Label, t.MinQty, prev.MaxQty)
		}
	}
	return nil
}
