package services

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// MaterialLine is one entry of a service position's bill of materials.
type MaterialLine struct {
	MaterialRef string          `json:"material_ref"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// LaborLine is one entry of a service position's bill of labor.
type LaborLine struct {
	Role    string          `json:"role"`
	Minutes decimal.Decimal `json:"minutes"`
}

// CalculatedPrices is the cached cost breakdown of a service position.
// EK is the purchase cost, VK the marked-up sale cost.
type CalculatedPrices struct {
	MaterialCostEK decimal.Decimal `json:"material_cost_ek"`
	MaterialCostVK decimal.Decimal `json:"material_cost_vk"`
	LaborCost      decimal.Decimal `json:"labor_cost"`
	UnitPriceNet   decimal.Decimal `json:"unit_price_net"`
}

// PriceLookup resolves a material reference to its purchase price.
type PriceLookup interface {
	Resolve(materialRef string) (decimal.Decimal, bool)
}

// MapPriceLookup is an in-memory PriceLookup, mainly for tests and seeds.
type MapPriceLookup map[string]decimal.Decimal

func (m MapPriceLookup) Resolve(materialRef string) (decimal.Decimal, bool) {
	p, ok := m[materialRef]
	return p, ok
}

// RecordPriceLookup resolves material prices from the materials collection,
// by record id first and article number second.
type RecordPriceLookup struct {
	app core.App
}

func NewRecordPriceLookup(app core.App) *RecordPriceLookup {
	return &RecordPriceLookup{app: app}
}

func (l *RecordPriceLookup) Resolve(materialRef string) (decimal.Decimal, bool) {
	rec, err := l.app.FindRecordById("materials", materialRef)
	if err != nil {
		rec, err = l.app.FindFirstRecordByFilter(
			"materials",
			"article_number = {:ref}",
			map[string]any{"ref": materialRef},
		)
		if err != nil {
			return decimal.Zero, false
		}
	}
	return decimal.NewFromFloat(rec.GetFloat("purchase_price")), true
}

// CalculateServicePosition computes the cost breakdown for one catalog
// entry. Unresolvable materials contribute zero cost instead of failing,
// since catalog data may be incomplete while a quotation is edited. A zero
// markupPercent falls back to the configured default markup.
func CalculateServicePosition(materials []MaterialLine, labor []LaborLine, lookup PriceLookup, markupPercent decimal.Decimal, cfg RateConfiguration) CalculatedPrices {
	if markupPercent.IsZero() {
		markupPercent = cfg.DefaultMarkupPercent
	}
	markupFactor := one.Add(markupPercent.Div(hundred))

	var costEK, costVK decimal.Decimal
	for _, m := range materials {
		price, ok := lookup.Resolve(m.MaterialRef)
		if !ok {
			continue
		}
		costEK = costEK.Add(price.Mul(m.Quantity))
		costVK = costVK.Add(price.Mul(markupFactor).Mul(m.Quantity))
	}

	var laborCost decimal.Decimal
	sixty := decimal.NewFromInt(60)
	for _, l := range labor {
		hours := l.Minutes.Div(sixty)
		laborCost = laborCost.Add(hours.Mul(cfg.HourlyRate(l.Role)))
	}

	costEK = roundCents(costEK)
	costVK = roundCents(costVK)
	laborCost = roundCents(laborCost)

	return CalculatedPrices{
		MaterialCostEK: costEK,
		MaterialCostVK: costVK,
		LaborCost:      laborCost,
		UnitPriceNet:   costVK.Add(laborCost),
	}
}

// PositionInfo is the engine-facing view of a service_positions record.
type PositionInfo struct {
	ID              string
	PositionNumber  string
	Name            string
	Category        string
	Unit            string
	Prices          CalculatedPrices
	Replaces        []string
	DefaultPosition bool
}

// PositionFromRecord reads a service_positions record into a PositionInfo.
func PositionFromRecord(rec *core.Record) (PositionInfo, error) {
	info := PositionInfo{
		ID:              rec.Id,
		PositionNumber:  rec.GetString("position_number"),
		Name:            rec.GetString("name"),
		Category:        rec.GetString("category"),
		Unit:            rec.GetString("unit"),
		DefaultPosition: rec.GetBool("default_position"),
	}
	if raw := rec.GetString("calculated"); raw != "" && raw != "null" {
		if err := rec.UnmarshalJSONField("calculated", &info.Prices); err != nil {
			return info, fmt.Errorf("position %s: invalid calculated prices: %w", rec.Id, err)
		}
	}
	if raw := rec.GetString("replaces"); raw != "" && raw != "null" {
		if err := rec.UnmarshalJSONField("replaces", &info.Replaces); err != nil {
			return info, fmt.Errorf("position %s: invalid replaces list: %w", rec.Id, err)
		}
	}
	return info, nil
}

// RecalculatePosition recomputes and stores the cached price breakdown of a
// service_positions record. Called whenever the position's recipe, its
// materials or the rate configuration changed.
func RecalculatePosition(app core.App, rec *core.Record, lookup PriceLookup, cfg RateConfiguration) (CalculatedPrices, error) {
	var materials []MaterialLine
	var labor []LaborLine
	if raw := rec.GetString("bill_of_materials"); raw != "" && raw != "null" {
		if err := rec.UnmarshalJSONField("bill_of_materials", &materials); err != nil {
			return CalculatedPrices{}, fmt.Errorf("position %s: invalid bill_of_materials: %w", rec.Id, err)
		}
	}
	if raw := rec.GetString("bill_of_labor"); raw != "" && raw != "null" {
		if err := rec.UnmarshalJSONField("bill_of_labor", &labor); err != nil {
			return CalculatedPrices{}, fmt.Errorf("position %s: invalid bill_of_labor: %w", rec.Id, err)
		}
	}

	prices := CalculateServicePosition(
		materials,
		labor,
		lookup,
		decimal.NewFromFloat(rec.GetFloat("markup_percent")),
		cfg,
	)

	raw, err := json.Marshal(prices)
	if err != nil {
		return prices, fmt.Errorf("position %s: marshal calculated prices: %w", rec.Id, err)
	}
	rec.Set("calculated", types.JSONRaw(raw))
	rec.Set("prices_stale", false)
	if err := app.Save(rec); err != nil {
		return prices, fmt.Errorf("position %s: save: %w", rec.Id, err)
	}
	return prices, nil
}
