package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testConfig() RateConfiguration {
	return RateConfiguration{
		HourlyRates: map[string]decimal.Decimal{
			"electrician": decimal.NewFromInt(60),
			"roofer":      decimal.NewFromInt(48),
			"helper":      decimal.NewFromInt(36),
		},
		DefaultMarkupPercent: decimal.NewFromInt(15),
		DefaultTaxRate:       decimal.NewFromInt(19),
		LaborFactors: map[Trade][]LaborFactor{
			TradeRoofMount: {
				{ID: "standard", Label: "Standard", Multiplier: decimal.NewFromInt(1)},
				{ID: "steep", Label: "Steep roof", Multiplier: decimal.NewFromFloat(1.2)},
			},
			TradeElectrical: {
				{ID: "standard", Label: "Standard", Multiplier: decimal.NewFromInt(1)},
				{ID: "old_building", Label: "Old building", Multiplier: decimal.NewFromFloat(1.3)},
			},
		},
		QuantityTiers: []QuantityTier{
			{MinQty: 0, MaxQty: 19, DiscountPercent: decimal.Zero, Label: "no discount"},
			{MinQty: 20, MaxQty: 39, DiscountPercent: decimal.NewFromInt(5), Label: "20-39"},
			{MinQty: 40, MaxQty: 0, DiscountPercent: decimal.NewFromInt(10), Label: "40+"},
		},
		TiersEnabled: true,
	}
}

func decEq(t *testing.T, got decimal.Decimal, want string, label string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", label, got.String(), want)
	}
}

func TestCalculateServicePosition(t *testing.T) {
	cfg := testConfig()
	lookup := MapPriceLookup{
		"MOD-440":  decimal.NewFromInt(100),
		"HOOK-STD": decimal.NewFromInt(10),
	}

	tests := []struct {
		name       string
		materials  []MaterialLine
		labor      []LaborLine
		markup     decimal.Decimal
		wantEK     string
		wantVK     string
		wantLabor  string
		wantUnit   string
	}{
		{
			name: "materials and labor with default markup",
			materials: []MaterialLine{
				{MaterialRef: "MOD-440", Quantity: decimal.NewFromInt(2)},
			},
			labor: []LaborLine{
				{Role: "electrician", Minutes: decimal.NewFromInt(60)},
			},
			markup:    decimal.Zero,
			wantEK:    "200",
			wantVK:    "230",
			wantLabor: "60",
			wantUnit:  "290",
		},
		{
			name: "explicit markup overrides default",
			materials: []MaterialLine{
				{MaterialRef: "MOD-440", Quantity: decimal.NewFromInt(1)},
			},
			markup:   decimal.NewFromInt(20),
			wantEK:   "100",
			wantVK:   "120",
			wantUnit: "120",
		},
		{
			name: "unresolved material contributes zero cost",
			materials: []MaterialLine{
				{MaterialRef: "UNKNOWN", Quantity: decimal.NewFromInt(5)},
				{MaterialRef: "HOOK-STD", Quantity: decimal.NewFromInt(2)},
			},
			markup:   decimal.Zero,
			wantEK:   "20",
			wantVK:   "23",
			wantUnit: "23",
		},
		{
			name: "fractional minutes convert to hours",
			labor: []LaborLine{
				{Role: "roofer", Minutes: decimal.NewFromInt(25)},
				{Role: "helper", Minutes: decimal.NewFromInt(15)},
			},
			markup:    decimal.Zero,
			wantLabor: "29", // 25/60*48 + 15/60*36 = 20 + 9
			wantUnit:  "29",
		},
		{
			name:     "unknown labor role is a soft zero",
			labor:    []LaborLine{{Role: "plumber", Minutes: decimal.NewFromInt(120)}},
			markup:   decimal.Zero,
			wantUnit: "0",
		},
		{
			name:     "empty recipe",
			markup:   decimal.Zero,
			wantUnit: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateServicePosition(tt.materials, tt.labor, lookup, tt.markup, cfg)
			if tt.wantEK != "" {
				decEq(t, got.MaterialCostEK, tt.wantEK, "MaterialCostEK")
			}
			if tt.wantVK != "" {
				decEq(t, got.MaterialCostVK, tt.wantVK, "MaterialCostVK")
			}
			if tt.wantLabor != "" {
				decEq(t, got.LaborCost, tt.wantLabor, "LaborCost")
			}
			decEq(t, got.UnitPriceNet, tt.wantUnit, "UnitPriceNet")
		})
	}
}

func TestCalculateServicePosition_UnitPriceIsVKPlusLabor(t *testing.T) {
	cfg := testConfig()
	lookup := MapPriceLookup{"MOD-440": decimal.NewFromFloat(142.5)}

	got := CalculateServicePosition(
		[]MaterialLine{{MaterialRef: "MOD-440", Quantity: decimal.NewFromInt(1)}},
		[]LaborLine{{Role: "roofer", Minutes: decimal.NewFromInt(25)}},
		lookup,
		decimal.Zero,
		cfg,
	)

	if !got.UnitPriceNet.Equal(got.MaterialCostVK.Add(got.LaborCost)) {
		t.Errorf("UnitPriceNet %s != MaterialCostVK %s + LaborCost %s",
			got.UnitPriceNet, got.MaterialCostVK, got.LaborCost)
	}
}

func TestRecalculatePosition(t *testing.T) {
	// Exercised through the store in handlers tests; here we verify the
	// pure recompute contract: same inputs, same cached output.
	cfg := testConfig()
	lookup := MapPriceLookup{"MOD-440": decimal.NewFromInt(100)}
	materials := []MaterialLine{{MaterialRef: "MOD-440", Quantity: decimal.NewFromInt(1)}}
	labor := []LaborLine{{Role: "helper", Minutes: decimal.NewFromInt(30)}}

	first := CalculateServicePosition(materials, labor, lookup, decimal.Zero, cfg)
	second := CalculateServicePosition(materials, labor, lookup, decimal.Zero, cfg)

	if !first.UnitPriceNet.Equal(second.UnitPriceNet) ||
		!first.MaterialCostEK.Equal(second.MaterialCostEK) ||
		!first.MaterialCostVK.Equal(second.MaterialCostVK) ||
		!first.LaborCost.Equal(second.LaborCost) {
		t.Errorf("recomputation is not deterministic: %+v vs %+v", first, second)
	}
}
