package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTradeForCategory(t *testing.T) {
	tests := []struct {
		category string
		want     Trade
		ok       bool
	}{
		{"module_mounting", TradeRoofMount, true},
		{"substructure", TradeRoofMount, true},
		{"roof_work", TradeRoofMount, true},
		{"inverter", TradeElectrical, true},
		{"cabling", TradeElectrical, true},
		{"meter_cabinet", TradeElectrical, true},
		{"grid_connection", TradeElectrical, true},
		{"scaffolding", TradeScaffolding, true},
		{"other", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := TradeForCategory(tt.category)
		if got != tt.want || ok != tt.ok {
			t.Errorf("TradeForCategory(%q) = (%q, %v), want (%q, %v)",
				tt.category, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFactorFor(t *testing.T) {
	cfg := testConfig()

	t.Run("known factor", func(t *testing.T) {
		f, ok := cfg.FactorFor(TradeRoofMount, "steep")
		if !ok {
			t.Fatal("steep factor not found")
		}
		decEq(t, f.Multiplier, "1.2", "Multiplier")
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, ok := cfg.FactorFor(TradeRoofMount, "underwater"); ok {
			t.Error("expected lookup miss")
		}
	})

	t.Run("unknown trade", func(t *testing.T) {
		if _, ok := cfg.FactorFor("plumbing", "standard"); ok {
			t.Error("expected lookup miss")
		}
	})
}

func TestHourlyRate_UnknownRoleIsZero(t *testing.T) {
	cfg := testConfig()
	decEq(t, cfg.HourlyRate("roofer"), "48", "known role")
	decEq(t, cfg.HourlyRate("astronaut"), "0", "unknown role")
}

func TestValidateTiers(t *testing.T) {
	tier := func(min, max int) QuantityTier {
		return QuantityTier{MinQty: min, MaxQty: max, Label: "t"}
	}

	tests := []struct {
		name    string
		tiers   []QuantityTier
		wantErr bool
	}{
		{"defaults are valid", DefaultRateConfiguration().QuantityTiers, false},
		{"empty", nil, false},
		{"single open-ended", []QuantityTier{tier(0, 0)}, false},
		{"gap between tiers", []QuantityTier{tier(0, 19), tier(21, 0)}, true},
		{"overlap", []QuantityTier{tier(0, 19), tier(19, 0)}, true},
		{"max below min", []QuantityTier{tier(10, 5)}, true},
		{"open-ended not last", []QuantityTier{tier(0, 0), tier(1, 5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiers(tt.tiers)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTiers() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuantityTierContains(t *testing.T) {
	closed := QuantityTier{MinQty: 20, MaxQty: 39}
	open := QuantityTier{MinQty: 40, MaxQty: 0}

	if closed.Contains(19) || !closed.Contains(20) || !closed.Contains(39) || closed.Contains(40) {
		t.Error("closed tier bounds wrong")
	}
	if open.Contains(39) || !open.Contains(40) || !open.Contains(100000) {
		t.Error("open tier bounds wrong")
	}
}

func TestDefaultRateConfiguration(t *testing.T) {
	cfg := DefaultRateConfiguration()

	decEq(t, cfg.HourlyRate("electrician"), "72", "electrician rate")
	decEq(t, cfg.HourlyRate("roofer"), "64", "roofer rate")
	decEq(t, cfg.HourlyRate("helper"), "42", "helper rate")
	decEq(t, cfg.DefaultMarkupPercent, "15", "markup")
	decEq(t, cfg.DefaultTaxRate, "19", "tax rate")

	if !cfg.TiersEnabled {
		t.Error("tiers should be enabled by default")
	}
	if err := ValidateTiers(cfg.QuantityTiers); err != nil {
		t.Errorf("default tiers invalid: %v", err)
	}
	for _, trade := range []Trade{TradeRoofMount, TradeElectrical, TradeScaffolding} {
		f, ok := cfg.FactorFor(trade, "standard")
		if !ok {
			t.Errorf("trade %s has no standard factor", trade)
			continue
		}
		if !f.Multiplier.Equal(decimal.NewFromInt(1)) {
			t.Errorf("trade %s standard multiplier = %s, want 1", trade, f.Multiplier)
		}
	}
}
