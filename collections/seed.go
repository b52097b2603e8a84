package collections

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"

	"solarmanager/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type materialDef struct {
	articleNumber string
	name          string
	unit          string
	purchasePrice float64
	supplier      string
}

type positionDef struct {
	positionNumber  string
	name            string
	description     string
	category        string
	unit            string
	markupPercent   float64
	materials       []services.MaterialLine
	labor           []services.LaborLine
	replaces        []string
	defaultPosition bool
}

var seedMaterials = []materialDef{
	{"MOD-440", "PV module 440 Wp glass-glass", "Stk", 142.50, "SolarTrade GmbH"},
	{"RAIL-330", "Mounting rail 3.30 m", "Stk", 18.90, "AluFix"},
	{"HOOK-STD", "Roof hook stainless", "Stk", 6.40, "AluFix"},
	{"CLAMP-M", "Module clamp mid", "Stk", 1.85, "AluFix"},
	{"INV-10K", "Hybrid inverter 10 kW", "Stk", 1890.00, "SolarTrade GmbH"},
	{"OPT-01", "Power optimizer", "Stk", 48.00, "SolarTrade GmbH"},
	{"CAB-SOL-6", "Solar cable 6 mm²", "m", 1.12, "ElektroGross"},
	{"CAB-AC-5X6", "AC cable 5x6 mm²", "m", 4.30, "ElektroGross"},
	{"SLS-63", "SLS switch 63 A", "Stk", 52.00, "ElektroGross"},
	{"SPD-T2", "Surge protection type 2", "Stk", 148.00, "ElektroGross"},
}

var seedPositions = []positionDef{
	{
		positionNumber: "PV-MONT-STD",
		name:           "Module mounting incl. substructure",
		description:    "Mounting of one PV module on pitched roof incl. rails, hooks and clamps",
		category:       "module_mounting",
		unit:           "Stk",
		materials: []services.MaterialLine{
			{MaterialRef: "MOD-440", Quantity: decimal.NewFromInt(1)},
			{MaterialRef: "RAIL-330", Quantity: decimal.NewFromFloat(0.7)},
			{MaterialRef: "HOOK-STD", Quantity: decimal.NewFromInt(2)},
			{MaterialRef: "CLAMP-M", Quantity: decimal.NewFromInt(2)},
		},
		labor: []services.LaborLine{
			{Role: "roofer", Minutes: decimal.NewFromInt(25)},
			{Role: "helper", Minutes: decimal.NewFromInt(15)},
		},
	},
	{
		positionNumber: "PV-MONT-OPT",
		name:           "Module mounting with power optimizer",
		description:    "Module mounting incl. optimizer fitting; supersedes the standard mounting position",
		category:       "module_mounting",
		unit:           "Stk",
		materials: []services.MaterialLine{
			{MaterialRef: "MOD-440", Quantity: decimal.NewFromInt(1)},
			{MaterialRef: "OPT-01", Quantity: decimal.NewFromInt(1)},
			{MaterialRef: "RAIL-330", Quantity: decimal.NewFromFloat(0.7)},
			{MaterialRef: "HOOK-STD", Quantity: decimal.NewFromInt(2)},
			{MaterialRef: "CLAMP-M", Quantity: decimal.NewFromInt(2)},
		},
		labor: []services.LaborLine{
			{Role: "roofer", Minutes: decimal.NewFromInt(30)},
			{Role: "helper", Minutes: decimal.NewFromInt(15)},
		},
		replaces: []string{"PV-MONT-STD"},
	},
	{
		positionNumber: "EL-INV-10",
		name:           "Inverter installation up to 10 kW",
		category:       "inverter",
		unit:           "Stk",
		materials: []services.MaterialLine{
			{MaterialRef: "INV-10K", Quantity: decimal.NewFromInt(1)},
			{MaterialRef: "SPD-T2", Quantity: decimal.NewFromInt(1)},
		},
		labor: []services.LaborLine{
			{Role: "electrician", Minutes: decimal.NewFromInt(240)},
		},
	},
	{
		positionNumber: "EL-CAB-DC",
		name:           "DC cabling per string meter",
		category:       "cabling",
		unit:           "m",
		materials: []services.MaterialLine{
			{MaterialRef: "CAB-SOL-6", Quantity: decimal.NewFromInt(2)},
		},
		labor: []services.LaborLine{
			{Role: "electrician", Minutes: decimal.NewFromInt(4)},
		},
	},
	{
		positionNumber: "EL-METER",
		name:           "Meter cabinet rework",
		description:    "SLS switch, surge protection and grid operator documentation",
		category:       "meter_cabinet",
		unit:           "Stk",
		materials: []services.MaterialLine{
			{MaterialRef: "SLS-63", Quantity: decimal.NewFromInt(1)},
			{MaterialRef: "CAB-AC-5X6", Quantity: decimal.NewFromInt(15)},
		},
		labor: []services.LaborLine{
			{Role: "electrician", Minutes: decimal.NewFromInt(300)},
		},
		defaultPosition: true,
	},
	{
		positionNumber: "GER-STD",
		name:           "Scaffolding up to 2 storeys",
		category:       "scaffolding",
		unit:           "Stk",
		labor: []services.LaborLine{
			{Role: "helper", Minutes: decimal.NewFromInt(480)},
		},
		defaultPosition: true,
	},
}

// Seed writes the default rate configuration and a starter catalog. Safe
// to call on every startup: existing records are left untouched.
func Seed(app *pocketbase.PocketBase) error {
	if err := seedSettings(app); err != nil {
		return err
	}
	if err := seedMaterialCatalog(app); err != nil {
		return err
	}
	return seedPositionCatalog(app)
}

func seedSettings(app *pocketbase.PocketBase) error {
	existing, err := app.FindFirstRecordByFilter("settings", "id != ''")
	if err == nil && existing != nil {
		return nil
	}

	col, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		return fmt.Errorf("seed: settings collection missing: %w", err)
	}

	cfg := services.DefaultRateConfiguration()
	rec := core.NewRecord(col)
	rec.Set("default_markup_percent", cfg.DefaultMarkupPercent.InexactFloat64())
	rec.Set("default_tax_rate", cfg.DefaultTaxRate.InexactFloat64())
	rec.Set("tiers_enabled", cfg.TiersEnabled)
	if err := setJSON(rec, "hourly_rates", cfg.HourlyRates); err != nil {
		return err
	}
	if err := setJSON(rec, "labor_factors", cfg.LaborFactors); err != nil {
		return err
	}
	if err := setJSON(rec, "quantity_tiers", cfg.QuantityTiers); err != nil {
		return err
	}

	if err := app.Save(rec); err != nil {
		return fmt.Errorf("seed: save settings: %w", err)
	}
	log.Println("seed: default rate configuration created")
	return nil
}

func seedMaterialCatalog(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("materials")
	if err != nil {
		return fmt.Errorf("seed: materials collection missing: %w", err)
	}

	created := 0
	for _, def := range seedMaterials {
		existing, err := app.FindFirstRecordByFilter(
			"materials",
			"article_number = {:no}",
			map[string]any{"no": def.articleNumber},
		)
		if err == nil && existing != nil {
			continue
		}

		rec := core.NewRecord(col)
		rec.Set("article_number", def.articleNumber)
		rec.Set("name", def.name)
		rec.Set("unit", def.unit)
		rec.Set("purchase_price", def.purchasePrice)
		rec.Set("supplier", def.supplier)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save material %q: %w", def.articleNumber, err)
		}
		created++
	}
	if created > 0 {
		log.Printf("seed: %d material(s) created\n", created)
	}
	return nil
}

func seedPositionCatalog(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("service_positions")
	if err != nil {
		return fmt.Errorf("seed: service_positions collection missing: %w", err)
	}

	cfg := services.DefaultRateConfiguration()
	lookup := make(services.MapPriceLookup, len(seedMaterials))
	for _, m := range seedMaterials {
		lookup[m.articleNumber] = decimal.NewFromFloat(m.purchasePrice)
	}

	created := 0
	for _, def := range seedPositions {
		existing, err := app.FindFirstRecordByFilter(
			"service_positions",
			"position_number = {:no}",
			map[string]any{"no": def.positionNumber},
		)
		if err == nil && existing != nil {
			continue
		}

		prices := services.CalculateServicePosition(
			def.materials,
			def.labor,
			lookup,
			decimal.NewFromFloat(def.markupPercent),
			cfg,
		)

		rec := core.NewRecord(col)
		rec.Set("position_number", def.positionNumber)
		rec.Set("name", def.name)
		rec.Set("description", def.description)
		rec.Set("category", def.category)
		rec.Set("unit", def.unit)
		rec.Set("markup_percent", def.markupPercent)
		rec.Set("default_position", def.defaultPosition)
		rec.Set("prices_stale", false)
		if err := setJSON(rec, "bill_of_materials", def.materials); err != nil {
			return err
		}
		if err := setJSON(rec, "bill_of_labor", def.labor); err != nil {
			return err
		}
		if err := setJSON(rec, "replaces", def.replaces); err != nil {
			return err
		}
		if err := setJSON(rec, "calculated", prices); err != nil {
			return err
		}
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save position %q: %w", def.positionNumber, err)
		}
		created++
	}
	if created > 0 {
		log.Printf("seed: %d service position(s) created\n", created)
	}
	return nil
}

func setJSON(rec *core.Record, field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("seed: marshal %s: %w", field, err)
	}
	rec.Set(field, types.JSONRaw(raw))
	return nil
}
