package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"

	"solarmanager/services"
	"solarmanager/testhelpers"
)

func TestHandlePositionRecalculate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SeedDefaults(t, app)
	material := testhelpers.CreateTestMaterial(t, app, "MOD-TEST", 100)

	pos := testhelpers.CreateTestPosition(t, app, "PV-REC-01", "module_mounting", "Stk",
		services.CalculatedPrices{})
	pos.Set("bill_of_materials", types.JSONRaw(`[{"material_ref": "`+material.Id+`", "quantity": 2}]`))
	pos.Set("bill_of_labor", types.JSONRaw(`[{"role": "roofer", "minutes": 30}]`))
	if err := app.Save(pos); err != nil {
		t.Fatalf("save position: %v", err)
	}

	handler := HandlePositionRecalculate(app)
	req := httptest.NewRequest(http.MethodPost, "/api/solar/positions/"+pos.Id+"/recalculate", nil)
	req.SetPathValue("id", pos.Id)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var prices services.CalculatedPrices
	if err := json.Unmarshal(rec.Body.Bytes(), &prices); err != nil {
		t.Fatalf("decode prices: %v", err)
	}
	// 2 * 100 EK, 15% default markup, 30 min roofer at 64/h = 32.
	if !prices.MaterialCostEK.Equal(decimal.NewFromInt(200)) {
		t.Errorf("MaterialCostEK = %s, want 200", prices.MaterialCostEK)
	}
	if !prices.MaterialCostVK.Equal(decimal.NewFromInt(230)) {
		t.Errorf("MaterialCostVK = %s, want 230", prices.MaterialCostVK)
	}
	if !prices.LaborCost.Equal(decimal.NewFromInt(32)) {
		t.Errorf("LaborCost = %s, want 32", prices.LaborCost)
	}
	if !prices.UnitPriceNet.Equal(decimal.NewFromInt(262)) {
		t.Errorf("UnitPriceNet = %s, want 262", prices.UnitPriceNet)
	}

	saved, err := app.FindRecordById("service_positions", pos.Id)
	if err != nil {
		t.Fatal(err)
	}
	if saved.GetBool("prices_stale") {
		t.Error("prices_stale still set after recalculation")
	}
}

func TestHandlePositionRecalculate_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandlePositionRecalculate(app)
	req := httptest.NewRequest(http.MethodPost, "/api/solar/positions/missing/recalculate", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlePositionRecalculateStale(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SeedDefaults(t, app)

	fresh := testhelpers.CreateTestPosition(t, app, "PV-FRESH", "module_mounting", "Stk",
		services.CalculatedPrices{UnitPriceNet: decimal.NewFromInt(100)})

	stale := testhelpers.CreateTestPosition(t, app, "PV-STALE", "cabling", "m",
		services.CalculatedPrices{})
	stale.Set("prices_stale", true)
	stale.Set("bill_of_labor", types.JSONRaw(`[{"role": "electrician", "minutes": 60}]`))
	if err := app.Save(stale); err != nil {
		t.Fatalf("save stale position: %v", err)
	}

	handler := HandlePositionRecalculateStale(app)
	req := httptest.NewRequest(http.MethodPost, "/api/solar/positions/recalculate-stale", nil)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["updated"] != 1 {
		t.Errorf("updated = %d, want 1", resp["updated"])
	}

	reloaded, err := app.FindRecordById("service_positions", stale.Id)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.GetBool("prices_stale") {
		t.Error("stale flag not cleared")
	}
	info, err := services.PositionFromRecord(reloaded)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Prices.LaborCost.Equal(decimal.NewFromInt(72)) {
		t.Errorf("recalculated labor = %s, want 72", info.Prices.LaborCost)
	}

	// The fresh position is untouched.
	untouched, err := app.FindRecordById("service_positions", fresh.Id)
	if err != nil {
		t.Fatal(err)
	}
	freshInfo, err := services.PositionFromRecord(untouched)
	if err != nil {
		t.Fatal(err)
	}
	if !freshInfo.Prices.UnitPriceNet.Equal(decimal.NewFromInt(100)) {
		t.Errorf("fresh position prices changed: %s", freshInfo.Prices.UnitPriceNet)
	}
}

func TestHandlePositionList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestPosition(t, app, "PV-L-02", "module_mounting", "Stk", services.CalculatedPrices{})
	testhelpers.CreateTestPosition(t, app, "PV-L-01", "cabling", "m", services.CalculatedPrices{})

	handler := HandlePositionList(app)
	req := httptest.NewRequest(http.MethodGet, "/api/solar/positions", nil)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var listed []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d positions, want 2", len(listed))
	}
	if listed[0]["position_number"] != "PV-L-01" {
		t.Errorf("first position = %v, want PV-L-01 (sorted by number)", listed[0]["position_number"])
	}
}
