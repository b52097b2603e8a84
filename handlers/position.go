package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"solarmanager/services"
)

func HandlePositionList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("service_positions", "id != ''", "position_number", 0, 0, nil)
		if err != nil {
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return e.JSON(http.StatusOK, records)
	}
}

// HandlePositionRecalculate refreshes the cached price breakdown of one
// catalog position against current material prices and rates.
func HandlePositionRecalculate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("service_positions", e.Request.PathValue("id"))
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]string{"error": "position not found"})
		}

		cfg, err := loadConfig(e, app)
		if err != nil {
			return err
		}

		prices, err := services.RecalculatePosition(app, rec, services.NewRecordPriceLookup(app), cfg)
		if err != nil {
			return e.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		}
		return e.JSON(http.StatusOK, prices)
	}
}

// HandlePositionRecalculateStale refreshes every position flagged stale,
// e.g. after a material price import or a rate change.
func HandlePositionRecalculateStale(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("service_positions", "prices_stale = true", "", 0, 0, nil)
		if err != nil {
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		cfg, err := loadConfig(e, app)
		if err != nil {
			return err
		}

		lookup := services.NewRecordPriceLookup(app)
		updated := 0
		for _, rec := range records {
			if _, err := services.RecalculatePosition(app, rec, lookup, cfg); err != nil {
				log.Printf("recalculate: position %s: %v", rec.Id, err)
				continue
			}
			updated++
		}
		return e.JSON(http.StatusOK, map[string]int{"updated": updated})
	}
}
