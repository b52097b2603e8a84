package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"solarmanager/services"
)

// quotationResponse augments a SaveResult with the number of line items
// that were removed by replaces lists during pricing.
type quotationResponse struct {
	services.SaveResult
	RemovedItems int `json:"removed_items,omitempty"`
}

func HandleQuotationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("quotations", "id != ''", "-created", 0, 0, nil)
		if err != nil {
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return e.JSON(http.StatusOK, records)
	}
}

func HandleQuotationCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req quotationRequest
		if err := e.BindBody(&req); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}

		cfg, err := loadConfig(e, app)
		if err != nil {
			return err
		}

		draft, removed, err := buildDraft(app, req, cfg)
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		result := services.CreateQuotation(app, draft, cfg, quotationPrefix(), actorFrom(e))
		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}
		return e.JSON(status, quotationResponse{SaveResult: result, RemovedItems: removed})
	}
}

func HandleQuotationUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		var req quotationRequest
		if err := e.BindBody(&req); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}

		cfg, err := loadConfig(e, app)
		if err != nil {
			return err
		}

		draft, removed, err := buildDraft(app, req, cfg)
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		result := services.UpdateQuotation(app, id, draft, cfg, actorFrom(e))
		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}
		return e.JSON(status, quotationResponse{SaveResult: result, RemovedItems: removed})
	}
}

func HandleQuotationStatus(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		var req struct {
			Status string `json:"status"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}

		result := services.UpdateQuotationStatus(app, id, req.Status, actorFrom(e))
		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}
		return e.JSON(status, result)
	}
}

func HandleQuotationDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		result := services.DeleteQuotation(app, e.Request.PathValue("id"))
		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}
		return e.JSON(status, result)
	}
}
