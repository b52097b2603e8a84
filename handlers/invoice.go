package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"solarmanager/services"
)

func HandleInvoiceList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("invoices", "id != ''", "-created", 0, 0, nil)
		if err != nil {
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return e.JSON(http.StatusOK, records)
	}
}

// HandleInvoiceFromQuotation derives the next invoice (deposit, then
// final) for an accepted quotation. The kind can be forced for correction
// scenarios; the deposit percentage falls back to the configured default.
func HandleInvoiceFromQuotation(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quotationID := e.Request.PathValue("id")

		var req struct {
			DepositPercent *float64 `json:"deposit_percent"`
			Kind           string   `json:"kind"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}

		pct := depositPercent()
		if req.DepositPercent != nil {
			pct = *req.DepositPercent
		}

		result := services.CreateInvoiceFromQuotation(
			app,
			quotationID,
			decimal.NewFromFloat(pct),
			services.InvoiceKind(req.Kind),
			invoicePrefix(),
			actorFrom(e),
		)
		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}
		return e.JSON(status, result)
	}
}

func HandleInvoiceStatus(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		var req struct {
			Status string `json:"status"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}

		result := services.UpdateInvoiceStatus(app, id, req.Status, actorFrom(e))
		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}
		return e.JSON(status, result)
	}
}
