// Package handlers exposes the calculation engine over thin JSON routes.
// All pricing rules live in the services package; handlers only decode
// requests, resolve catalog records and relay results.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"solarmanager/services"
)

// actorFrom resolves the history actor for the current request: the
// authenticated record when present, otherwise the X-Actor header,
// otherwise "system".
func actorFrom(e *core.RequestEvent) string {
	if e.Auth != nil {
		return e.Auth.Id
	}
	if actor := e.Request.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "system"
}

// quotationItemRequest selects one catalog position for a document.
type quotationItemRequest struct {
	PositionID      string  `json:"position_id"`
	Quantity        float64 `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// quotationRequest is the JSON body of quotation create/update calls.
type quotationRequest struct {
	Customer        string                 `json:"customer"`
	Project         string                 `json:"project"`
	Items           []quotationItemRequest `json:"items"`
	FactorSelection map[string]string      `json:"factor_selection"`
	DiscountPercent float64                `json:"discount_percent"`
	TaxRate         *float64               `json:"tax_rate"`
	ValidUntil      string                 `json:"valid_until"`
	PaymentTerms    string                 `json:"payment_terms"`
	DeliveryTerms   string                 `json:"delivery_terms"`
}

// buildDraft resolves the requested catalog positions into priced line
// items. Positions with a replaces list remove their superseded items; the
// removal count is reported back to the caller.
func buildDraft(app *pocketbase.PocketBase, req quotationRequest, cfg services.RateConfiguration) (services.QuotationDraft, int, error) {
	selection := make(services.FactorSelection, len(req.FactorSelection))
	for trade, factorID := range req.FactorSelection {
		selection[services.Trade(trade)] = factorID
	}

	draft := services.QuotationDraft{
		CustomerID:      req.Customer,
		ProjectID:       req.Project,
		FactorSelection: selection,
		DiscountPercent: decimal.NewFromFloat(req.DiscountPercent),
		ValidUntil:      req.ValidUntil,
		PaymentTerms:    req.PaymentTerms,
		DeliveryTerms:   req.DeliveryTerms,
	}
	if req.TaxRate != nil {
		draft.TaxOverride = decimal.NewNullDecimal(decimal.NewFromFloat(*req.TaxRate))
	}

	removed := 0
	for i, itemReq := range req.Items {
		rec, err := app.FindRecordById("service_positions", itemReq.PositionID)
		if err != nil {
			return draft, removed, fmt.Errorf("position %s not found", itemReq.PositionID)
		}
		pos, err := services.PositionFromRecord(rec)
		if err != nil {
			return draft, removed, err
		}

		var n int
		draft.Items, n = services.RemoveReplaced(draft.Items, pos.Replaces)
		removed += n

		item := services.NewLineItem(pos, decimal.NewFromFloat(itemReq.Quantity), cfg, selection)
		item.DiscountPercent = decimal.NewFromFloat(itemReq.DiscountPercent)
		item.SortOrder = i
		draft.Items = append(draft.Items, item)
	}
	return draft, removed, nil
}

// loadConfig fetches the rate configuration, degrading to defaults with a
// 500 only when the stored settings are unreadable.
func loadConfig(e *core.RequestEvent, app *pocketbase.PocketBase) (services.RateConfiguration, error) {
	cfg, err := services.LoadRateConfiguration(app)
	if err != nil {
		return cfg, e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return cfg, nil
}
