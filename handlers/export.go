package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"solarmanager/services"
)

// HandleQuotationBookExport streams the quotation register as an Excel
// workbook.
func HandleQuotationBookExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildQuotationBook(app, time.Now().Format("2006-01-02"))
		if err != nil {
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		content, err := services.GenerateQuotationBookExcel(data)
		if err != nil {
			return e.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		filename := fmt.Sprintf("quotation-book-%s.xlsx", data.GeneratedDate)
		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		_, err = e.Response.Write(content)
		return err
	}
}
