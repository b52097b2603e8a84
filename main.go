package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"solarmanager/collections"
	"solarmanager/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment defaults")
	}

	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateDocumentVersions(app); err != nil {
			log.Printf("Warning: document version migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Quotations ───────────────────────────────────────────
		se.Router.GET("/api/solar/quotations", handlers.HandleQuotationList(app))
		se.Router.POST("/api/solar/quotations", handlers.HandleQuotationCreate(app))
		se.Router.POST("/api/solar/quotations/{id}/save", handlers.HandleQuotationUpdate(app))
		se.Router.POST("/api/solar/quotations/{id}/status", handlers.HandleQuotationStatus(app))
		se.Router.DELETE("/api/solar/quotations/{id}", handlers.HandleQuotationDelete(app))

		// ── Invoices ─────────────────────────────────────────────
		se.Router.GET("/api/solar/invoices", handlers.HandleInvoiceList(app))
		se.Router.POST("/api/solar/quotations/{id}/invoice", handlers.HandleInvoiceFromQuotation(app))
		se.Router.POST("/api/solar/invoices/{id}/status", handlers.HandleInvoiceStatus(app))

		// ── Catalog ──────────────────────────────────────────────
		se.Router.GET("/api/solar/positions", handlers.HandlePositionList(app))
		se.Router.POST("/api/solar/positions/{id}/recalculate", handlers.HandlePositionRecalculate(app))
		se.Router.POST("/api/solar/positions/recalculate-stale", handlers.HandlePositionRecalculateStale(app))

		// ── Reporting ────────────────────────────────────────────
		se.Router.GET("/api/solar/statistics", handlers.HandleStatistics(app))
		se.Router.GET("/api/solar/export/quotation-book", handlers.HandleQuotationBookExport(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
