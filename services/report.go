package services

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// QuotationBookRow is one line of the quotation book report.
type QuotationBookRow struct {
	Number     string
	Date       string
	Customer   string
	Status     string
	NetTotal   float64
	TaxAmount  float64
	GrossTotal float64
}

// QuotationBookData holds everything needed to render the quotation book.
type QuotationBookData struct {
	Title         string
	GeneratedDate string
	Rows          []QuotationBookRow
	TotalNet      float64
	TotalTax      float64
	TotalGross    float64
}

// BuildQuotationBook assembles the quotation register from the store,
// newest documents first. Unresolvable customer references degrade to an
// empty name instead of failing the report.
func BuildQuotationBook(app core.App, generatedDate string) (QuotationBookData, error) {
	quotations, err := app.FindRecordsByFilter(
		"quotations",
		"id != ''",
		"-created",
		0,
		0,
		nil,
	)
	if err != nil {
		return QuotationBookData{}, fmt.Errorf("quotation book: load quotations: %w", err)
	}

	data := QuotationBookData{
		Title:         "Quotation Book",
		GeneratedDate: generatedDate,
	}

	var totalNet, totalTax, totalGross decimal.Decimal
	for _, rec := range quotations {
		customerName := ""
		if customerID := rec.GetString("customer"); customerID != "" {
			customer, err := app.FindRecordById("customers", customerID)
			if err != nil {
				log.Printf("quotation book: could not resolve customer %s: %v", customerID, err)
			} else {
				customerName = customer.GetString("name")
			}
		}

		row := QuotationBookRow{
			Number:     rec.GetString("number"),
			Date:       rec.GetDateTime("created").Time().Format("2006-01-02"),
			Customer:   customerName,
			Status:     rec.GetString("status"),
			NetTotal:   rec.GetFloat("net_total"),
			TaxAmount:  rec.GetFloat("tax_amount"),
			GrossTotal: rec.GetFloat("gross_total"),
		}
		data.Rows = append(data.Rows, row)

		totalNet = totalNet.Add(decimal.NewFromFloat(row.NetTotal))
		totalTax = totalTax.Add(decimal.NewFromFloat(row.TaxAmount))
		totalGross = totalGross.Add(decimal.NewFromFloat(row.GrossTotal))
	}

	data.TotalNet = totalNet.InexactFloat64()
	data.TotalTax = totalTax.InexactFloat64()
	data.TotalGross = totalGross.InexactFloat64()
	return data, nil
}
