package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateQuotationBookExcel renders the quotation book as an Excel
// workbook and returns the file contents.
func GenerateQuotationBookExcel(data QuotationBookData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := data.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Quotations"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]

	widths := []float64{18, 12, 32, 12, 14, 14, 14}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: 4,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	// ── Title block ─────────────────────────────────────────────────────

	if err := f.SetCellValue(sheetName, "A1", data.Title); err != nil {
		return nil, fmt.Errorf("set title: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return nil, fmt.Errorf("style title: %w", err)
	}
	if err := f.SetCellValue(sheetName, "A2", "Generated: "+data.GeneratedDate); err != nil {
		return nil, fmt.Errorf("set generated date: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A2", "A2", subtitleStyle); err != nil {
		return nil, fmt.Errorf("style generated date: %w", err)
	}

	// ── Table header ────────────────────────────────────────────────────

	headers := []string{"Number", "Date", "Customer", "Status", "Net", "VAT", "Gross"}
	headerRow := 4
	for i, h := range headers {
		cell := fmt.Sprintf("%s%d", columns[i], headerRow)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("set header %s: %w", h, err)
		}
	}
	if err := f.SetCellStyle(sheetName,
		fmt.Sprintf("A%d", headerRow),
		fmt.Sprintf("%s%d", lastCol, headerRow),
		headerStyle,
	); err != nil {
		return nil, fmt.Errorf("style header row: %w", err)
	}

	// ── Rows ────────────────────────────────────────────────────────────

	rowNum := headerRow
	for _, r := range data.Rows {
		rowNum++
		values := []any{r.Number, r.Date, r.Customer, r.Status, r.NetTotal, r.TaxAmount, r.GrossTotal}
		for i, v := range values {
			cell := fmt.Sprintf("%s%d", columns[i], rowNum)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		if err := f.SetCellStyle(sheetName,
			fmt.Sprintf("E%d", rowNum),
			fmt.Sprintf("G%d", rowNum),
			moneyStyle,
		); err != nil {
			return nil, fmt.Errorf("style money cells row %d: %w", rowNum, err)
		}
	}

	// ── Totals row ──────────────────────────────────────────────────────

	rowNum += 2
	if err := f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), "Total"); err != nil {
		return nil, fmt.Errorf("set totals label: %w", err)
	}
	totals := []any{data.TotalNet, data.TotalTax, data.TotalGross}
	for i, v := range totals {
		cell := fmt.Sprintf("%s%d", columns[4+i], rowNum)
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return nil, fmt.Errorf("set total cell %s: %w", cell, err)
		}
	}
	if err := f.SetCellStyle(sheetName,
		fmt.Sprintf("D%d", rowNum),
		fmt.Sprintf("G%d", rowNum),
		totalStyle,
	); err != nil {
		return nil, fmt.Errorf("style totals row: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
