package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	reconcile "entsoe-feeder/internal/reconcile/domain"
)

// cellValue formats a fuel group value for a table cell; absent groups stay empty.
func cellValue(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

// BuildProductionPDF renders the production history of a country, newest first.
func BuildProductionPDF(countryCode string, records []reconcile.ProductionRecord, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Generation Mix")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Country: %s", countryCode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Source: %s", reconcile.Source))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Snapshots: %d", len(records)))
	pdf.Ln(8)

	groups := reconcile.FuelGroups()
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(40, 6, "Datetime (UTC)", "1", 0, "C", false, 0, "")
	for _, group := range groups {
		pdf.CellFormat(25, 6, string(group)+" (MW)", "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, record := range records {
		pdf.CellFormat(40, 6, record.Datetime.UTC().Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		for _, group := range groups {
			pdf.CellFormat(25, 6, cellValue(record.Production.Value(group)), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildProductionXLSX renders the production history of a country, newest first.
func BuildProductionXLSX(countryCode string, records []reconcile.ProductionRecord, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	recordsSheet := "production"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(recordsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Generation Mix")
	_ = f.SetCellValue(summarySheet, "A3", "Country")
	_ = f.SetCellValue(summarySheet, "B3", countryCode)
	_ = f.SetCellValue(summarySheet, "A4", "Source")
	_ = f.SetCellValue(summarySheet, "B4", reconcile.Source)
	_ = f.SetCellValue(summarySheet, "A5", "Generated")
	_ = f.SetCellValue(summarySheet, "B5", generatedAt.UTC().Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "Snapshots")
	_ = f.SetCellValue(summarySheet, "B6", len(records))

	groups := reconcile.FuelGroups()
	_ = f.SetCellValue(recordsSheet, "A1", "Datetime (UTC)")
	for i, group := range groups {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(recordsSheet, cell, string(group))
	}
	for i, record := range records {
		row := i + 2
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("A%d", row), record.Datetime.UTC().Format(time.RFC3339))
		for j, group := range groups {
			v := record.Production.Value(group)
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+2, row)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(recordsSheet, cell, *v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
