package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportAccumulatorXLSX renders the by-accumulator report as a spreadsheet:
// one row per accumulator and date, followed by per-accumulator subtotals
// and a grand total.
func ExportAccumulatorXLSX(rep AccumulatorReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Vendas por Acumulador"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Acumulador", "Descrição", "Data", "Valor"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	rowNum := 2
	for _, acc := range rep.Accumulators {
		for _, dv := range acc.Dates {
			if err := setRow(f, sheet, rowNum, acc.Code, acc.Description, dv.Date, dv.Value); err != nil {
				return nil, err
			}
			rowNum++
		}
		if err := setRow(f, sheet, rowNum, acc.Code, acc.Description, "Total", acc.Total); err != nil {
			return nil, err
		}
		rowNum++
	}
	if err := setRow(f, sheet, rowNum, "", "", "Total Geral", rep.GrandTotal); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(sheet, "A", "C", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "D", "D", 14); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// ExportFilename builds the download name for one competency.
func ExportFilename(competency string) string {
	if competency == "" {
		return "vendas-acumulador.xlsx"
	}
	return fmt.Sprintf("vendas-acumulador-%s.xlsx", competency)
}
