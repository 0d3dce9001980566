package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet is a single tabular worksheet.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Workbook renders sheets into an XLSX document. The first sheet replaces the default one.
func Workbook(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("at least one sheet is required")
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	header, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E7EF"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := file.SetSheetName(file.GetSheetName(0), name); err != nil {
				return nil, err
			}
		} else if _, err := file.NewSheet(name); err != nil {
			return nil, err
		}

		if err := writeSheet(file, name, sheet, header); err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", name, err)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(file *excelize.File, name string, sheet Sheet, headerStyle int) error {
	if len(sheet.Headers) > 0 {
		headers := make([]interface{}, len(sheet.Headers))
		for i, h := range sheet.Headers {
			headers[i] = h
		}
		if err := file.SetSheetRow(name, "A1", &headers); err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return err
		}
		if err := file.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, err := excelize.ColumnNumberToName(len(headers))
		if err != nil {
			return err
		}
		if err := file.SetColWidth(name, "A", lastCol, 18); err != nil {
			return err
		}
	}

	offset := 1
	if len(sheet.Headers) == 0 {
		offset = 0
	}
	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1+offset)
		if err != nil {
			return err
		}
		values := row
		if err := file.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
