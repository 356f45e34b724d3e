package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// XLSParser reads the first sheet of a legacy BIFF workbook.
//
// Cells are taken as the library renders them: numeric cells have no
// trailing ".0" and text cells are kept verbatim.
type XLSParser struct{}

// Parse implements Parser.
func (XLSParser) Parse(data []byte) ([]Record, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return []Record{}, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return []Record{}, nil
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}

	if len(rows) == 0 || rows[0] == nil {
		return []Record{}, nil
	}
	return BuildRecords(rows[0], rows[1:]), nil
}

// sheetRow returns row i, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences the row without checking it exists.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
