// Package report renders usage data into downloadable spreadsheets.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"siteledger/internal/domain"
)

const usageSheet = "Usage"

// UsageWorkbook renders daily usage entries into an xlsx workbook with a
// totals row at the bottom.
func UsageWorkbook(entries []domain.UsageEntry) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName(f.GetSheetName(0), usageSheet)

	headers := []string{"Day", "Documents Parsed", "Total Cost (USD)"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("report.UsageWorkbook header cell: %w", err)
		}
		if err := f.SetCellValue(usageSheet, cell, h); err != nil {
			return nil, fmt.Errorf("report.UsageWorkbook header: %w", err)
		}
	}

	var totalDocs int
	var totalCost float64
	for i, e := range entries {
		row := i + 2
		if err := setRow(f, row,
			e.Day.Format("2006-01-02"), e.DocumentsParsed, e.TotalCost); err != nil {
			return nil, err
		}
		totalDocs += e.DocumentsParsed
		totalCost += e.TotalCost
	}

	if err := setRow(f, len(entries)+2, "Total", totalDocs, totalCost); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report.UsageWorkbook write: %w", err)
	}
	return buf, nil
}

func setRow(f *excelize.File, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("report.setRow cell: %w", err)
		}
		if err := f.SetCellValue(usageSheet, cell, v); err != nil {
			return fmt.Errorf("report.setRow: %w", err)
		}
	}
	return nil
}
