package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"siteledger/internal/domain"
	"siteledger/internal/report"
)

func TestUsageWorkbook(t *testing.T) {
	entries := []domain.UsageEntry{
		{Day: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), DocumentsParsed: 4, TotalCost: 0.12},
		{Day: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), DocumentsParsed: 2, TotalCost: 0.05},
	}

	buf, err := report.UsageWorkbook(entries)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Usage")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Day", "Documents Parsed", "Total Cost (USD)"}, rows[0])
	assert.Equal(t, "2025-03-14", rows[1][0])
	assert.Equal(t, "4", rows[1][1])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "6", rows[3][1])
}

func TestUsageWorkbook_EmptyRange(t *testing.T) {
	buf, err := report.UsageWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Usage")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Total", rows[1][0])
}
