package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"traderBot/internal/domain"
)

func sampleMap() domain.DailyPnLMap {
	return domain.DailyPnLMap{
		"2025-06-03": {Date: "2025-06-03", PnL: 120.5, TradeCount: 3},
		"2025-06-01": {Date: "2025-06-01", PnL: -40, TradeCount: 2},
		"2025-06-02": {Date: "2025-06-02", PnL: 10, TradeCount: 1},
	}
}

func TestBuildRows(t *testing.T) {
	rows := buildRows(sampleMap(), 0)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-06-01", rows[0].Date)
	assert.InDelta(t, -30.0, rows[1].Cumulative, 1e-9)
	assert.InDelta(t, 90.5, rows[2].Cumulative, 1e-9)

	recent := buildRows(sampleMap(), 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "2025-06-02", recent[0].Date)
	assert.InDelta(t, 130.5, recent[1].Cumulative, 1e-9)

	assert.Empty(t, buildRows(domain.DailyPnLMap{}, 0))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, buildRows(sampleMap(), 0))
	out := buf.String()
	assert.Contains(t, out, "DAILY REALIZED P/L")
	assert.Contains(t, out, "2025-06-01")
	assert.Contains(t, out, "-40.00")
	assert.Contains(t, out, "90.50")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pnl.xlsx")
	require.NoError(t, writeWorkbook(path, buildRows(sampleMap(), 0)))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	date, err := fx.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", date)

	total, err := fx.GetCellValue(sheetName, "A5")
	require.NoError(t, err)
	assert.Equal(t, "Total", total)

	trades, err := fx.GetCellValue(sheetName, "C5")
	require.NoError(t, err)
	assert.Equal(t, "6", trades)
}
