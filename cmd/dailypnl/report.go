package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/xuri/excelize/v2"

	"traderBot/internal/domain"
)

type reportRow struct {
	Date       string
	PnL        float64
	TradeCount int
	Cumulative float64
}

// buildRows orders records by date and keeps the last days entries when days > 0.
// The running total covers only the rows shown.
func buildRows(m domain.DailyPnLMap, days int) []reportRow {
	dates := m.SortedDates()
	if days > 0 && len(dates) > days {
		dates = dates[len(dates)-days:]
	}
	rows := make([]reportRow, 0, len(dates))
	var total float64
	for _, d := range dates {
		rec := m[d]
		total += rec.PnL
		rows = append(rows, reportRow{Date: d, PnL: rec.PnL, TradeCount: rec.TradeCount, Cumulative: total})
	}
	return rows
}

func totals(rows []reportRow) (pnl float64, trades int) {
	for _, r := range rows {
		pnl += r.PnL
		trades += r.TradeCount
	}
	return pnl, trades
}

func renderTable(w io.Writer, rows []reportRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("DAILY REALIZED P/L")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Date", "P/L", "Trades", "Cumulative"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Date, fmt.Sprintf("%.2f", r.PnL), r.TradeCount, fmt.Sprintf("%.2f", r.Cumulative)})
	}
	pnl, trades := totals(rows)
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%.2f", pnl), trades, ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

const sheetName = "Daily P&L"

func writeWorkbook(path string, rows []reportRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()
	if err := fx.SetSheetName(fx.GetSheetName(0), sheetName); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	moneyStyle, err := fx.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	headers := []interface{}{"Date", "P/L", "Trades", "Cumulative"}
	if err := fx.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheetName, "A1", "D1", headerStyle); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{r.Date, r.PnL, r.TradeCount, r.Cumulative}
		if err := fx.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	totalRow := len(rows) + 2
	pnl, trades := totals(rows)
	totalCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totalValues := []interface{}{"Total", pnl, trades}
	if err := fx.SetSheetRow(sheetName, totalCell, &totalValues); err != nil {
		return err
	}

	for _, col := range []int{2, 4} {
		first, _ := excelize.CoordinatesToCellName(col, 2)
		last, _ := excelize.CoordinatesToCellName(col, totalRow)
		if err := fx.SetCellStyle(sheetName, first, last, moneyStyle); err != nil {
			return err
		}
	}
	if err := fx.SetColWidth(sheetName, "A", "D", 14); err != nil {
		return err
	}
	return fx.SaveAs(path)
}
