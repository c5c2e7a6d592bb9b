package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

const historyPageSize = 10

// Sales page: the newest entries as text plus an xlsx export of the full
// history. Prices shown are the sale-time snapshots, never the current
// lot prices.

func (b *Bot) showSales(ctx context.Context, chatID int64) {
	sales, err := b.ledger.SalesHistory(ctx)
	if err != nil {
		b.log.Error("sales history failed", "err", err)
		b.reply(chatID, "Could not load the sales history, try again.")
		return
	}
	if len(sales) == 0 {
		b.reply(chatID, "No sales recorded yet.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 Sales history (%d total, newest first):\n\n", len(sales))
	for i, s := range sales {
		if i == historyPageSize {
			fmt.Fprintf(&sb, "… and %d more, use export for the full list.\n", len(sales)-historyPageSize)
			break
		}
		name := s.LotName
		if name == "" {
			name = "—" // lot removed since
		}
		fmt.Fprintf(&sb, "%s  %s ×%d = %s (profit %s)\n",
			s.SoldAt.Format("2006-01-02 15:04"), name, s.Quantity, fmtIQD(s.Total), fmtIQD(s.Profit))
	}

	m := tgbotapi.NewMessage(chatID, sb.String())
	m.ReplyMarkup = salesKeyboard()
	b.send(m)
}

func (b *Bot) exportSalesExcel(ctx context.Context, chatID int64, msgID int) {
	sales, err := b.ledger.SalesHistory(ctx)
	if err != nil {
		b.editTextAndClear(chatID, msgID, "Could not load the sales history.")
		return
	}
	if len(sales) == 0 {
		b.editTextAndClear(chatID, msgID, "Nothing to export yet.")
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"sale_id",
		"product",
		"quantity",
		"unit_price_iqd",
		"unit_cost_iqd",
		"total_iqd",
		"profit_iqd",
		"sale_date",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		b.editTextAndClear(chatID, msgID, "Export failed (header).")
		return
	}

	row := 2
	for _, s := range sales {
		excelRow := []interface{}{
			s.ID,
			s.LotName,
			s.Quantity,
			s.UnitPrice,
			s.UnitCost,
			s.Total,
			s.Profit,
			s.SoldAt.Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			b.editTextAndClear(chatID, msgID, "Export failed (cells).")
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			b.editTextAndClear(chatID, msgID, "Export failed (rows).")
			return
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		b.editTextAndClear(chatID, msgID, "Export failed (write).")
		return
	}

	fileName := fmt.Sprintf("sales_%s.xlsx", time.Now().Format("20060102_150405"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Full sales history, %d entries.", len(sales))
	b.send(doc)

	b.editTextAndClear(chatID, msgID, "Export sent.")
}
