package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hawkar/dukan-bot/internal/dialog"
	"github.com/hawkar/dukan-bot/internal/infra/metrics"
	"github.com/hawkar/dukan-bot/internal/ledger"
)

// Sell form: pick a lot with stock on hand, enter a quantity, get the
// receipt. Insufficient stock keeps the dialog open so the user can retry
// with the amount the error reports.

func (b *Bot) startSell(ctx context.Context, chatID int64) {
	lots, err := b.ledger.ListSellable(ctx)
	if err != nil {
		b.log.Error("list sellable failed", "err", err)
		b.reply(chatID, "Could not load the stock list, try again.")
		return
	}
	if len(lots) == 0 {
		b.reply(chatID, "No stock available for sale.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lots)+1)
	for _, l := range lots {
		label := fmt.Sprintf("%s — %d left @ %s", l.Name, l.Quantity, fmtIQD(l.SellPrice))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("sell:lot:%d", l.ID)),
		))
	}
	rows = append(rows, cancelKeyboard().InlineKeyboard[0])

	_ = b.states.Set(ctx, chatID, dialog.StateSellPickLot, dialog.Payload{})
	m := tgbotapi.NewMessage(chatID, "What are you selling?")
	m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(m)
}

func (b *Bot) handleSellPickLot(ctx context.Context, chatID int64, msgID int, idStr string) {
	lotID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.editTextAndClear(chatID, msgID, "Bad selection, start over from the menu.")
		return
	}
	b.editTextAndClear(chatID, msgID, "How many units?")
	_ = b.states.Set(ctx, chatID, dialog.StateSellQty, dialog.Payload{"lot_id": float64(lotID)})
}

func (b *Bot) handleSellQty(ctx context.Context, chatID int64, text string, p dialog.Payload) {
	qty, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || qty <= 0 {
		b.reply(chatID, "Quantity must be a positive whole number. How many units?")
		return
	}
	lotID, ok := dialog.GetInt64(p, "lot_id")
	if !ok {
		b.toIdle(ctx, chatID, "This form has expired, start over from the menu.")
		return
	}

	receipt, err := b.ledger.SellUnits(ctx, lotID, qty)
	if err != nil {
		var insufficient *ledger.InsufficientStockError
		var notFound *ledger.NotFoundError
		switch {
		case errors.As(err, &insufficient):
			// keep the dialog open, the user can retry with less
			b.reply(chatID, fmt.Sprintf("Only %d units on hand. How many units?", insufficient.Available))
		case errors.As(err, &notFound):
			b.toIdle(ctx, chatID, "That lot no longer exists.")
		default:
			b.log.Error("sell failed", "lot_id", lotID, "err", err)
			b.toIdle(ctx, chatID, "Could not record the sale, nothing was changed. Try again.")
		}
		return
	}

	metrics.SalesRecorded.Inc()
	metrics.UnitsSold.Add(float64(receipt.Quantity))
	metrics.ProfitIQD.Add(receipt.Profit)

	st, err := b.ledger.Settings(ctx)
	if err != nil {
		st = ledger.DefaultSettings
	}
	b.toIdle(ctx, chatID, fmt.Sprintf(
		"Sold %d units.\nTotal: %s (%s)\nProfit: %s (%s)",
		receipt.Quantity,
		fmtIQD(receipt.Total), fmtUSD(receipt.Total, st.USDToIQDRate),
		fmtIQD(receipt.Profit), fmtUSD(receipt.Profit, st.USDToIQDRate),
	))
}
