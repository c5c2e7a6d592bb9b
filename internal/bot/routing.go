package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hawkar/dukan-bot/internal/dialog"
)

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	chatID := msg.Chat.ID

	if !b.allowed(chatID) {
		b.reply(chatID, "This is a private shop ledger.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch text {
	case btnDashboard:
		_ = b.states.Reset(ctx, chatID)
		b.showDashboard(ctx, chatID)
		return
	case btnBuy:
		b.startBuy(ctx, chatID)
		return
	case btnSell:
		b.startSell(ctx, chatID)
		return
	case btnStock:
		_ = b.states.Reset(ctx, chatID)
		b.showStock(ctx, chatID, "")
		return
	case btnSales:
		_ = b.states.Reset(ctx, chatID)
		b.showSales(ctx, chatID)
		return
	case btnSettings:
		_ = b.states.Reset(ctx, chatID)
		b.showSettings(ctx, chatID)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("dialog state load failed", "err", err)
		b.reply(chatID, "Something went wrong, try again.")
		return
	}

	switch st.State {
	case dialog.StateBuyName:
		b.handleBuyName(ctx, chatID, text, st.Payload)
	case dialog.StateBuyQty:
		b.handleBuyQty(ctx, chatID, text, st.Payload)
	case dialog.StateBuyBuyPrice:
		b.handleBuyBuyPrice(ctx, chatID, text, st.Payload)
	case dialog.StateBuySellPrice:
		b.handleBuySellPrice(ctx, chatID, text, st.Payload)
	case dialog.StateBuyExpiry:
		b.handleBuyExpiry(ctx, chatID, text, st.Payload)
	case dialog.StateSellQty:
		b.handleSellQty(ctx, chatID, text, st.Payload)
	case dialog.StateStockSearch:
		b.handleStockSearch(ctx, chatID, text)
	case dialog.StateSettingsRate:
		b.handleSettingsRate(ctx, chatID, text)
	case dialog.StateSettingsThreshold:
		b.handleSettingsThreshold(ctx, chatID, text)
	default:
		b.reply(chatID, "Pick an action from the menu below, or /help.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.toIdle(ctx, chatID, "Welcome to your shop ledger. Pick an action:")
	case "help":
		b.reply(chatID,
			"Commands:\n/start — show the menu\n/help — this message\n\n"+
				"Menu: Dashboard, Buy (add a purchase lot), Sell, Stock, Sales (history + export), Settings (rate, low-stock threshold).")
	case "cancel":
		b.toIdle(ctx, chatID, "Cancelled.")
	default:
		b.reply(chatID, "Unknown command, try /help.")
	}
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	cb := upd.CallbackQuery
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	if !b.allowed(chatID) {
		b.answerCallback(cb, "Not yours.", true)
		return
	}

	data := cb.Data
	switch {
	case data == "nav:cancel":
		b.answerCallback(cb, "", false)
		b.editTextAndClear(chatID, msgID, "Cancelled.")
		_ = b.states.Reset(ctx, chatID)

	case strings.HasPrefix(data, "sell:lot:"):
		b.answerCallback(cb, "", false)
		b.handleSellPickLot(ctx, chatID, msgID, strings.TrimPrefix(data, "sell:lot:"))

	case data == "buy:exp:skip":
		b.answerCallback(cb, "", false)
		b.handleBuyExpirySkip(ctx, chatID, msgID)

	case data == "buy:confirm":
		b.answerCallback(cb, "", false)
		b.handleBuyConfirm(ctx, chatID, msgID)

	case data == "stock:search":
		b.answerCallback(cb, "", false)
		_ = b.states.Set(ctx, chatID, dialog.StateStockSearch, dialog.Payload{})
		b.reply(chatID, "Type part of the product name:")

	case data == "sales:export":
		b.answerCallback(cb, "", false)
		b.exportSalesExcel(ctx, chatID, msgID)

	case data == "set:rate":
		b.answerCallback(cb, "", false)
		_ = b.states.Set(ctx, chatID, dialog.StateSettingsRate, dialog.Payload{})
		b.reply(chatID, "New USD → IQD rate (e.g. 1450):")

	case data == "set:threshold":
		b.answerCallback(cb, "", false)
		_ = b.states.Set(ctx, chatID, dialog.StateSettingsThreshold, dialog.Payload{})
		b.reply(chatID, "New low-stock threshold (e.g. 5):")

	default:
		b.answerCallback(cb, "", false)
	}
}

// allowed gates the bot to its single owner when one is configured.
func (b *Bot) allowed(chatID int64) bool {
	return b.owner == 0 || chatID == b.owner
}
