package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hawkar/dukan-bot/internal/ledger"
)

func (b *Bot) showSettings(ctx context.Context, chatID int64) {
	st, err := b.ledger.Settings(ctx)
	if err != nil {
		b.log.Error("load settings failed", "err", err)
		b.reply(chatID, "Could not load settings, try again.")
		return
	}
	text := fmt.Sprintf(
		"⚙️ Settings\n\nUSD → IQD rate: %s\nLow-stock threshold: %d units",
		groupDigits(st.USDToIQDRate), st.LowStockThreshold,
	)
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = settingsKeyboard()
	b.send(m)
}

func (b *Bot) handleSettingsRate(ctx context.Context, chatID int64, text string) {
	rate, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil {
		b.reply(chatID, "Rate must be a number, e.g. 1450. Try again:")
		return
	}
	cur, err := b.ledger.Settings(ctx)
	if err != nil {
		b.toIdle(ctx, chatID, "Could not load settings, try again.")
		return
	}
	cur.USDToIQDRate = rate
	b.saveSettings(ctx, chatID, cur)
}

func (b *Bot) handleSettingsThreshold(ctx context.Context, chatID int64, text string) {
	threshold, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		b.reply(chatID, "Threshold must be a whole number, e.g. 5. Try again:")
		return
	}
	cur, err := b.ledger.Settings(ctx)
	if err != nil {
		b.toIdle(ctx, chatID, "Could not load settings, try again.")
		return
	}
	cur.LowStockThreshold = threshold
	b.saveSettings(ctx, chatID, cur)
}

func (b *Bot) saveSettings(ctx context.Context, chatID int64, st ledger.Settings) {
	if err := b.ledger.UpdateSettings(ctx, st); err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			b.reply(chatID, "Rejected: "+verr.Reason+" Try again:")
			return
		}
		b.log.Error("save settings failed", "err", err)
		b.toIdle(ctx, chatID, "Could not save settings, try again.")
		return
	}
	_ = b.states.Reset(ctx, chatID)
	b.showSettings(ctx, chatID)
}
