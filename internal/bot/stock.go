package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hawkar/dukan-bot/internal/ledger"
)

// Stock page: every lot ordered by expiration, sold-out and low-stock
// lots flagged. Zero-quantity lots stay visible on purpose.

func (b *Bot) showStock(ctx context.Context, chatID int64, filter string) {
	lots, err := b.ledger.ListStock(ctx, filter)
	if err != nil {
		b.log.Error("list stock failed", "err", err)
		b.reply(chatID, "Could not load the stock list, try again.")
		return
	}
	if len(lots) == 0 {
		if filter != "" {
			b.reply(chatID, fmt.Sprintf("Nothing matches %q.", filter))
			return
		}
		b.reply(chatID, "No items in stock yet. Use Buy to add a purchase.")
		return
	}

	st, err := b.ledger.Settings(ctx)
	if err != nil {
		st = ledger.DefaultSettings
	}

	var sb strings.Builder
	if filter != "" {
		fmt.Fprintf(&sb, "Stock matching %q:\n\n", filter)
	} else {
		sb.WriteString("Current stock:\n\n")
	}
	for _, l := range lots {
		badge := ""
		switch {
		case l.Quantity == 0:
			badge = " 🚫 sold out"
		case l.Quantity <= st.LowStockThreshold:
			badge = " ⚠️ low"
		}
		exp := ""
		if l.Expiration != nil {
			exp = ", exp " + fmtDate(*l.Expiration)
		}
		fmt.Fprintf(&sb, "#%d %s — %d units @ %s%s%s\n", l.ID, l.Name, l.Quantity, fmtIQD(l.SellPrice), exp, badge)
	}

	m := tgbotapi.NewMessage(chatID, sb.String())
	m.ReplyMarkup = stockKeyboard()
	b.send(m)
}

func (b *Bot) handleStockSearch(ctx context.Context, chatID int64, text string) {
	_ = b.states.Reset(ctx, chatID)
	b.showStock(ctx, chatID, strings.TrimSpace(text))
}
