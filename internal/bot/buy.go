package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hawkar/dukan-bot/internal/dialog"
	"github.com/hawkar/dukan-bot/internal/infra/metrics"
	"github.com/hawkar/dukan-bot/internal/ledger"
)

// Buy form: name → quantity → buy price → sell price → expiration →
// confirm. Collected answers live in the dialog payload until the final
// confirm hits the ledger.

func (b *Bot) startBuy(ctx context.Context, chatID int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateBuyName, dialog.Payload{})
	m := tgbotapi.NewMessage(chatID, "Adding a purchase. Item name?")
	m.ReplyMarkup = cancelKeyboard()
	b.send(m)
}

func (b *Bot) handleBuyName(ctx context.Context, chatID int64, text string, p dialog.Payload) {
	name := strings.TrimSpace(text)
	if name == "" {
		b.reply(chatID, "Name must not be empty. Item name?")
		return
	}
	p["name"] = name
	_ = b.states.Set(ctx, chatID, dialog.StateBuyQty, p)
	b.reply(chatID, "Quantity purchased?")
}

func (b *Bot) handleBuyQty(ctx context.Context, chatID int64, text string, p dialog.Payload) {
	qty, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || qty <= 0 {
		b.reply(chatID, "Quantity must be a positive whole number. Try again:")
		return
	}
	p["qty"] = float64(qty)
	_ = b.states.Set(ctx, chatID, dialog.StateBuyBuyPrice, p)
	b.reply(chatID, "Buy price per unit, IQD?")
}

func (b *Bot) handleBuyBuyPrice(ctx context.Context, chatID int64, text string, p dialog.Payload) {
	price, err := parsePrice(text)
	if err != nil {
		b.reply(chatID, "Price must be a non-negative number. Buy price per unit?")
		return
	}
	p["buy_price"] = price
	_ = b.states.Set(ctx, chatID, dialog.StateBuySellPrice, p)
	b.reply(chatID, "Sell price per unit, IQD?")
}

func (b *Bot) handleBuySellPrice(ctx context.Context, chatID int64, text string, p dialog.Payload) {
	price, err := parsePrice(text)
	if err != nil {
		b.reply(chatID, "Price must be a non-negative number. Sell price per unit?")
		return
	}
	if buy, ok := dialog.GetFloat(p, "buy_price"); ok && price < buy {
		b.reply(chatID, "Sell price must be at least the buy price. Sell price per unit?")
		return
	}
	p["sell_price"] = price
	_ = b.states.Set(ctx, chatID, dialog.StateBuyExpiry, p)
	m := tgbotapi.NewMessage(chatID, "Expiration date (YYYY-MM-DD), or skip:")
	m.ReplyMarkup = expiryKeyboard()
	b.send(m)
}

func (b *Bot) handleBuyExpiry(ctx context.Context, chatID int64, text string, p dialog.Payload) {
	text = strings.TrimSpace(text)
	if _, err := time.ParseInLocation("2006-01-02", text, time.Local); err != nil {
		b.reply(chatID, "Date must look like 2026-03-15, or use the skip button.")
		return
	}
	p["exp"] = text
	b.showBuyConfirm(ctx, chatID, p)
}

func (b *Bot) handleBuyExpirySkip(ctx context.Context, chatID int64, msgID int) {
	st, _ := b.states.Get(ctx, chatID)
	if st.State != dialog.StateBuyExpiry {
		b.editTextAndClear(chatID, msgID, "This form has expired, start over from the menu.")
		return
	}
	b.editTextAndClear(chatID, msgID, "No expiration date.")
	delete(st.Payload, "exp")
	b.showBuyConfirm(ctx, chatID, st.Payload)
}

func (b *Bot) showBuyConfirm(ctx context.Context, chatID int64, p dialog.Payload) {
	name, _ := dialog.GetString(p, "name")
	qty, _ := dialog.GetInt64(p, "qty")
	buy, _ := dialog.GetFloat(p, "buy_price")
	sell, _ := dialog.GetFloat(p, "sell_price")
	exp, hasExp := dialog.GetString(p, "exp")

	expLine := "no expiry"
	if hasExp {
		expLine = "expires " + exp
	}
	text := fmt.Sprintf("Add to stock?\n\n%s — %d units\nbuy %s / sell %s per unit\n%s",
		name, qty, fmtIQD(buy), fmtIQD(sell), expLine)

	_ = b.states.Set(ctx, chatID, dialog.StateBuyConfirm, p)
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = buyConfirmKeyboard()
	b.send(m)
}

func (b *Bot) handleBuyConfirm(ctx context.Context, chatID int64, msgID int) {
	st, _ := b.states.Get(ctx, chatID)
	if st.State != dialog.StateBuyConfirm {
		b.editTextAndClear(chatID, msgID, "This form has expired, start over from the menu.")
		return
	}
	p := st.Payload

	in := ledger.AddLotInput{}
	in.Name, _ = dialog.GetString(p, "name")
	in.Quantity, _ = dialog.GetInt64(p, "qty")
	in.BuyPrice, _ = dialog.GetFloat(p, "buy_price")
	in.SellPrice, _ = dialog.GetFloat(p, "sell_price")
	if exp, ok := dialog.GetString(p, "exp"); ok {
		if d, err := time.ParseInLocation("2006-01-02", exp, time.Local); err == nil {
			in.Expiration = &d
		}
	}

	lot, merged, err := b.ledger.AddPurchaseLot(ctx, in)
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			b.editTextAndClear(chatID, msgID, "Rejected: "+verr.Reason)
		} else {
			b.log.Error("add purchase failed", "err", err)
			b.editTextAndClear(chatID, msgID, "Could not save the purchase, try again.")
		}
		_ = b.states.Reset(ctx, chatID)
		return
	}
	metrics.PurchasesRecorded.Inc()

	outcome := fmt.Sprintf("Added new lot #%d.", lot.ID)
	if merged {
		outcome = fmt.Sprintf("Merged into lot #%d.", lot.ID)
	}
	b.editTextAndClear(chatID, msgID, fmt.Sprintf("%s %s on hand: %d units.", outcome, lot.Name, lot.Quantity))
	_ = b.states.Reset(ctx, chatID)
}

func parsePrice(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("bad price %q", text)
	}
	return v, nil
}
