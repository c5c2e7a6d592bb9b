package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hawkar/dukan-bot/internal/dialog"
	"github.com/hawkar/dukan-bot/internal/ledger"
)

// Bot renders the six shop pages (dashboard, buy, sell, stock, sales
// history, settings) as Telegram dialogs. It is presentation glue only:
// every mutation and report goes through the ledger service.
type Bot struct {
	api    *tgbotapi.BotAPI
	log    *slog.Logger
	ledger *ledger.Service
	states *dialog.Repo
	owner  int64
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, svc *ledger.Service, states *dialog.Repo, ownerChatID int64) *Bot {
	return &Bot{api: api, log: log, ledger: svc, states: states, owner: ownerChatID}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("callback answer failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

// toIdle drops any dialog in progress and re-shows the menu hint.
func (b *Bot) toIdle(ctx context.Context, chatID int64, text string) {
	_ = b.states.Reset(ctx, chatID)
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = mainMenuKeyboard()
	b.send(m)
}

/*** formatting ***/

func fmtIQD(v float64) string {
	return fmt.Sprintf("%s IQD", groupDigits(v))
}

func fmtUSD(iqd, rate float64) string {
	if rate <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.2f USD", iqd/rate)
}

func fmtDate(t time.Time) string { return t.Format("2006-01-02") }

// groupDigits renders an IQD amount with thousands separators; amounts
// are whole dinars in practice, fractions shown only when present.
func groupDigits(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	neg := false
	if len(intPart) > 0 && intPart[0] == '-' {
		neg = true
		intPart = intPart[1:]
	}
	out := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	res := string(out) + frac
	if neg {
		res = "-" + res
	}
	return res
}
