package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/hawkar/dukan-bot/internal/ledger"
)

func (b *Bot) showDashboard(ctx context.Context, chatID int64) {
	sum, err := b.ledger.DashboardSummary(ctx)
	if err != nil {
		b.log.Error("dashboard failed", "err", err)
		b.reply(chatID, "Could not build the dashboard, try again.")
		return
	}
	st, err := b.ledger.Settings(ctx)
	if err != nil {
		st = ledger.DefaultSettings
	}

	var sb strings.Builder
	sb.WriteString("📊 Shop at a glance\n\n")
	fmt.Fprintf(&sb, "Lots tracked: %d\n", sum.TotalLotCount)
	fmt.Fprintf(&sb, "Units on hand: %d\n", sum.TotalQuantityOnHand)
	fmt.Fprintf(&sb, "Units sold: %d\n", sum.TotalUnitsSold)
	fmt.Fprintf(&sb, "Total profit: %s (%s)\n", fmtIQD(sum.TotalProfit), fmtUSD(sum.TotalProfit, st.USDToIQDRate))

	if len(sum.LowStockItems) > 0 {
		fmt.Fprintf(&sb, "\n⚠️ Low stock (≤ %d):\n", st.LowStockThreshold)
		for _, it := range sum.LowStockItems {
			fmt.Fprintf(&sb, "— %s: %d left\n", it.Name, it.Quantity)
		}
	}
	if len(sum.ExpiringSoonItems) > 0 {
		sb.WriteString("\n⏰ Expiring within 7 days:\n")
		for _, it := range sum.ExpiringSoonItems {
			fmt.Fprintf(&sb, "— %s: %s\n", it.Name, fmtDate(it.Expiration))
		}
	}
	if len(sum.LowStockItems) == 0 && len(sum.ExpiringSoonItems) == 0 {
		sb.WriteString("\nNo low-stock or near-expiry warnings.")
	}

	b.reply(chatID, sb.String())
}
