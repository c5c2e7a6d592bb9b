package ledger

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Service enforces the inventory invariants around purchase and sale.
// Storage is injected; reporting thresholds are passed in by the caller
// rather than read from hidden global state.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// AddLotInput is a purchase entry. Prices are per unit, IQD.
type AddLotInput struct {
	Name       string     `validate:"required"`
	Quantity   int64      `validate:"gt=0"`
	BuyPrice   float64    `validate:"gte=0"`
	SellPrice  float64    `validate:"gte=0,gtefield=BuyPrice"`
	Expiration *time.Time `validate:"-"`
}

// AddPurchaseLot records a purchase. A lot with the same trimmed name and
// the same expiration date absorbs the entry: quantity is summed and the
// prices are overwritten with the new ones (same batch identity, same
// expiry = same lot). Otherwise a new lot is created. Returns the lot with
// its new on-hand quantity and whether it was merged.
func (s *Service) AddPurchaseLot(ctx context.Context, in AddLotInput) (*Lot, bool, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Expiration != nil {
		d := dateOnly(*in.Expiration)
		in.Expiration = &d
	}
	if err := validateStruct(in); err != nil {
		return nil, false, err
	}

	existing, err := s.store.FindLot(ctx, in.Name, in.Expiration)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		lot, err := s.store.RestockLot(ctx, existing.ID, in.Quantity, in.BuyPrice, in.SellPrice)
		if err != nil {
			return nil, false, err
		}
		s.log.Info("purchase merged into lot", "lot_id", lot.ID, "name", lot.Name, "added", in.Quantity, "on_hand", lot.Quantity)
		return lot, true, nil
	}

	lot, err := s.store.InsertLot(ctx, LotFields{
		Name:       in.Name,
		Quantity:   in.Quantity,
		BuyPrice:   in.BuyPrice,
		SellPrice:  in.SellPrice,
		Expiration: in.Expiration,
	})
	if err != nil {
		return nil, false, err
	}
	s.log.Info("purchase lot created", "lot_id", lot.ID, "name", lot.Name, "quantity", lot.Quantity)
	return lot, false, nil
}

// SellUnits decrements the lot and writes the sale in one transaction.
// The sale stores the unit sell price and unit cost as of this moment, so
// later price edits never rewrite history.
func (s *Service) SellUnits(ctx context.Context, lotID, quantity int64) (*Receipt, error) {
	if quantity <= 0 {
		return nil, invalid("quantity to sell must be positive, got %d", quantity)
	}
	sale, err := s.store.RecordSale(ctx, lotID, quantity)
	if err != nil {
		return nil, err
	}
	s.log.Info("sale recorded", "sale_id", sale.ID, "lot_id", lotID, "quantity", quantity, "total", sale.Total, "profit", sale.Profit)
	return &Receipt{
		SaleID:   sale.ID,
		LotID:    lotID,
		Quantity: quantity,
		Total:    sale.Total,
		Profit:   sale.Profit,
	}, nil
}

// LowStockReport lists lots at or below the threshold, ascending by
// quantity. The caller supplies the threshold (normally the settings
// value).
func (s *Service) LowStockReport(ctx context.Context, threshold int64) ([]LowStockItem, error) {
	if threshold < 0 {
		return nil, invalid("low-stock threshold must be >= 0, got %d", threshold)
	}
	lots, err := s.store.ListLots(ctx, "")
	if err != nil {
		return nil, err
	}
	var items []LowStockItem
	for _, l := range lots {
		if l.Quantity <= threshold {
			items = append(items, LowStockItem{Name: l.Name, Quantity: l.Quantity})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Quantity < items[j].Quantity })
	return items, nil
}

// ExpiringSoonReport lists lots expiring within the window, ascending by
// date. The boundary day counts; lots without an expiration are skipped.
func (s *Service) ExpiringSoonReport(ctx context.Context, withinDays int) ([]ExpiringItem, error) {
	if withinDays < 0 {
		return nil, invalid("expiry window must be >= 0 days, got %d", withinDays)
	}
	lots, err := s.store.ListLots(ctx, "")
	if err != nil {
		return nil, err
	}
	// compare calendar days, not instants: a DATE column scans back as
	// midnight UTC while the cutoff is built in local time, and the
	// boundary day must count in both zones
	cutoff := s.now().AddDate(0, 0, withinDays)
	var items []ExpiringItem
	for _, l := range lots {
		if l.Expiration == nil {
			continue
		}
		if !dayLess(cutoff, *l.Expiration) {
			items = append(items, ExpiringItem{Name: l.Name, Expiration: *l.Expiration})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return dayLess(items[i].Expiration, items[j].Expiration) })
	return items, nil
}

// TotalProfit sums the stored profit snapshots. It never recomputes from
// current lot prices.
func (s *Service) TotalProfit(ctx context.Context) (float64, error) {
	return s.store.TotalProfit(ctx)
}

const dashboardExpiryDays = 7

// DashboardSummary is the one-call aggregate behind the dashboard page,
// using the configured threshold and a 7-day expiry window.
func (s *Service) DashboardSummary(ctx context.Context) (*Summary, error) {
	st, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	sum := &Summary{}
	if sum.TotalLotCount, err = s.store.CountLots(ctx); err != nil {
		return nil, err
	}
	if sum.TotalQuantityOnHand, err = s.store.SumQuantityOnHand(ctx); err != nil {
		return nil, err
	}
	if sum.TotalUnitsSold, err = s.store.SumUnitsSold(ctx); err != nil {
		return nil, err
	}
	if sum.TotalProfit, err = s.store.TotalProfit(ctx); err != nil {
		return nil, err
	}
	if sum.LowStockItems, err = s.LowStockReport(ctx, st.LowStockThreshold); err != nil {
		return nil, err
	}
	if sum.ExpiringSoonItems, err = s.ExpiringSoonReport(ctx, dashboardExpiryDays); err != nil {
		return nil, err
	}
	return sum, nil
}

// ListStock returns the stock page listing, expiration ascending.
func (s *Service) ListStock(ctx context.Context, nameFilter string) ([]Lot, error) {
	return s.store.ListLots(ctx, strings.TrimSpace(nameFilter))
}

// ListSellable returns the lots the sell form may offer (quantity > 0).
func (s *Service) ListSellable(ctx context.Context) ([]Lot, error) {
	return s.store.ListInStock(ctx)
}

// SalesHistory returns all sales, newest first.
func (s *Service) SalesHistory(ctx context.Context) ([]Sale, error) {
	return s.store.ListSales(ctx)
}

// Settings returns the current singleton configuration.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	return s.store.Settings(ctx)
}

// UpdateSettings replaces both configuration values after validation.
func (s *Service) UpdateSettings(ctx context.Context, st Settings) error {
	if st.USDToIQDRate <= 0 {
		return invalid("exchange rate must be > 0, got %v", st.USDToIQDRate)
	}
	if st.LowStockThreshold < 0 {
		return invalid("low-stock threshold must be >= 0, got %d", st.LowStockThreshold)
	}
	if err := s.store.SaveSettings(ctx, st); err != nil {
		return err
	}
	s.log.Info("settings updated", "usd_to_iqd_rate", st.USDToIQDRate, "low_stock_threshold", st.LowStockThreshold)
	return nil
}

// dateOnly truncates to the calendar day in the local zone. Expirations
// compare by day, not instant.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayLess orders two times by their own calendar day, ignoring zone and
// time-of-day.
func dayLess(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
