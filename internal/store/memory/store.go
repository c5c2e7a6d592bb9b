// Package memory is a mutex-guarded Store used by tests and demo runs.
// It mirrors the behavior of the postgres store, including ordering and
// the domain errors on the sell path.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hawkar/dukan-bot/internal/ledger"
)

type Store struct {
	mu         sync.RWMutex
	lots       map[int64]ledger.Lot
	sales      map[int64]ledger.Sale
	settings   ledger.Settings
	nextLotID  int64
	nextSaleID int64
	now        func() time.Time
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		lots:       make(map[int64]ledger.Lot),
		sales:      make(map[int64]ledger.Sale),
		settings:   ledger.DefaultSettings,
		nextLotID:  1,
		nextSaleID: 1,
		now:        time.Now,
	}
}

func (s *Store) InsertLot(_ context.Context, f ledger.LotFields) (*ledger.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot := ledger.Lot{
		ID:         s.nextLotID,
		Name:       f.Name,
		Quantity:   f.Quantity,
		BuyPrice:   f.BuyPrice,
		SellPrice:  f.SellPrice,
		Expiration: copyDate(f.Expiration),
		CreatedAt:  s.now(),
	}
	s.nextLotID++
	s.lots[lot.ID] = lot
	out := lot
	return &out, nil
}

func (s *Store) GetLot(_ context.Context, id int64) (*ledger.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lot, ok := s.lots[id]
	if !ok {
		return nil, nil
	}
	out := lot
	return &out, nil
}

func (s *Store) FindLot(_ context.Context, name string, expiration *time.Time) (*ledger.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, lot := range s.lots {
		if lot.Name == name && sameDate(lot.Expiration, expiration) {
			out := lot
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) RestockLot(_ context.Context, id, addQuantity int64, buyPrice, sellPrice float64) (*ledger.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[id]
	if !ok {
		return nil, &ledger.NotFoundError{LotID: id}
	}
	lot.Quantity += addQuantity
	lot.BuyPrice = buyPrice
	lot.SellPrice = sellPrice
	s.lots[id] = lot
	out := lot
	return &out, nil
}

func (s *Store) ListLots(_ context.Context, nameFilter string) ([]ledger.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(nameFilter)
	out := make([]ledger.Lot, 0, len(s.lots))
	for _, lot := range s.lots {
		if needle != "" && !strings.Contains(strings.ToLower(lot.Name), needle) {
			continue
		}
		out = append(out, lot)
	}
	// expiration ascending, no expiration last, id as tiebreaker
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Expiration, out[j].Expiration
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].ID < out[j].ID
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (s *Store) ListInStock(_ context.Context) ([]ledger.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Lot
	for _, lot := range s.lots {
		if lot.Quantity > 0 {
			out = append(out, lot)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) RecordSale(_ context.Context, lotID, quantity int64) (*ledger.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[lotID]
	if !ok {
		return nil, &ledger.NotFoundError{LotID: lotID}
	}
	if lot.Quantity < quantity {
		return nil, &ledger.InsufficientStockError{LotID: lotID, Requested: quantity, Available: lot.Quantity}
	}

	lot.Quantity -= quantity
	s.lots[lotID] = lot

	id := lotID
	sale := ledger.Sale{
		ID:        s.nextSaleID,
		LotID:     &id,
		LotName:   lot.Name,
		Quantity:  quantity,
		UnitPrice: lot.SellPrice,
		UnitCost:  lot.BuyPrice,
		Total:     lot.SellPrice * float64(quantity),
		Profit:    (lot.SellPrice - lot.BuyPrice) * float64(quantity),
		SoldAt:    s.now(),
	}
	s.nextSaleID++
	s.sales[sale.ID] = sale
	out := sale
	return &out, nil
}

func (s *Store) ListSales(_ context.Context) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if sale.LotID != nil {
			if lot, ok := s.lots[*sale.LotID]; ok {
				sale.LotName = lot.Name
			} else {
				sale.LotName = ""
			}
		}
		out = append(out, sale)
	}
	// newest first, id as tiebreaker
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SoldAt.Equal(out[j].SoldAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SoldAt.After(out[j].SoldAt)
	})
	return out, nil
}

func (s *Store) TotalProfit(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, sale := range s.sales {
		total += sale.Profit
	}
	return total, nil
}

func (s *Store) CountLots(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.lots)), nil
}

func (s *Store) SumQuantityOnHand(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, lot := range s.lots {
		total += lot.Quantity
	}
	return total, nil
}

func (s *Store) SumUnitsSold(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, sale := range s.sales {
		total += sale.Quantity
	}
	return total, nil
}

func (s *Store) Settings(_ context.Context) (ledger.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, st ledger.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
	return nil
}

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := *t
	return &d
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
