package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hawkar/dukan-bot/internal/ledger"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	return &t
}

func insert(t *testing.T, s *Store, f ledger.LotFields) *ledger.Lot {
	t.Helper()
	lot, err := s.InsertLot(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	return lot
}

func TestListLotsOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()

	insert(t, s, ledger.LotFields{Name: "NoExpiry", Quantity: 1})
	insert(t, s, ledger.LotFields{Name: "March", Quantity: 1, Expiration: date(2026, 3, 1)})
	insert(t, s, ledger.LotFields{Name: "January", Quantity: 1, Expiration: date(2026, 1, 1)})

	lots, err := s.ListLots(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"January", "March", "NoExpiry"} // expiration ascending, nil last
	if len(lots) != len(want) {
		t.Fatalf("got %d lots, want %d", len(lots), len(want))
	}
	for i, name := range want {
		if lots[i].Name != name {
			t.Errorf("lots[%d] = %q, want %q", i, lots[i].Name, name)
		}
	}
}

func TestListLotsFilter(t *testing.T) {
	s := New()
	ctx := context.Background()

	insert(t, s, ledger.LotFields{Name: "Basmati Rice", Quantity: 1})
	insert(t, s, ledger.LotFields{Name: "Rice Noodles", Quantity: 1})
	insert(t, s, ledger.LotFields{Name: "Lentils", Quantity: 1})

	lots, err := s.ListLots(ctx, "rice")
	if err != nil {
		t.Fatal(err)
	}
	if len(lots) != 2 {
		t.Fatalf("filter matched %d lots, want 2", len(lots))
	}
}

func TestFindLotMatchesByDay(t *testing.T) {
	s := New()
	ctx := context.Background()

	exp := time.Date(2026, 5, 10, 14, 30, 0, 0, time.Local) // with time-of-day
	insert(t, s, ledger.LotFields{Name: "Juice", Quantity: 1, Expiration: &exp})

	sameDay := time.Date(2026, 5, 10, 0, 0, 0, 0, time.Local)
	found, err := s.FindLot(ctx, "Juice", &sameDay)
	if err != nil {
		t.Fatal(err)
	}
	if found == nil {
		t.Fatal("same calendar day did not match")
	}

	if found, _ := s.FindLot(ctx, "Juice", nil); found != nil {
		t.Error("nil expiration matched a dated lot")
	}
	if found, _ := s.FindLot(ctx, "Water", &sameDay); found != nil {
		t.Error("wrong name matched")
	}

	insert(t, s, ledger.LotFields{Name: "Water", Quantity: 1})
	if found, _ := s.FindLot(ctx, "Water", nil); found == nil {
		t.Error("nil expiration did not match a nil-expiration lot")
	}
}

func TestRestockLotAddsToCurrentQuantity(t *testing.T) {
	s := New()
	ctx := context.Background()

	lot := insert(t, s, ledger.LotFields{Name: "Shampoo", Quantity: 10, BuyPrice: 100, SellPrice: 150})
	if _, err := s.RecordSale(ctx, lot.ID, 4); err != nil {
		t.Fatal(err)
	}

	// the add is relative: a sale landing between find and restock must
	// stay subtracted
	got, err := s.RestockLot(ctx, lot.ID, 5, 120, 180)
	if err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 11 {
		t.Errorf("quantity = %d, want 11 (6 on hand + 5 restocked)", got.Quantity)
	}
	if got.BuyPrice != 120 || got.SellPrice != 180 {
		t.Errorf("prices = %v/%v, want 120/180", got.BuyPrice, got.SellPrice)
	}

	_, err = s.RestockLot(ctx, 999, 1, 0, 0)
	var notFound *ledger.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want NotFoundError for unknown lot, got %v", err)
	}
}

func TestRecordSaleErrorsLeaveNoTrace(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.RecordSale(ctx, 42, 1)
	var notFound *ledger.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want NotFoundError, got %v", err)
	}

	lot := insert(t, s, ledger.LotFields{Name: "Soap", Quantity: 2, BuyPrice: 100, SellPrice: 150})
	_, err = s.RecordSale(ctx, lot.ID, 3)
	var insufficient *ledger.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 2 {
		t.Errorf("Available = %d, want 2", insufficient.Available)
	}

	got, _ := s.GetLot(ctx, lot.ID)
	if got.Quantity != 2 {
		t.Errorf("quantity = %d after failed sale, want 2", got.Quantity)
	}
	sales, _ := s.ListSales(ctx)
	if len(sales) != 0 {
		t.Errorf("%d sales recorded by failed sale", len(sales))
	}
}

func TestRecordSaleSnapshots(t *testing.T) {
	s := New()
	ctx := context.Background()

	lot := insert(t, s, ledger.LotFields{Name: "Chai", Quantity: 10, BuyPrice: 250, SellPrice: 400})
	sale, err := s.RecordSale(ctx, lot.ID, 4)
	if err != nil {
		t.Fatal(err)
	}
	if sale.UnitPrice != 400 || sale.UnitCost != 250 {
		t.Errorf("snapshots = %v/%v, want 400/250", sale.UnitPrice, sale.UnitCost)
	}
	if sale.Total != 1600 || sale.Profit != 600 {
		t.Errorf("total/profit = %v/%v, want 1600/600", sale.Total, sale.Profit)
	}
	if sale.LotID == nil || *sale.LotID != lot.ID {
		t.Errorf("LotID = %v, want %d", sale.LotID, lot.ID)
	}

	got, _ := s.GetLot(ctx, lot.ID)
	if got.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", got.Quantity)
	}
}

func TestListSalesNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}

	lot := insert(t, s, ledger.LotFields{Name: "Gum", Quantity: 9, BuyPrice: 50, SellPrice: 100})
	for i := 0; i < 3; i++ {
		if _, err := s.RecordSale(ctx, lot.ID, 1); err != nil {
			t.Fatal(err)
		}
	}

	sales, err := s.ListSales(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sales) != 3 {
		t.Fatalf("got %d sales, want 3", len(sales))
	}
	for i := 1; i < len(sales); i++ {
		if sales[i].SoldAt.After(sales[i-1].SoldAt) {
			t.Errorf("sales[%d] newer than sales[%d]", i, i-1)
		}
	}
}
