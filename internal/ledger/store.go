package ledger

import (
	"context"
	"time"
)

// LotFields is what it takes to create a lot.
type LotFields struct {
	Name       string
	Quantity   int64
	BuyPrice   float64
	SellPrice  float64
	Expiration *time.Time
}

// Store is the persistence contract for the ledger. Two implementations
// exist: internal/store/postgres (pgx) and internal/store/memory (tests,
// demo runs). Every failure comes back as *StorageError except where a
// method documents a domain error.
type Store interface {
	InsertLot(ctx context.Context, f LotFields) (*Lot, error)
	// GetLot returns (nil, nil) when the id is unknown.
	GetLot(ctx context.Context, id int64) (*Lot, error)
	// FindLot matches on exact name and expiration date (both nil or the
	// same calendar day). Returns (nil, nil) when there is no such lot.
	FindLot(ctx context.Context, name string, expiration *time.Time) (*Lot, error)
	// RestockLot atomically adds quantity to the lot and overwrites its
	// prices with the new entry's. The addition happens inside the store,
	// never against a quantity the caller read earlier, so a concurrent
	// sale can not be overwritten. Returns *NotFoundError when the id is
	// unknown.
	RestockLot(ctx context.Context, id int64, addQuantity int64, buyPrice, sellPrice float64) (*Lot, error)
	// ListLots orders by expiration ascending, lots without expiration
	// last. nameFilter is a case-insensitive substring match; empty means
	// all lots.
	ListLots(ctx context.Context, nameFilter string) ([]Lot, error)
	// ListInStock returns lots with quantity > 0 ordered by name.
	ListInStock(ctx context.Context) ([]Lot, error)

	// RecordSale atomically decrements the lot and inserts the sale row
	// with price snapshots. No other write may interleave between the
	// quantity read and the quantity write. Returns *NotFoundError or
	// *InsufficientStockError with nothing mutated.
	RecordSale(ctx context.Context, lotID, quantity int64) (*Sale, error)
	// ListSales orders by sale date descending, newest first, with the
	// lot name left-joined in.
	ListSales(ctx context.Context) ([]Sale, error)

	TotalProfit(ctx context.Context) (float64, error)
	CountLots(ctx context.Context) (int64, error)
	SumQuantityOnHand(ctx context.Context) (int64, error)
	SumUnitsSold(ctx context.Context) (int64, error)

	Settings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}
