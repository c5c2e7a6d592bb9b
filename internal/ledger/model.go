package ledger

import "time"

// Lot is one purchased batch: same product, same price, same expiry,
// tracked as a single inventory row. Quantity only ever goes down after
// the purchase; lots are never deleted, a sold-out lot stays at zero.
type Lot struct {
	ID         int64
	Name       string
	Quantity   int64
	BuyPrice   float64 // per unit, IQD
	SellPrice  float64 // per unit, IQD
	Expiration *time.Time
	CreatedAt  time.Time
}

// Sale is an immutable ledger entry. Unit price and unit cost are
// snapshots taken at sale time; later edits to the lot's prices must not
// change what history reports. LotID is a weak reference — the lot may be
// gone by the time the row is read, so LotName comes from a left join and
// may be empty.
type Sale struct {
	ID        int64
	LotID     *int64
	LotName   string
	Quantity  int64
	UnitPrice float64
	UnitCost  float64
	Total     float64
	Profit    float64
	SoldAt    time.Time
}

// Receipt is what SellUnits hands back to the caller.
type Receipt struct {
	SaleID   int64
	LotID    int64
	Quantity int64
	Total    float64
	Profit   float64
}

// Settings is the singleton configuration record.
type Settings struct {
	USDToIQDRate      float64
	LowStockThreshold int64
}

// DefaultSettings are seeded on first start.
var DefaultSettings = Settings{USDToIQDRate: 1500, LowStockThreshold: 5}

type LowStockItem struct {
	Name     string
	Quantity int64
}

type ExpiringItem struct {
	Name       string
	Expiration time.Time
}

// Summary is the read-only aggregate behind the dashboard page.
type Summary struct {
	TotalLotCount       int64
	TotalQuantityOnHand int64
	TotalUnitsSold      int64
	TotalProfit         float64
	LowStockItems       []LowStockItem
	ExpiringSoonItems   []ExpiringItem
}
