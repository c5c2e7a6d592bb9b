// Package postgres is the pgx-backed Store. Multi-statement writes run in
// a pool transaction with the lot row locked, so two concurrent sells can
// never both observe the same stale quantity.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hawkar/dukan-bot/internal/ledger"
)

type Store struct{ pool *pgxpool.Pool }

func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

var _ ledger.Store = (*Store)(nil)

const lotColumns = `id, name, quantity, buy_price, sell_price, expiration_date, created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so a search term is always a
// literal substring, matching the memory store's strings.Contains.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

func scanLot(row pgx.Row) (*ledger.Lot, error) {
	var l ledger.Lot
	err := row.Scan(&l.ID, &l.Name, &l.Quantity, &l.BuyPrice, &l.SellPrice, &l.Expiration, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) InsertLot(ctx context.Context, f ledger.LotFields) (*ledger.Lot, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO products (name, quantity, buy_price, sell_price, expiration_date)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+lotColumns+`
	`, f.Name, f.Quantity, f.BuyPrice, f.SellPrice, f.Expiration)
	lot, err := scanLot(row)
	if err != nil {
		return nil, ledger.WrapStorage("insert lot", err)
	}
	return lot, nil
}

func (s *Store) GetLot(ctx context.Context, id int64) (*ledger.Lot, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+lotColumns+` FROM products WHERE id = $1`, id)
	lot, err := scanLot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ledger.WrapStorage("get lot", err)
	}
	return lot, nil
}

func (s *Store) FindLot(ctx context.Context, name string, expiration *time.Time) (*ledger.Lot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+lotColumns+` FROM products
		WHERE name = $1 AND expiration_date IS NOT DISTINCT FROM $2::date
		ORDER BY id
		LIMIT 1
	`, name, expiration)
	lot, err := scanLot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ledger.WrapStorage("find lot", err)
	}
	return lot, nil
}

// RestockLot adds the restocked quantity in SQL rather than writing back
// a quantity read earlier, so a sale committing in between is preserved.
func (s *Store) RestockLot(ctx context.Context, id, addQuantity int64, buyPrice, sellPrice float64) (*ledger.Lot, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE products SET quantity = quantity + $2, buy_price=$3, sell_price=$4
		WHERE id=$1
		RETURNING `+lotColumns+`
	`, id, addQuantity, buyPrice, sellPrice)
	lot, err := scanLot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ledger.NotFoundError{LotID: id}
	}
	if err != nil {
		return nil, ledger.WrapStorage("restock lot", err)
	}
	return lot, nil
}

func (s *Store) ListLots(ctx context.Context, nameFilter string) ([]ledger.Lot, error) {
	base := `SELECT ` + lotColumns + ` FROM products`
	order := ` ORDER BY expiration_date ASC NULLS LAST, id`

	var rows pgx.Rows
	var err error
	if nameFilter = strings.TrimSpace(nameFilter); nameFilter != "" {
		like := "%" + escapeLike(strings.ToLower(nameFilter)) + "%"
		rows, err = s.pool.Query(ctx, base+` WHERE LOWER(name) LIKE $1 ESCAPE '\'`+order, like)
	} else {
		rows, err = s.pool.Query(ctx, base+order)
	}
	if err != nil {
		return nil, ledger.WrapStorage("list lots", err)
	}
	defer rows.Close()

	var out []ledger.Lot
	for rows.Next() {
		var l ledger.Lot
		if err := rows.Scan(&l.ID, &l.Name, &l.Quantity, &l.BuyPrice, &l.SellPrice, &l.Expiration, &l.CreatedAt); err != nil {
			return nil, ledger.WrapStorage("list lots", err)
		}
		out = append(out, l)
	}
	return out, ledger.WrapStorage("list lots", rows.Err())
}

func (s *Store) ListInStock(ctx context.Context) ([]ledger.Lot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+lotColumns+` FROM products
		WHERE quantity > 0
		ORDER BY name, id
	`)
	if err != nil {
		return nil, ledger.WrapStorage("list in stock", err)
	}
	defer rows.Close()

	var out []ledger.Lot
	for rows.Next() {
		var l ledger.Lot
		if err := rows.Scan(&l.ID, &l.Name, &l.Quantity, &l.BuyPrice, &l.SellPrice, &l.Expiration, &l.CreatedAt); err != nil {
			return nil, ledger.WrapStorage("list in stock", err)
		}
		out = append(out, l)
	}
	return out, ledger.WrapStorage("list in stock", rows.Err())
}

// RecordSale locks the lot row, checks stock, decrements and inserts the
// sale with price snapshots. All of it commits or none of it does.
func (s *Store) RecordSale(ctx context.Context, lotID, quantity int64) (*ledger.Sale, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, ledger.WrapStorage("record sale: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		name      string
		onHand    int64
		buyPrice  float64
		sellPrice float64
	)
	err = tx.QueryRow(ctx, `
		SELECT name, quantity, buy_price, sell_price FROM products
		WHERE id = $1
		FOR UPDATE
	`, lotID).Scan(&name, &onHand, &buyPrice, &sellPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ledger.NotFoundError{LotID: lotID}
	}
	if err != nil {
		return nil, ledger.WrapStorage("record sale: lock lot", err)
	}
	if onHand < quantity {
		return nil, &ledger.InsufficientStockError{LotID: lotID, Requested: quantity, Available: onHand}
	}

	if _, err = tx.Exec(ctx, `
		UPDATE products SET quantity = quantity - $2 WHERE id = $1
	`, lotID, quantity); err != nil {
		return nil, ledger.WrapStorage("record sale: decrement", err)
	}

	total := sellPrice * float64(quantity)
	profit := (sellPrice - buyPrice) * float64(quantity)

	sale := ledger.Sale{
		LotID:     &lotID,
		LotName:   name,
		Quantity:  quantity,
		UnitPrice: sellPrice,
		UnitCost:  buyPrice,
		Total:     total,
		Profit:    profit,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (product_id, quantity_sold, unit_price_at_sale, unit_cost_at_sale, total_price, profit)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, sale_date
	`, lotID, quantity, sellPrice, buyPrice, total, profit).Scan(&sale.ID, &sale.SoldAt)
	if err != nil {
		return nil, ledger.WrapStorage("record sale: insert", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, ledger.WrapStorage("record sale: commit", err)
	}
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.product_id, COALESCE(p.name,''), s.quantity_sold,
		       s.unit_price_at_sale, s.unit_cost_at_sale, s.total_price, s.profit, s.sale_date
		FROM sales s
		LEFT JOIN products p ON p.id = s.product_id
		ORDER BY s.sale_date DESC, s.id DESC
	`)
	if err != nil {
		return nil, ledger.WrapStorage("list sales", err)
	}
	defer rows.Close()

	var out []ledger.Sale
	for rows.Next() {
		var sale ledger.Sale
		if err := rows.Scan(
			&sale.ID,
			&sale.LotID,
			&sale.LotName,
			&sale.Quantity,
			&sale.UnitPrice,
			&sale.UnitCost,
			&sale.Total,
			&sale.Profit,
			&sale.SoldAt,
		); err != nil {
			return nil, ledger.WrapStorage("list sales", err)
		}
		out = append(out, sale)
	}
	return out, ledger.WrapStorage("list sales", rows.Err())
}

func (s *Store) TotalProfit(ctx context.Context) (float64, error) {
	var total float64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(profit), 0) FROM sales`).Scan(&total)
	return total, ledger.WrapStorage("total profit", err)
}

func (s *Store) CountLots(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, ledger.WrapStorage("count lots", err)
}

func (s *Store) SumQuantityOnHand(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM products`).Scan(&n)
	return n, ledger.WrapStorage("sum on hand", err)
}

func (s *Store) SumUnitsSold(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(quantity_sold), 0) FROM sales`).Scan(&n)
	return n, ledger.WrapStorage("sum units sold", err)
}

func (s *Store) Settings(ctx context.Context) (ledger.Settings, error) {
	var st ledger.Settings
	err := s.pool.QueryRow(ctx, `
		SELECT usd_to_iqd_rate, low_stock_threshold FROM settings WHERE id = 1
	`).Scan(&st.USDToIQDRate, &st.LowStockThreshold)
	if errors.Is(err, pgx.ErrNoRows) {
		// migration seeds the row; absence means a fresh manual schema
		return ledger.DefaultSettings, nil
	}
	return st, ledger.WrapStorage("get settings", err)
}

func (s *Store) SaveSettings(ctx context.Context, st ledger.Settings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (id, usd_to_iqd_rate, low_stock_threshold)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
		  usd_to_iqd_rate = EXCLUDED.usd_to_iqd_rate,
		  low_stock_threshold = EXCLUDED.low_stock_threshold
	`, st.USDToIQDRate, st.LowStockThreshold)
	return ledger.WrapStorage("save settings", err)
}
