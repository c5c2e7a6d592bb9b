package dialog

type State string

const (
	StateIdle State = "idle"

	// Buy form
	StateBuyName      State = "buy_name"
	StateBuyQty       State = "buy_qty"
	StateBuyBuyPrice  State = "buy_buy_price"
	StateBuySellPrice State = "buy_sell_price"
	StateBuyExpiry    State = "buy_expiry"
	StateBuyConfirm   State = "buy_confirm"

	// Sell form
	StateSellPickLot State = "sell_pick_lot"
	StateSellQty     State = "sell_qty"

	// Stock page
	StateStockSearch State = "stock_search"

	// Settings page
	StateSettingsRate      State = "settings_rate"
	StateSettingsThreshold State = "settings_threshold"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}

// GetString reads a string value out of the payload.
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt64 reads a numeric value out of the payload. Values round-trip
// through JSON, so numbers come back as float64.
func GetInt64(p Payload, key string) (int64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// GetFloat reads a float value out of the payload.
func GetFloat(p Payload, key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
