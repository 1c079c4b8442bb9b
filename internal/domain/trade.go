package domain

// TradeEvent is the persisted record of one settled buy or sell.
// Corresponds to the trade_events table in PostgreSQL and the
// trade_timeseries table in ClickHouse.
type TradeEvent struct {
	TradeID string // deterministic hash, see internal/derive

	Mint AssetID  // project asset traded
	User Identity // caller
	Side string   // "buy" | "sell"

	TokenAmount   uint64 // project-asset units moved
	ReserveAmount uint64 // gross reserve-asset notional (fee included)
	FeeAmount     uint64 // protocol fee portion of ReserveAmount

	TokenReserves uint64 // pool reserves after settlement
	Price         string // unit price after settlement, decimal string

	Timestamp int64 // Unix timestamp in milliseconds
}

// Trade side constants
const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"
)
