package events

import (
	"time"

	"curve-engine/internal/domain"
)

// EventType identifies the kind of event on the bus.
type EventType string

const (
	ConfigUpdated  EventType = "config.updated"
	PoolCreated    EventType = "pool.created"
	PoolWithdrawn  EventType = "pool.withdrawn"
	CurveCompleted EventType = "curve.completed"
	TradeSettled   EventType = "trade.settled"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// ConfigUpdatedEvent is emitted when the global config is initialized or
// its parameters change.
type ConfigUpdatedEvent struct {
	BaseEvent
	Authority string
}

// PoolCreatedEvent is emitted when a new bonding curve pool is created.
type PoolCreatedEvent struct {
	BaseEvent
	Mint          string
	Creator       string
	InitialPrice  string
	CurveSlope    string
	TokenReserves uint64
}

// PoolWithdrawnEvent is emitted when the owner sweeps a pool's vaults.
type PoolWithdrawnEvent struct {
	BaseEvent
	Mint            string
	TokensWithdrawn uint64
	ReserveProceeds uint64
}

// CurveCompletedEvent is emitted when a buy pushes the pool market cap
// past its limit and the curve stops trading.
type CurveCompletedEvent struct {
	BaseEvent
	Mint      string
	User      string
	MarketCap string
}

// TradeSettledEvent is emitted after a buy or sell commits.
type TradeSettledEvent struct {
	BaseEvent
	Trade *domain.TradeEvent
}
