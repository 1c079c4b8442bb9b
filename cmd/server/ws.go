package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"curve-engine/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWS streams settled trades and pool lifecycle events to the client
// as JSON messages, one per event.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	var writeMu sync.Mutex
	send := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	subs := []events.Subscription{
		s.bus.SubscribeFunc(events.TradeSettled, func(_ context.Context, ev events.Event) error {
			e := ev.(events.TradeSettledEvent)
			return send(map[string]any{
				"type":  string(ev.Type()),
				"trade": tradeResponse(e.Trade),
			})
		}),
		s.bus.SubscribeFunc(events.PoolCreated, func(_ context.Context, ev events.Event) error {
			e := ev.(events.PoolCreatedEvent)
			return send(map[string]any{
				"type":           string(ev.Type()),
				"mint":           e.Mint,
				"creator":        e.Creator,
				"initial_price":  e.InitialPrice,
				"curve_slope":    e.CurveSlope,
				"token_reserves": e.TokenReserves,
			})
		}),
		s.bus.SubscribeFunc(events.CurveCompleted, func(_ context.Context, ev events.Event) error {
			e := ev.(events.CurveCompletedEvent)
			return send(map[string]any{
				"type":       string(ev.Type()),
				"mint":       e.Mint,
				"user":       e.User,
				"market_cap": e.MarketCap,
			})
		}),
		s.bus.SubscribeFunc(events.PoolWithdrawn, func(_ context.Context, ev events.Event) error {
			e := ev.(events.PoolWithdrawnEvent)
			return send(map[string]any{
				"type":             string(ev.Type()),
				"mint":             e.Mint,
				"tokens_withdrawn": e.TokensWithdrawn,
				"reserve_proceeds": e.ReserveProceeds,
			})
		}),
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
		conn.Close()
	}()

	s.logger.Debug("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Read loop only detects disconnect; incoming messages are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
