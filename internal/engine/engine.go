// Package engine implements the settlement operations of the bonding-curve
// pool platform: initialize, setParams, deposit, create, buy, sell and
// withdraw.
//
// Every operation follows the same commit protocol: load and validate the
// records, compute the quote with pure pricing code, stage all balance
// movements in a single ledger transaction, persist the mutated records,
// then commit the ledger transaction. Balance checks happen at stage time
// and commit cannot fail, so a rejected operation leaves ledger and stores
// untouched.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"curve-engine/internal/derive"
	"curve-engine/internal/domain"
	"curve-engine/internal/events"
	"curve-engine/internal/ledger"
	"curve-engine/internal/observability"
	"curve-engine/internal/pricing"
	"curve-engine/internal/storage"
)

// Deps carries the engine's collaborators.
type Deps struct {
	Configs storage.ConfigStore
	Pools   storage.PoolStore
	Trades  storage.TradeStore
	Ledger  ledger.Ledger
	Bus     *events.Bus
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// Engine executes settlement operations against the stores and the ledger.
type Engine struct {
	configs storage.ConfigStore
	pools   storage.PoolStore
	trades  storage.TradeStore
	ledger  ledger.Ledger
	bus     *events.Bus
	metrics *observability.Metrics
	logger  *zap.Logger

	nowFn func() int64 // Unix milliseconds; swapped out in tests

	configMu sync.Mutex // serializes config mutators

	poolMuMu sync.Mutex
	poolMu   map[domain.AssetID]*sync.Mutex // per-mint serialization
}

// New creates an Engine. All Deps fields are required.
func New(d Deps) *Engine {
	return &Engine{
		configs: d.Configs,
		pools:   d.Pools,
		trades:  d.Trades,
		ledger:  d.Ledger,
		bus:     d.Bus,
		metrics: d.Metrics,
		logger:  d.Logger.Named("engine"),
		nowFn:   func() int64 { return time.Now().UnixMilli() },
		poolMu:  make(map[domain.AssetID]*sync.Mutex),
	}
}

// Params are the mutable protocol parameters set by the authority.
type Params struct {
	FeeRecipient            domain.Identity
	OwnerWallet             domain.Identity
	PoolCreationTokenAmount uint64
	PoolCreationFeeAmount   uint64
	CreationFee             uint64
	FeeBasisPoints          uint64
	McapLimit               uint64
}

// Initialize creates the global config singleton. The caller becomes the
// immutable authority; fee recipient and owner wallet default to the
// authority until SetParams changes them. The protocol reserve vault is
// derived from the reserve mint.
func (e *Engine) Initialize(ctx context.Context, authority domain.Identity, reserveMint domain.AssetID) (*domain.GlobalConfig, error) {
	e.configMu.Lock()
	defer e.configMu.Unlock()

	if authority.IsZero() || reserveMint.IsZero() {
		return nil, fmt.Errorf("%w: zero authority or reserve mint", ErrInvalidAmount)
	}

	existing, err := e.configs.Get(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if existing != nil && existing.Initialized {
		e.metrics.RecordError("initialize", "already_initialized")
		return nil, ErrAlreadyInitialized
	}

	cfg := &domain.GlobalConfig{
		Initialized:  true,
		Authority:    authority,
		FeeRecipient: authority,
		OwnerWallet:  authority,
		ReserveMint:  reserveMint,
		ReserveVault: derive.GlobalReserveVault(reserveMint),
		UpdatedAt:    e.nowFn(),
	}
	if err := e.configs.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	e.logger.Info("initialized",
		zap.String("authority", authority.String()),
		zap.String("reserve_mint", reserveMint.String()))
	e.publish(ctx, events.ConfigUpdatedEvent{
		BaseEvent: e.baseEvent(events.ConfigUpdated),
		Authority: authority.String(),
	})
	return cfg, nil
}

// SetParams updates the mutable protocol parameters. Authority only.
func (e *Engine) SetParams(ctx context.Context, caller domain.Identity, p Params) (*domain.GlobalConfig, error) {
	e.configMu.Lock()
	defer e.configMu.Unlock()

	cfg, err := e.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if caller != cfg.Authority {
		e.metrics.RecordError("set_params", "unauthorized")
		return nil, ErrUnauthorized
	}
	if p.FeeRecipient.IsZero() || p.OwnerWallet.IsZero() {
		return nil, fmt.Errorf("%w: zero fee recipient or owner wallet", ErrInvalidAmount)
	}
	if p.FeeBasisPoints > domain.FeeBasisPointsDenom {
		return nil, fmt.Errorf("%w: fee basis points %d > %d", ErrInvalidAmount, p.FeeBasisPoints, domain.FeeBasisPointsDenom)
	}

	cfg.FeeRecipient = p.FeeRecipient
	cfg.OwnerWallet = p.OwnerWallet
	cfg.PoolCreationTokenAmount = p.PoolCreationTokenAmount
	cfg.PoolCreationFeeAmount = p.PoolCreationFeeAmount
	cfg.CreationFee = p.CreationFee
	cfg.FeeBasisPoints = p.FeeBasisPoints
	cfg.McapLimit = p.McapLimit
	cfg.UpdatedAt = e.nowFn()

	if err := e.configs.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	e.logger.Info("params updated",
		zap.String("fee_recipient", p.FeeRecipient.String()),
		zap.Uint64("fee_basis_points", p.FeeBasisPoints))
	e.publish(ctx, events.ConfigUpdatedEvent{
		BaseEvent: e.baseEvent(events.ConfigUpdated),
		Authority: cfg.Authority.String(),
	})
	return cfg, nil
}

// Deposit moves reserve asset from the authority into the protocol reserve
// vault and records it in ReserveSupply. Authority only.
func (e *Engine) Deposit(ctx context.Context, caller domain.Identity, amount uint64) error {
	e.configMu.Lock()
	defer e.configMu.Unlock()

	cfg, err := e.loadConfig(ctx)
	if err != nil {
		return err
	}
	if caller != cfg.Authority {
		e.metrics.RecordError("deposit", "unauthorized")
		return ErrUnauthorized
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if cfg.ReserveSupply > ^uint64(0)-amount {
		return fmt.Errorf("%w: reserve supply", ErrArithmeticOverflow)
	}

	tx := e.ledger.Begin()
	defer tx.Abort()

	if err := tx.Transfer(caller.Ref(), cfg.ReserveVault, cfg.ReserveMint, amount); err != nil {
		e.metrics.RecordError("deposit", "insufficient_funds")
		return e.mapLedgerErr(err)
	}

	cfg.ReserveSupply += amount
	cfg.UpdatedAt = e.nowFn()
	if err := e.configs.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	tx.Commit()

	e.logger.Info("reserve deposited",
		zap.Uint64("amount", amount),
		zap.Uint64("reserve_supply", cfg.ReserveSupply))
	return nil
}

// Create opens a bonding-curve pool for mint. The caller seeds the pool
// token vault with exactly the configured creation amount and pays the
// creation fee in reserve asset to the fee recipient.
func (e *Engine) Create(ctx context.Context, caller domain.Identity, mint domain.AssetID, initialPrice, curveSlope sdkmath.LegacyDec, seedAmount uint64) (*domain.BondingCurvePool, error) {
	unlock := e.lockPool(mint)
	defer unlock()

	cfg, err := e.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if mint.IsZero() || mint == cfg.ReserveMint {
		return nil, fmt.Errorf("%w: invalid mint", ErrInvalidAmount)
	}
	if initialPrice.IsNil() || initialPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if curveSlope.IsNil() || curveSlope.IsNegative() {
		return nil, ErrInvalidSlope
	}
	if initialPrice.IsZero() && curveSlope.IsZero() {
		return nil, fmt.Errorf("%w: curve can never quote a positive price", ErrInvalidPrice)
	}
	if seedAmount == 0 {
		return nil, ErrZeroAmount
	}
	if seedAmount != cfg.PoolCreationTokenAmount {
		e.metrics.RecordError("create", "seed_mismatch")
		return nil, fmt.Errorf("%w: seed %d, configured %d", ErrInvalidAmount, seedAmount, cfg.PoolCreationTokenAmount)
	}
	if _, err := e.pools.GetByMint(ctx, mint); err == nil {
		return nil, ErrPoolAlreadyExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load pool: %w", err)
	}

	now := e.nowFn()
	pool := &domain.BondingCurvePool{
		Mint:             mint,
		Creator:          caller,
		InitialPrice:     initialPrice,
		CurveSlope:       curveSlope,
		TokenReserves:    0,
		TokenTotalSupply: seedAmount,
		McapLimit:        cfg.McapLimit,
		TokenVault:       derive.PoolTokenVault(mint),
		ReserveVault:     derive.PoolReserveVault(mint),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	tx := e.ledger.Begin()
	defer tx.Abort()

	if cfg.PoolCreationFeeAmount > ^uint64(0)-cfg.CreationFee {
		return nil, fmt.Errorf("%w: creation fee", ErrArithmeticOverflow)
	}
	creationFee := cfg.PoolCreationFeeAmount + cfg.CreationFee
	if creationFee > 0 {
		if err := tx.Transfer(caller.Ref(), cfg.FeeRecipient.Ref(), cfg.ReserveMint, creationFee); err != nil {
			e.metrics.RecordError("create", "insufficient_funds")
			return nil, e.mapLedgerErr(err)
		}
	}
	if err := tx.Transfer(caller.Ref(), pool.TokenVault, mint, seedAmount); err != nil {
		e.metrics.RecordError("create", "insufficient_funds")
		return nil, e.mapLedgerErr(err)
	}

	if err := e.pools.Insert(ctx, pool); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrPoolAlreadyExists
		}
		return nil, fmt.Errorf("insert pool: %w", err)
	}
	tx.Commit()

	e.metrics.PoolsCreated.Inc()
	e.logger.Info("pool created",
		zap.String("mint", mint.String()),
		zap.String("creator", caller.String()),
		zap.String("initial_price", initialPrice.String()),
		zap.String("curve_slope", curveSlope.String()),
		zap.Uint64("seed_amount", seedAmount))
	e.publish(ctx, events.PoolCreatedEvent{
		BaseEvent:     e.baseEvent(events.PoolCreated),
		Mint:          mint.String(),
		Creator:       caller.String(),
		InitialPrice:  initialPrice.String(),
		CurveSlope:    curveSlope.String(),
		TokenReserves: 0,
	})
	return pool, nil
}

// Buy purchases tokenAmount project-asset units from the pool. The cost is
// the curve integral rounded up; the protocol fee is charged on top of the
// cost so the pool reserve vault always receives the full curve cost and
// stays solvent against future sells. The operation fails
// ErrSlippageExceeded when the total spend exceeds maxReserveSpend
// (equality succeeds).
func (e *Engine) Buy(ctx context.Context, caller domain.Identity, mint domain.AssetID, tokenAmount, maxReserveSpend uint64) (*domain.TradeEvent, error) {
	unlock := e.lockPool(mint)
	defer unlock()

	cfg, pool, err := e.loadTradable(ctx, mint)
	if err != nil {
		return nil, err
	}
	if tokenAmount == 0 {
		return nil, ErrZeroAmount
	}

	costDec, err := pricing.BuyCost(pool.InitialPrice, pool.CurveSlope, pool.TokenReserves, tokenAmount)
	if err != nil {
		return nil, e.mapPricingErr(err)
	}
	cost, err := pricing.CeilUint64(costDec)
	if err != nil {
		return nil, e.mapPricingErr(err)
	}
	fee := feeOf(cost, cfg.FeeBasisPoints)
	if cost > ^uint64(0)-fee {
		return nil, fmt.Errorf("%w: cost plus fee", ErrArithmeticOverflow)
	}
	total := cost + fee
	if total > maxReserveSpend {
		e.metrics.RecordError("buy", "slippage")
		return nil, fmt.Errorf("%w: cost %d > max spend %d", ErrSlippageExceeded, total, maxReserveSpend)
	}

	if pool.TokenReserves > ^uint64(0)-tokenAmount {
		return nil, fmt.Errorf("%w: token reserves", ErrArithmeticOverflow)
	}

	vaultTokens, err := e.ledger.BalanceOf(ctx, pool.TokenVault, mint)
	if err != nil {
		return nil, fmt.Errorf("token vault balance: %w", err)
	}
	if vaultTokens < tokenAmount {
		e.metrics.RecordError("buy", "insufficient_liquidity")
		return nil, fmt.Errorf("%w: vault holds %d, want %d", ErrInsufficientLiquidity, vaultTokens, tokenAmount)
	}

	tx := e.ledger.Begin()
	defer tx.Abort()

	if fee > 0 {
		if err := tx.Transfer(caller.Ref(), cfg.FeeRecipient.Ref(), cfg.ReserveMint, fee); err != nil {
			e.metrics.RecordError("buy", "insufficient_funds")
			return nil, e.mapLedgerErr(err)
		}
	}
	if err := tx.Transfer(caller.Ref(), pool.ReserveVault, cfg.ReserveMint, cost); err != nil {
		e.metrics.RecordError("buy", "insufficient_funds")
		return nil, e.mapLedgerErr(err)
	}
	if err := tx.Transfer(pool.TokenVault, caller.Ref(), mint, tokenAmount); err != nil {
		e.metrics.RecordError("buy", "insufficient_liquidity")
		return nil, fmt.Errorf("%w: %v", ErrInsufficientLiquidity, err)
	}

	pool.TokenReserves += tokenAmount
	now := e.nowFn()
	pool.UpdatedAt = now

	// Completion: the buy that pushes the market cap past the pool's
	// limit freezes the curve. The completing trade itself settles.
	if pool.McapLimit > 0 {
		limit := sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(pool.McapLimit))
		if pool.MarketCap().GT(limit) {
			pool.Complete = true
		}
	}

	trade := &domain.TradeEvent{
		TradeID:       derive.TradeID(mint, caller, domain.TradeSideBuy, tokenAmount, total, now),
		Mint:          mint,
		User:          caller,
		Side:          domain.TradeSideBuy,
		TokenAmount:   tokenAmount,
		ReserveAmount: total,
		FeeAmount:     fee,
		TokenReserves: pool.TokenReserves,
		Price:         pricing.Price(pool.InitialPrice, pool.CurveSlope, pool.TokenReserves).String(),
		Timestamp:     now,
	}
	if err := e.settleTrade(ctx, pool, trade); err != nil {
		return nil, err
	}
	tx.Commit()

	e.recordTrade(ctx, trade)
	if pool.Complete {
		e.metrics.PoolsCompleted.Inc()
		e.logger.Info("bonding curve complete",
			zap.String("mint", mint.String()),
			zap.String("user", caller.String()),
			zap.String("market_cap", pool.MarketCap().String()),
			zap.Uint64("mcap_limit", pool.McapLimit))
		e.publish(ctx, events.CurveCompletedEvent{
			BaseEvent: e.baseEvent(events.CurveCompleted),
			Mint:      mint.String(),
			User:      caller.String(),
			MarketCap: pool.MarketCap().String(),
		})
	}
	return trade, nil
}

// Sell returns tokenAmount project-asset units to the pool. Proceeds are
// the trapezoidal average price times the amount, rounded down; the
// operation fails ErrSlippageExceeded when proceeds fall below
// minReserveReturn. The protocol fee is carved out of the proceeds.
func (e *Engine) Sell(ctx context.Context, caller domain.Identity, mint domain.AssetID, tokenAmount, minReserveReturn uint64) (*domain.TradeEvent, error) {
	unlock := e.lockPool(mint)
	defer unlock()

	cfg, pool, err := e.loadTradable(ctx, mint)
	if err != nil {
		return nil, err
	}
	if tokenAmount == 0 {
		return nil, ErrZeroAmount
	}
	if tokenAmount > pool.TokenReserves {
		e.metrics.RecordError("sell", "insufficient_reserves")
		return nil, fmt.Errorf("%w: reserves %d, want %d", ErrInsufficientReserves, pool.TokenReserves, tokenAmount)
	}

	proceedsDec, err := pricing.SellProceeds(pool.InitialPrice, pool.CurveSlope, pool.TokenReserves, tokenAmount)
	if err != nil {
		return nil, e.mapPricingErr(err)
	}
	proceeds, err := pricing.FloorUint64(proceedsDec)
	if err != nil {
		return nil, e.mapPricingErr(err)
	}
	// minReserveReturn bounds the gross proceeds; the fee comes out
	// afterwards, so the net credited can fall below the limit by up to
	// the fee. Buys, in contrast, check slippage on cost plus fee.
	if proceeds < minReserveReturn {
		e.metrics.RecordError("sell", "slippage")
		return nil, fmt.Errorf("%w: proceeds %d < min return %d", ErrSlippageExceeded, proceeds, minReserveReturn)
	}
	fee := feeOf(proceeds, cfg.FeeBasisPoints)
	net := proceeds - fee

	tx := e.ledger.Begin()
	defer tx.Abort()

	if err := tx.Transfer(caller.Ref(), pool.TokenVault, mint, tokenAmount); err != nil {
		e.metrics.RecordError("sell", "insufficient_funds")
		return nil, e.mapLedgerErr(err)
	}
	if fee > 0 {
		if err := tx.Transfer(pool.ReserveVault, cfg.FeeRecipient.Ref(), cfg.ReserveMint, fee); err != nil {
			e.metrics.RecordError("sell", "insufficient_funds")
			return nil, e.mapLedgerErr(err)
		}
	}
	if net > 0 {
		if err := tx.Transfer(pool.ReserveVault, caller.Ref(), cfg.ReserveMint, net); err != nil {
			e.metrics.RecordError("sell", "insufficient_funds")
			return nil, e.mapLedgerErr(err)
		}
	}

	pool.TokenReserves -= tokenAmount
	now := e.nowFn()
	pool.UpdatedAt = now

	trade := &domain.TradeEvent{
		TradeID:       derive.TradeID(mint, caller, domain.TradeSideSell, tokenAmount, proceeds, now),
		Mint:          mint,
		User:          caller,
		Side:          domain.TradeSideSell,
		TokenAmount:   tokenAmount,
		ReserveAmount: proceeds,
		FeeAmount:     fee,
		TokenReserves: pool.TokenReserves,
		Price:         pricing.Price(pool.InitialPrice, pool.CurveSlope, pool.TokenReserves).String(),
		Timestamp:     now,
	}
	if err := e.settleTrade(ctx, pool, trade); err != nil {
		return nil, err
	}
	tx.Commit()

	e.recordTrade(ctx, trade)
	return trade, nil
}

// Withdraw sweeps the pool's token and reserve vaults to the owner wallet
// and retires the pool: reserves reset to zero and the pool stops trading.
// Owner wallet only.
func (e *Engine) Withdraw(ctx context.Context, caller domain.Identity, mint domain.AssetID) (tokensSwept, reserveSwept uint64, err error) {
	unlock := e.lockPool(mint)
	defer unlock()

	cfg, err := e.loadConfig(ctx)
	if err != nil {
		return 0, 0, err
	}
	if caller != cfg.OwnerWallet {
		e.metrics.RecordError("withdraw", "unauthorized")
		return 0, 0, ErrUnauthorized
	}
	pool, err := e.loadPool(ctx, mint)
	if err != nil {
		return 0, 0, err
	}
	if pool.Withdrawn {
		return 0, 0, ErrPoolWithdrawn
	}

	tokensSwept, err = e.ledger.BalanceOf(ctx, pool.TokenVault, mint)
	if err != nil {
		return 0, 0, fmt.Errorf("token vault balance: %w", err)
	}
	reserveSwept, err = e.ledger.BalanceOf(ctx, pool.ReserveVault, cfg.ReserveMint)
	if err != nil {
		return 0, 0, fmt.Errorf("reserve vault balance: %w", err)
	}

	tx := e.ledger.Begin()
	defer tx.Abort()

	if tokensSwept > 0 {
		if err := tx.Transfer(pool.TokenVault, caller.Ref(), mint, tokensSwept); err != nil {
			return 0, 0, e.mapLedgerErr(err)
		}
	}
	if reserveSwept > 0 {
		if err := tx.Transfer(pool.ReserveVault, caller.Ref(), cfg.ReserveMint, reserveSwept); err != nil {
			return 0, 0, e.mapLedgerErr(err)
		}
	}

	pool.TokenReserves = 0
	pool.Withdrawn = true
	pool.UpdatedAt = e.nowFn()
	if err := e.pools.Update(ctx, pool); err != nil {
		return 0, 0, fmt.Errorf("update pool: %w", err)
	}
	tx.Commit()

	e.metrics.PoolsWithdrawn.Inc()
	e.logger.Info("pool withdrawn",
		zap.String("mint", mint.String()),
		zap.Uint64("tokens_swept", tokensSwept),
		zap.Uint64("reserve_swept", reserveSwept))
	e.publish(ctx, events.PoolWithdrawnEvent{
		BaseEvent:       e.baseEvent(events.PoolWithdrawn),
		Mint:            mint.String(),
		TokensWithdrawn: tokensSwept,
		ReserveProceeds: reserveSwept,
	})
	return tokensSwept, reserveSwept, nil
}

// settleTrade persists the trade record and the mutated pool. The trade is
// written first: an append-only record without a matching pool update is
// harmless, the reverse is not.
func (e *Engine) settleTrade(ctx context.Context, pool *domain.BondingCurvePool, trade *domain.TradeEvent) error {
	if err := e.trades.Insert(ctx, trade); err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	if err := e.pools.Update(ctx, pool); err != nil {
		e.logger.Error("pool update failed after trade insert, trade record is orphaned",
			zap.String("trade_id", trade.TradeID),
			zap.Error(err))
		return fmt.Errorf("update pool: %w", err)
	}
	return nil
}

func (e *Engine) recordTrade(ctx context.Context, trade *domain.TradeEvent) {
	e.metrics.RecordTrade(trade.Side, trade.TokenAmount, trade.ReserveAmount, trade.FeeAmount, trade.Timestamp)
	e.logger.Info("trade settled",
		zap.String("trade_id", trade.TradeID),
		zap.String("mint", trade.Mint.String()),
		zap.String("side", trade.Side),
		zap.Uint64("token_amount", trade.TokenAmount),
		zap.Uint64("reserve_amount", trade.ReserveAmount),
		zap.Uint64("fee_amount", trade.FeeAmount),
		zap.Uint64("token_reserves", trade.TokenReserves))
	e.publish(ctx, events.TradeSettledEvent{
		BaseEvent: e.baseEvent(events.TradeSettled),
		Trade:     trade,
	})
}

func (e *Engine) loadConfig(ctx context.Context) (*domain.GlobalConfig, error) {
	cfg, err := e.configs.Get(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !cfg.Initialized {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}

func (e *Engine) loadPool(ctx context.Context, mint domain.AssetID) (*domain.BondingCurvePool, error) {
	pool, err := e.pools.GetByMint(ctx, mint)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPoolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	return pool, nil
}

// loadTradable loads config and pool for a buy or sell.
func (e *Engine) loadTradable(ctx context.Context, mint domain.AssetID) (*domain.GlobalConfig, *domain.BondingCurvePool, error) {
	cfg, err := e.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	pool, err := e.loadPool(ctx, mint)
	if err != nil {
		return nil, nil, err
	}
	if pool.Withdrawn {
		return nil, nil, ErrPoolWithdrawn
	}
	if pool.Complete {
		return nil, nil, ErrCurveComplete
	}
	return cfg, pool, nil
}

// lockPool serializes operations on one mint.
func (e *Engine) lockPool(mint domain.AssetID) func() {
	e.poolMuMu.Lock()
	mu, ok := e.poolMu[mint]
	if !ok {
		mu = &sync.Mutex{}
		e.poolMu[mint] = mu
	}
	e.poolMuMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if err := e.bus.Publish(ctx, event); err != nil {
		e.logger.Warn("event publish failed", zap.Error(err))
	}
}

func (e *Engine) baseEvent(t events.EventType) events.BaseEvent {
	return events.BaseEvent{EventType: t, EventTime: time.UnixMilli(e.nowFn())}
}

func (e *Engine) mapLedgerErr(err error) error {
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		return fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	}
	if errors.Is(err, ledger.ErrBalanceOverflow) {
		return fmt.Errorf("%w: %v", ErrArithmeticOverflow, err)
	}
	return err
}

func (e *Engine) mapPricingErr(err error) error {
	switch {
	case errors.Is(err, pricing.ErrOverflow):
		return fmt.Errorf("%w: %v", ErrArithmeticOverflow, err)
	case errors.Is(err, pricing.ErrReservesExceeded):
		return fmt.Errorf("%w: %v", ErrInsufficientReserves, err)
	case errors.Is(err, pricing.ErrZeroPrice), errors.Is(err, pricing.ErrInvalidCurve):
		return fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	default:
		return err
	}
}

// feeOf computes amount*bps/10000 rounded down, in big arithmetic so the
// intermediate product cannot overflow.
func feeOf(amount, bps uint64) uint64 {
	if bps == 0 || amount == 0 {
		return 0
	}
	fee := sdkmath.NewIntFromUint64(amount).
		Mul(sdkmath.NewIntFromUint64(bps)).
		Quo(sdkmath.NewInt(domain.FeeBasisPointsDenom))
	return fee.Uint64()
}
