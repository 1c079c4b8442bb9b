package engine

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"curve-engine/internal/domain"
	"curve-engine/internal/pricing"
)

// Quote is a read-only price computation against current pool state.
// Nothing is settled; the amounts use the same rounding as settlement, so
// a quote followed immediately by the trade on unchanged state matches.
type Quote struct {
	Mint          domain.AssetID
	Side          string
	TokenAmount   uint64
	ReserveAmount uint64 // gross: buy cost or sell proceeds, fee included
	FeeAmount     uint64
	SpotPrice     string // unit price after the quoted trade
}

// QuoteBuy prices a purchase of tokenAmount units.
func (e *Engine) QuoteBuy(ctx context.Context, mint domain.AssetID, tokenAmount uint64) (*Quote, error) {
	defer e.observeQuote("buy", time.Now())

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
	if pool.TokenReserves > ^uint64(0)-tokenAmount {
		return nil, fmt.Errorf("%w: token reserves", ErrArithmeticOverflow)
	}

	fee := feeOf(cost, cfg.FeeBasisPoints)
	if cost > ^uint64(0)-fee {
		return nil, fmt.Errorf("%w: cost plus fee", ErrArithmeticOverflow)
	}
	return &Quote{
		Mint:          mint,
		Side:          domain.TradeSideBuy,
		TokenAmount:   tokenAmount,
		ReserveAmount: cost + fee,
		FeeAmount:     fee,
		SpotPrice:     pricing.Price(pool.InitialPrice, pool.CurveSlope, pool.TokenReserves+tokenAmount).String(),
	}, nil
}

// QuoteSell prices a sale of tokenAmount units.
func (e *Engine) QuoteSell(ctx context.Context, mint domain.AssetID, tokenAmount uint64) (*Quote, error) {
	defer e.observeQuote("sell", time.Now())

	cfg, pool, err := e.loadTradable(ctx, mint)
	if err != nil {
		return nil, err
	}
	if tokenAmount == 0 {
		return nil, ErrZeroAmount
	}
	if tokenAmount > pool.TokenReserves {
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

	return &Quote{
		Mint:          mint,
		Side:          domain.TradeSideSell,
		TokenAmount:   tokenAmount,
		ReserveAmount: proceeds,
		FeeAmount:     feeOf(proceeds, cfg.FeeBasisPoints),
		SpotPrice:     pricing.Price(pool.InitialPrice, pool.CurveSlope, pool.TokenReserves-tokenAmount).String(),
	}, nil
}

// QuoteBudget answers how many whole tokens a reserve-asset budget buys at
// current state, flooring the token amount.
func (e *Engine) QuoteBudget(ctx context.Context, mint domain.AssetID, budget uint64) (*Quote, error) {
	defer e.observeQuote("budget", time.Now())

	cfg, pool, err := e.loadTradable(ctx, mint)
	if err != nil {
		return nil, err
	}
	if budget == 0 {
		return nil, ErrZeroAmount
	}

	// The fee is charged on top of the curve cost, so only
	// budget * denom/(denom+bps) of the budget reaches the curve.
	budgetDec := sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(budget)).
		MulInt64(domain.FeeBasisPointsDenom).
		QuoInt64(domain.FeeBasisPointsDenom + int64(cfg.FeeBasisPoints))
	tokensDec, err := pricing.TokensForBudget(pool.InitialPrice, pool.CurveSlope, pool.TokenReserves, budgetDec)
	if err != nil {
		return nil, e.mapPricingErr(err)
	}
	tokens, err := pricing.FloorUint64(tokensDec)
	if err != nil {
		return nil, e.mapPricingErr(err)
	}

	// Integer rounding can push the quoted spend just past the budget;
	// shave tokens until it fits.
	for tokens > 0 {
		quote, err := e.QuoteBuy(ctx, mint, tokens)
		if err != nil {
			return nil, err
		}
		if quote.ReserveAmount <= budget {
			return quote, nil
		}
		tokens--
	}
	return &Quote{Mint: mint, Side: domain.TradeSideBuy, SpotPrice: pool.SpotPrice().String()}, nil
}

// Config returns the global config, or ErrNotInitialized.
func (e *Engine) Config(ctx context.Context) (*domain.GlobalConfig, error) {
	return e.loadConfig(ctx)
}

// Pool returns the pool for mint, or ErrPoolNotFound.
func (e *Engine) Pool(ctx context.Context, mint domain.AssetID) (*domain.BondingCurvePool, error) {
	return e.loadPool(ctx, mint)
}

// Pools lists all pools ordered by creation time.
func (e *Engine) Pools(ctx context.Context) ([]*domain.BondingCurvePool, error) {
	return e.pools.List(ctx)
}

// Trades lists all settled trades for mint ordered by time.
func (e *Engine) Trades(ctx context.Context, mint domain.AssetID) ([]*domain.TradeEvent, error) {
	return e.trades.GetByMint(ctx, mint)
}

func (e *Engine) observeQuote(kind string, start time.Time) {
	e.metrics.QuoteLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
