package engine

import (
	"context"
	"crypto/sha256"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"curve-engine/internal/domain"
	"curve-engine/internal/events"
	"curve-engine/internal/ledger"
	"curve-engine/internal/observability"
	"curve-engine/internal/storage/memory"
)

func testIdentity(name string) domain.Identity {
	return domain.Identity(sha256.Sum256([]byte(name)))
}

func testAsset(name string) domain.AssetID {
	return domain.AssetID(sha256.Sum256([]byte(name)))
}

func newTestEngine(t *testing.T) (*Engine, *ledger.Memory) {
	t.Helper()

	led := ledger.NewMemory()
	e := New(Deps{
		Configs: memory.NewConfigStore(),
		Pools:   memory.NewPoolStore(),
		Trades:  memory.NewTradeStore(),
		Ledger:  led,
		Bus:     events.NewBus(zap.NewNop()),
		Metrics: observability.DefaultMetrics,
		Logger:  zap.NewNop(),
	})

	// Strictly increasing clock so derived trade IDs never collide.
	ms := int64(1704067200000)
	e.nowFn = func() int64 {
		ms++
		return ms
	}
	return e, led
}

var (
	authority    = testIdentity("authority")
	feeRecipient = testIdentity("fee-recipient")
	owner        = testIdentity("owner")
	creator      = testIdentity("creator")
	trader       = testIdentity("trader")
	reserveMint  = testAsset("reserve-mint")
	projectMint  = testAsset("project-mint")
)

func defaultParams(feeBasisPoints uint64) Params {
	return Params{
		FeeRecipient:            feeRecipient,
		OwnerWallet:             owner,
		PoolCreationTokenAmount: 5000,
		PoolCreationFeeAmount:   100,
		CreationFee:             10,
		FeeBasisPoints:          feeBasisPoints,
	}
}

// setupPool initializes the engine and creates a pool with
// initial price 0.01 and slope 0.00001.
func setupPool(t *testing.T, e *Engine, led *ledger.Memory, feeBasisPoints uint64) *domain.BondingCurvePool {
	t.Helper()

	ctx := context.Background()
	_, err := e.Initialize(ctx, authority, reserveMint)
	require.NoError(t, err)
	_, err = e.SetParams(ctx, authority, defaultParams(feeBasisPoints))
	require.NoError(t, err)

	require.NoError(t, led.Credit(creator.Ref(), reserveMint, 110))
	require.NoError(t, led.Credit(creator.Ref(), projectMint, 5000))

	pool, err := e.Create(ctx, creator, projectMint,
		sdkmath.LegacyMustNewDecFromStr("0.01"),
		sdkmath.LegacyMustNewDecFromStr("0.00001"),
		5000)
	require.NoError(t, err)
	return pool
}

func TestInitialize(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	cfg, err := e.Initialize(ctx, authority, reserveMint)
	require.NoError(t, err)
	require.True(t, cfg.Initialized)
	require.Equal(t, authority, cfg.Authority)
	require.Equal(t, authority, cfg.FeeRecipient)
	require.Equal(t, authority, cfg.OwnerWallet)
	require.Equal(t, reserveMint, cfg.ReserveMint)
	require.False(t, cfg.ReserveVault.IsZero())

	_, err = e.Initialize(ctx, authority, reserveMint)
	require.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestOperationsBeforeInitialize(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SetParams(ctx, authority, defaultParams(0))
	require.ErrorIs(t, err, ErrNotInitialized)

	require.ErrorIs(t, e.Deposit(ctx, authority, 100), ErrNotInitialized)

	_, err = e.Create(ctx, creator, projectMint,
		sdkmath.LegacyMustNewDecFromStr("0.01"), sdkmath.LegacyZeroDec(), 5000)
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = e.Buy(ctx, trader, projectMint, 10, 100)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestSetParams(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Initialize(ctx, authority, reserveMint)
	require.NoError(t, err)

	_, err = e.SetParams(ctx, trader, defaultParams(0))
	require.ErrorIs(t, err, ErrUnauthorized)

	p := defaultParams(0)
	p.FeeBasisPoints = domain.FeeBasisPointsDenom + 1
	_, err = e.SetParams(ctx, authority, p)
	require.ErrorIs(t, err, ErrInvalidAmount)

	cfg, err := e.SetParams(ctx, authority, defaultParams(250))
	require.NoError(t, err)
	require.Equal(t, feeRecipient, cfg.FeeRecipient)
	require.Equal(t, owner, cfg.OwnerWallet)
	require.Equal(t, uint64(5000), cfg.PoolCreationTokenAmount)
	require.Equal(t, uint64(250), cfg.FeeBasisPoints)
	// Authority never changes.
	require.Equal(t, authority, cfg.Authority)
}

func TestDeposit(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	cfg, err := e.Initialize(ctx, authority, reserveMint)
	require.NoError(t, err)

	require.ErrorIs(t, e.Deposit(ctx, trader, 100), ErrUnauthorized)
	require.ErrorIs(t, e.Deposit(ctx, authority, 0), ErrZeroAmount)

	// Authority has no funds yet.
	require.ErrorIs(t, e.Deposit(ctx, authority, 100), ErrInsufficientFunds)
	got, err := e.Config(ctx)
	require.NoError(t, err)
	require.Zero(t, got.ReserveSupply)

	require.NoError(t, led.Credit(authority.Ref(), reserveMint, 1000))
	require.NoError(t, e.Deposit(ctx, authority, 600))

	got, err = e.Config(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(600), got.ReserveSupply)

	bal, err := led.BalanceOf(ctx, cfg.ReserveVault, reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(600), bal)
}

func TestCreate(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	pool := setupPool(t, e, led, 0)
	require.Equal(t, projectMint, pool.Mint)
	require.Equal(t, creator, pool.Creator)
	require.Zero(t, pool.TokenReserves)
	require.Equal(t, uint64(5000), pool.TokenTotalSupply)
	require.False(t, pool.Withdrawn)

	// Seed went to the token vault, creation fee to the fee recipient.
	bal, err := led.BalanceOf(ctx, pool.TokenVault, projectMint)
	require.NoError(t, err)
	require.Equal(t, uint64(5000), bal)

	bal, err = led.BalanceOf(ctx, feeRecipient.Ref(), reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(110), bal)

	// Creator spent everything.
	bal, err = led.BalanceOf(ctx, creator.Ref(), projectMint)
	require.NoError(t, err)
	require.Zero(t, bal)

	_, err = e.Create(ctx, creator, projectMint,
		sdkmath.LegacyMustNewDecFromStr("0.01"), sdkmath.LegacyZeroDec(), 5000)
	require.ErrorIs(t, err, ErrPoolAlreadyExists)
}

func TestCreateValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Initialize(ctx, authority, reserveMint)
	require.NoError(t, err)
	_, err = e.SetParams(ctx, authority, defaultParams(0))
	require.NoError(t, err)

	price := sdkmath.LegacyMustNewDecFromStr("0.01")
	slope := sdkmath.LegacyMustNewDecFromStr("0.00001")

	_, err = e.Create(ctx, creator, projectMint, price, slope, 0)
	require.ErrorIs(t, err, ErrZeroAmount)

	_, err = e.Create(ctx, creator, projectMint, price, slope, 4999)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = e.Create(ctx, creator, projectMint, sdkmath.LegacyMustNewDecFromStr("-0.01"), slope, 5000)
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = e.Create(ctx, creator, projectMint, price, sdkmath.LegacyMustNewDecFromStr("-1"), 5000)
	require.ErrorIs(t, err, ErrInvalidSlope)

	_, err = e.Create(ctx, creator, projectMint, sdkmath.LegacyZeroDec(), sdkmath.LegacyZeroDec(), 5000)
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = e.Create(ctx, creator, reserveMint, price, slope, 5000)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// Creator has no funds: nothing is persisted.
	_, err = e.Create(ctx, creator, projectMint, price, slope, 5000)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	_, err = e.Pool(ctx, projectMint)
	require.ErrorIs(t, err, ErrPoolNotFound)
}

func TestCreateFeePaidToSelf(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Initialize(ctx, authority, reserveMint)
	require.NoError(t, err)

	// The creator is also the fee recipient: the creation fee is a
	// round trip and must not change their reserve balance.
	p := defaultParams(0)
	p.FeeRecipient = creator
	_, err = e.SetParams(ctx, authority, p)
	require.NoError(t, err)

	require.NoError(t, led.Credit(creator.Ref(), reserveMint, 110))
	require.NoError(t, led.Credit(creator.Ref(), projectMint, 5000))

	_, err = e.Create(ctx, creator, projectMint,
		sdkmath.LegacyMustNewDecFromStr("0.01"),
		sdkmath.LegacyMustNewDecFromStr("0.00001"),
		5000)
	require.NoError(t, err)

	bal, err := led.BalanceOf(ctx, creator.Ref(), reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(110), bal)
}

func TestBuy(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	pool := setupPool(t, e, led, 0)

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))

	// cost = 1000*0.01 + 0.00001*1000^2/2 = 15, exactly.
	trade, err := e.Buy(ctx, trader, projectMint, 1000, 15)
	require.NoError(t, err)
	require.Equal(t, domain.TradeSideBuy, trade.Side)
	require.Equal(t, uint64(1000), trade.TokenAmount)
	require.Equal(t, uint64(15), trade.ReserveAmount)
	require.Zero(t, trade.FeeAmount)
	require.Equal(t, uint64(1000), trade.TokenReserves)
	require.Equal(t, "0.020000000000000000", trade.Price)

	got, err := e.Pool(ctx, projectMint)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), got.TokenReserves)

	bal, err := led.BalanceOf(ctx, trader.Ref(), projectMint)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), bal)

	bal, err = led.BalanceOf(ctx, trader.Ref(), reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(85), bal)

	bal, err = led.BalanceOf(ctx, pool.ReserveVault, reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(15), bal)

	trades, err := e.Trades(ctx, projectMint)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, trade.TradeID, trades[0].TradeID)
}

func TestBuySlippage(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	pool := setupPool(t, e, led, 0)

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))

	// Cost 15 against max spend 14 fails and leaves no trace.
	_, err := e.Buy(ctx, trader, projectMint, 1000, 14)
	require.ErrorIs(t, err, ErrSlippageExceeded)

	got, err := e.Pool(ctx, projectMint)
	require.NoError(t, err)
	require.Zero(t, got.TokenReserves)

	bal, err := led.BalanceOf(ctx, trader.Ref(), reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(100), bal)

	bal, err = led.BalanceOf(ctx, pool.ReserveVault, reserveMint)
	require.NoError(t, err)
	require.Zero(t, bal)

	trades, err := e.Trades(ctx, projectMint)
	require.NoError(t, err)
	require.Empty(t, trades)

	// Boundary: cost exactly equal to the limit succeeds.
	_, err = e.Buy(ctx, trader, projectMint, 1000, 15)
	require.NoError(t, err)
}

func TestBuyValidation(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 0)

	_, err := e.Buy(ctx, trader, projectMint, 0, 100)
	require.ErrorIs(t, err, ErrZeroAmount)

	_, err = e.Buy(ctx, trader, testAsset("unknown"), 10, 100)
	require.ErrorIs(t, err, ErrPoolNotFound)

	// Trader cannot cover the cost.
	_, err = e.Buy(ctx, trader, projectMint, 1000, 15)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Vault seeded 5000: asking for more is insufficient liquidity.
	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 1_000_000))
	_, err = e.Buy(ctx, trader, projectMint, 5001, 1_000_000)
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestBuyFee(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 1000) // 10%

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))

	// Curve cost 15, fee floor(15 * 1000 / 10000) = 1 on top.
	_, err := e.Buy(ctx, trader, projectMint, 1000, 15)
	require.ErrorIs(t, err, ErrSlippageExceeded)

	trade, err := e.Buy(ctx, trader, projectMint, 1000, 16)
	require.NoError(t, err)
	require.Equal(t, uint64(16), trade.ReserveAmount)
	require.Equal(t, uint64(1), trade.FeeAmount)

	// Fee recipient holds the creation fee plus the trade fee; the pool
	// reserve vault receives the full curve cost.
	bal, err := led.BalanceOf(ctx, feeRecipient.Ref(), reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(111), bal)

	pool, err := e.Pool(ctx, projectMint)
	require.NoError(t, err)
	bal, err = led.BalanceOf(ctx, pool.ReserveVault, reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(15), bal)
}

func TestSell(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 0)

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))
	_, err := e.Buy(ctx, trader, projectMint, 700, 100)
	require.NoError(t, err)

	// proceeds = (p(700)+p(0))/2 * 700 = (0.017+0.01)/2*700 = 9.45 -> 9.
	trade, err := e.Sell(ctx, trader, projectMint, 700, 9)
	require.NoError(t, err)
	require.Equal(t, domain.TradeSideSell, trade.Side)
	require.Equal(t, uint64(9), trade.ReserveAmount)
	require.Zero(t, trade.TokenReserves)
	require.Equal(t, "0.010000000000000000", trade.Price)

	bal, err := led.BalanceOf(ctx, trader.Ref(), projectMint)
	require.NoError(t, err)
	require.Zero(t, bal)

	pool, err := e.Pool(ctx, projectMint)
	require.NoError(t, err)
	require.Zero(t, pool.TokenReserves)

	// Token vault is back to the full seed.
	bal, err = led.BalanceOf(ctx, pool.TokenVault, projectMint)
	require.NoError(t, err)
	require.Equal(t, uint64(5000), bal)
}

func TestSellValidation(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 0)

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))
	_, err := e.Buy(ctx, trader, projectMint, 500, 100)
	require.NoError(t, err)

	_, err = e.Sell(ctx, trader, projectMint, 0, 0)
	require.ErrorIs(t, err, ErrZeroAmount)

	_, err = e.Sell(ctx, trader, projectMint, 501, 0)
	require.ErrorIs(t, err, ErrInsufficientReserves)

	// Slippage: proceeds for 500 = (0.015+0.01)/2*500 = 6.25 -> 6.
	_, err = e.Sell(ctx, trader, projectMint, 500, 7)
	require.ErrorIs(t, err, ErrSlippageExceeded)

	pool, err := e.Pool(ctx, projectMint)
	require.NoError(t, err)
	require.Equal(t, uint64(500), pool.TokenReserves)

	// A holder of no tokens cannot sell against the curve.
	other := testIdentity("other")
	_, err = e.Sell(ctx, other, projectMint, 100, 0)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestSellFee(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 1000) // 10%

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))
	_, err := e.Buy(ctx, trader, projectMint, 1000, 16)
	require.NoError(t, err)

	// The slippage limit applies to the gross proceeds of 15; the fee
	// of 1 is carved out afterwards, leaving 14 net.
	trade, err := e.Sell(ctx, trader, projectMint, 1000, 15)
	require.NoError(t, err)
	require.Equal(t, uint64(15), trade.ReserveAmount)
	require.Equal(t, uint64(1), trade.FeeAmount)

	bal, err := led.BalanceOf(ctx, trader.Ref(), reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(98), bal) // 100 - 16 spent + 14 net

	// Creation fee 110 plus 1 from each side of the round trip.
	bal, err = led.BalanceOf(ctx, feeRecipient.Ref(), reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(112), bal)
}

func TestCurveCompletion(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Initialize(ctx, authority, reserveMint)
	require.NoError(t, err)
	p := defaultParams(0)
	p.McapLimit = 55
	_, err = e.SetParams(ctx, authority, p)
	require.NoError(t, err)

	require.NoError(t, led.Credit(creator.Ref(), reserveMint, 110))
	require.NoError(t, led.Credit(creator.Ref(), projectMint, 5000))
	pool, err := e.Create(ctx, creator, projectMint,
		sdkmath.LegacyMustNewDecFromStr("0.01"),
		sdkmath.LegacyMustNewDecFromStr("0.00001"),
		5000)
	require.NoError(t, err)
	require.Equal(t, uint64(55), pool.McapLimit)
	require.False(t, pool.Complete)

	var completed []events.CurveCompletedEvent
	e.bus.SubscribeFunc(events.CurveCompleted, func(_ context.Context, ev events.Event) error {
		completed = append(completed, ev.(events.CurveCompletedEvent))
		return nil
	})

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))

	// Market cap 0.011 * 5000 = 55 sits exactly on the limit: the curve
	// only completes once the cap exceeds it.
	_, err = e.Buy(ctx, trader, projectMint, 100, 100)
	require.NoError(t, err)
	got, err := e.Pool(ctx, projectMint)
	require.NoError(t, err)
	require.False(t, got.Complete)
	require.Empty(t, completed)

	// Market cap 0.02 * 5000 = 100 crosses the limit; the completing
	// buy itself settles, then the curve freezes.
	trade, err := e.Buy(ctx, trader, projectMint, 900, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), trade.TokenReserves)

	got, err = e.Pool(ctx, projectMint)
	require.NoError(t, err)
	require.True(t, got.Complete)
	require.Len(t, completed, 1)
	require.Equal(t, projectMint.String(), completed[0].Mint)
	require.Equal(t, trader.String(), completed[0].User)

	_, err = e.Buy(ctx, trader, projectMint, 1, 100)
	require.ErrorIs(t, err, ErrCurveComplete)
	_, err = e.Sell(ctx, trader, projectMint, 1, 0)
	require.ErrorIs(t, err, ErrCurveComplete)
	_, err = e.QuoteBuy(ctx, projectMint, 1)
	require.ErrorIs(t, err, ErrCurveComplete)

	// Completion does not block the owner sweep.
	tokens, reserve, err := e.Withdraw(ctx, owner, projectMint)
	require.NoError(t, err)
	require.Equal(t, uint64(4000), tokens)
	require.Equal(t, uint64(16), reserve) // buy costs 2 + 14
}

func TestRoundTripNeverProfits(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 0)

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 1000))

	for _, amount := range []uint64{1, 7, 123, 999} {
		buy, err := e.Buy(ctx, trader, projectMint, amount, 1000)
		require.NoError(t, err)
		sell, err := e.Sell(ctx, trader, projectMint, amount, 0)
		require.NoError(t, err)
		require.LessOrEqual(t, sell.ReserveAmount, buy.ReserveAmount,
			"round trip of %d tokens must not profit", amount)
	}
}

func TestWithdraw(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	pool := setupPool(t, e, led, 0)

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))
	_, err := e.Buy(ctx, trader, projectMint, 1000, 100)
	require.NoError(t, err)

	_, _, err = e.Withdraw(ctx, trader, projectMint)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = e.Withdraw(ctx, owner, testAsset("unknown"))
	require.ErrorIs(t, err, ErrPoolNotFound)

	tokens, reserve, err := e.Withdraw(ctx, owner, projectMint)
	require.NoError(t, err)
	require.Equal(t, uint64(4000), tokens) // 5000 seed - 1000 bought
	require.Equal(t, uint64(15), reserve)  // cost of the buy

	bal, err := led.BalanceOf(ctx, owner.Ref(), projectMint)
	require.NoError(t, err)
	require.Equal(t, uint64(4000), bal)
	bal, err = led.BalanceOf(ctx, owner.Ref(), reserveMint)
	require.NoError(t, err)
	require.Equal(t, uint64(15), bal)

	bal, err = led.BalanceOf(ctx, pool.TokenVault, projectMint)
	require.NoError(t, err)
	require.Zero(t, bal)

	// The pool is retired: curve state reset, no further trading.
	got, err := e.Pool(ctx, projectMint)
	require.NoError(t, err)
	require.True(t, got.Withdrawn)
	require.Zero(t, got.TokenReserves)

	_, err = e.Buy(ctx, trader, projectMint, 10, 100)
	require.ErrorIs(t, err, ErrPoolWithdrawn)
	_, err = e.Sell(ctx, trader, projectMint, 10, 0)
	require.ErrorIs(t, err, ErrPoolWithdrawn)
	_, _, err = e.Withdraw(ctx, owner, projectMint)
	require.ErrorIs(t, err, ErrPoolWithdrawn)
}

func TestQuoteMatchesSettlement(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 1000)

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))

	quote, err := e.QuoteBuy(ctx, projectMint, 1000)
	require.NoError(t, err)

	trade, err := e.Buy(ctx, trader, projectMint, 1000, quote.ReserveAmount)
	require.NoError(t, err)
	require.Equal(t, quote.ReserveAmount, trade.ReserveAmount)
	require.Equal(t, quote.FeeAmount, trade.FeeAmount)
	require.Equal(t, quote.SpotPrice, trade.Price)

	quote, err = e.QuoteSell(ctx, projectMint, 1000)
	require.NoError(t, err)

	trade, err = e.Sell(ctx, trader, projectMint, 1000, quote.ReserveAmount)
	require.NoError(t, err)
	require.Equal(t, quote.ReserveAmount, trade.ReserveAmount)
	require.Equal(t, quote.FeeAmount, trade.FeeAmount)
}

func TestQuoteBudget(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 0)

	// Positive root of 0.000005x^2 + 0.01x - 10 = 0, floored.
	quote, err := e.QuoteBudget(ctx, projectMint, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(732), quote.TokenAmount)
	require.LessOrEqual(t, quote.ReserveAmount, uint64(10))

	// The next whole token would exceed the budget.
	over, err := e.QuoteBuy(ctx, projectMint, quote.TokenAmount+1)
	require.NoError(t, err)
	require.Greater(t, over.ReserveAmount, uint64(10))
}

func TestTradeEventsPublished(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()
	setupPool(t, e, led, 0)

	var settled []*domain.TradeEvent
	e.bus.SubscribeFunc(events.TradeSettled, func(_ context.Context, ev events.Event) error {
		settled = append(settled, ev.(events.TradeSettledEvent).Trade)
		return nil
	})

	require.NoError(t, led.Credit(trader.Ref(), reserveMint, 100))
	trade, err := e.Buy(ctx, trader, projectMint, 100, 100)
	require.NoError(t, err)

	require.Len(t, settled, 1)
	require.Equal(t, trade.TradeID, settled[0].TradeID)
}
