package engine

import "errors"

var (
	// ErrAlreadyInitialized is returned when Initialize is called twice.
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// ErrNotInitialized is returned by every other operation before
	// Initialize has run.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrUnauthorized is returned when the caller is not allowed to perform
	// the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientFunds is returned when the caller cannot cover a
	// debit staged by the operation.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPoolAlreadyExists is returned by Create for an existing mint.
	ErrPoolAlreadyExists = errors.New("pool already exists")

	// ErrPoolNotFound is returned when no pool exists for the mint.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrPoolWithdrawn is returned when trading against a pool whose
	// vaults were swept by the owner.
	ErrPoolWithdrawn = errors.New("pool withdrawn")

	// ErrCurveComplete is returned when trading against a pool whose
	// market cap has crossed its configured limit.
	ErrCurveComplete = errors.New("bonding curve complete")

	// ErrInsufficientReserves is returned by Sell when the amount exceeds
	// what the curve has absorbed.
	ErrInsufficientReserves = errors.New("insufficient curve reserves")

	// ErrInsufficientLiquidity is returned by Buy when the pool token
	// vault cannot deliver the requested amount.
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")

	// ErrSlippageExceeded is returned when the quote violates the caller's
	// limit.
	ErrSlippageExceeded = errors.New("slippage limit exceeded")

	// ErrArithmeticOverflow is returned when a settlement amount does not
	// fit the fixed-point or uint64 representation.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrZeroAmount is returned when an operation is called with a zero
	// amount.
	ErrZeroAmount = errors.New("zero amount")

	// ErrInvalidAmount is returned when an amount fails a configured
	// constraint, such as the pool creation seed.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPrice is returned for a negative initial price, or a curve
	// that could never quote a positive price.
	ErrInvalidPrice = errors.New("invalid initial price")

	// ErrInvalidSlope is returned for a negative curve slope.
	ErrInvalidSlope = errors.New("invalid curve slope")
)
