// Package pricing implements the linear bonding-curve mathematics.
//
// The unit price at cumulative reserves r is p(r) = initial + slope*r.
// All computation uses cosmossdk.io/math fixed-point decimals; binary
// floating point is never involved, so quotes are deterministic and
// replayable.
//
// Rounding policy: amounts owed to the protocol round up (buy cost),
// amounts paid out by the protocol round down (sell proceeds, fee shares,
// tokens for a budget). Every rounding step favors protocol solvency.
package pricing

import (
	"errors"
	"fmt"

	"cosmossdk.io/math"
)

var (
	// ErrInvalidCurve is returned when initial price or slope is negative.
	ErrInvalidCurve = errors.New("curve parameters must be non-negative")

	// ErrZeroPrice is returned when inverting a flat curve with zero
	// initial price: any budget would buy infinitely many tokens.
	ErrZeroPrice = errors.New("flat curve with zero initial price")

	// ErrReservesExceeded is returned when selling more than the curve
	// has absorbed.
	ErrReservesExceeded = errors.New("token amount exceeds curve reserves")

	// ErrOverflow is returned when an intermediate product or sum does
	// not fit the fixed-point representation.
	ErrOverflow = errors.New("arithmetic overflow")
)

var two = math.LegacyNewDec(2)

// Price returns the instantaneous unit price at reserves r.
func Price(initial, slope math.LegacyDec, reserves uint64) math.LegacyDec {
	r := decFromUint64(reserves)
	return initial.Add(slope.Mul(r))
}

// BuyCost returns the reserve-asset cost of buying tokenAmount units at
// reserves r: the integral of p over [r, r+tokenAmount], i.e.
//
//	cost = x*initial + slope*x*r + slope*x^2/2
func BuyCost(initial, slope math.LegacyDec, reserves, tokenAmount uint64) (cost math.LegacyDec, err error) {
	if err = validateCurve(initial, slope); err != nil {
		return math.LegacyDec{}, err
	}
	defer recoverOverflow(&err)

	x := decFromUint64(tokenAmount)
	r := decFromUint64(reserves)

	cost = x.Mul(initial).
		Add(slope.Mul(x).Mul(r)).
		Add(slope.Mul(x).Mul(x).Quo(two))
	return cost, nil
}

// SellProceeds returns the reserve-asset proceeds of selling tokenAmount
// units at reserves r: the trapezoidal average of the start and end unit
// price times the amount.
func SellProceeds(initial, slope math.LegacyDec, reserves, tokenAmount uint64) (proceeds math.LegacyDec, err error) {
	if err = validateCurve(initial, slope); err != nil {
		return math.LegacyDec{}, err
	}
	if tokenAmount > reserves {
		return math.LegacyDec{}, ErrReservesExceeded
	}
	defer recoverOverflow(&err)

	x := decFromUint64(tokenAmount)
	firstPrice := Price(initial, slope, reserves)
	lastPrice := Price(initial, slope, reserves-tokenAmount)

	proceeds = firstPrice.Add(lastPrice).Quo(two).Mul(x)
	return proceeds, nil
}

// TokensForBudget solves the inverse buy problem: how many tokens a
// reserve-asset budget purchases at reserves r. It takes the positive root
// of (slope/2)x^2 + (slope*r + initial)x - budget = 0; a flat curve
// degrades to x = budget/initial.
func TokensForBudget(initial, slope math.LegacyDec, reserves uint64, budget math.LegacyDec) (tokens math.LegacyDec, err error) {
	if err = validateCurve(initial, slope); err != nil {
		return math.LegacyDec{}, err
	}
	if budget.IsNegative() {
		return math.LegacyDec{}, fmt.Errorf("%w: negative budget", ErrInvalidCurve)
	}
	defer recoverOverflow(&err)

	bCoef := Price(initial, slope, reserves)

	if slope.IsZero() {
		if bCoef.IsZero() {
			return math.LegacyDec{}, ErrZeroPrice
		}
		return budget.Quo(bCoef), nil
	}

	// discriminant = bCoef^2 - 4*(slope/2)*(-budget) = bCoef^2 + 2*slope*budget
	disc := bCoef.Mul(bCoef).Add(two.Mul(slope).Mul(budget))
	root, sqrtErr := disc.ApproxSqrt()
	if sqrtErr != nil {
		return math.LegacyDec{}, fmt.Errorf("%w: %v", ErrOverflow, sqrtErr)
	}

	return root.Sub(bCoef).Quo(slope), nil
}

// CeilUint64 converts a non-negative decimal to smallest units, rounding up.
func CeilUint64(d math.LegacyDec) (uint64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount", ErrOverflow)
	}
	i := d.Ceil().TruncateInt()
	if !i.IsUint64() {
		return 0, ErrOverflow
	}
	return i.Uint64(), nil
}

// FloorUint64 converts a non-negative decimal to smallest units, rounding down.
func FloorUint64(d math.LegacyDec) (uint64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount", ErrOverflow)
	}
	i := d.TruncateInt()
	if !i.IsUint64() {
		return 0, ErrOverflow
	}
	return i.Uint64(), nil
}

func validateCurve(initial, slope math.LegacyDec) error {
	if initial.IsNil() || slope.IsNil() {
		return fmt.Errorf("%w: nil parameter", ErrInvalidCurve)
	}
	if initial.IsNegative() {
		return fmt.Errorf("%w: initial price %s", ErrInvalidCurve, initial)
	}
	if slope.IsNegative() {
		return fmt.Errorf("%w: slope %s", ErrInvalidCurve, slope)
	}
	return nil
}

func decFromUint64(v uint64) math.LegacyDec {
	return math.LegacyNewDecFromInt(math.NewIntFromUint64(v))
}

// recoverOverflow converts LegacyDec panics on out-of-range intermediates
// into ErrOverflow so settlement aborts instead of crashing.
func recoverOverflow(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrOverflow, r)
	}
}
