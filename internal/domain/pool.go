package domain

import "cosmossdk.io/math"

// BondingCurvePool is the per-project-asset pool record, keyed by Mint.
// Corresponds to the bonding_curve_pools table in PostgreSQL.
//
// Unit price at cumulative reserves r is InitialPrice + CurveSlope*r.
// TokenReserves counts project-asset units absorbed by the curve since
// creation; seed liquidity does not count (it backs withdrawal capacity,
// not pricing).
type BondingCurvePool struct {
	Mint    AssetID  // project asset this pool prices
	Creator Identity // account that called Create

	InitialPrice math.LegacyDec // unit price at zero net reserves, >= 0
	CurveSlope   math.LegacyDec // marginal price increase per unit, >= 0

	TokenReserves    uint64 // cumulative units bought into the curve
	TokenTotalSupply uint64 // seed amount recorded at creation

	TokenVault   AccountRef // custodial project-asset holdings
	ReserveVault AccountRef // custodial reserve-asset holdings

	// McapLimit is the market-cap limit in reserve units, copied from
	// the global config at creation. Zero disables completion.
	McapLimit uint64
	// Complete is set by the buy that pushes the market cap past
	// McapLimit. A complete pool no longer trades.
	Complete bool

	// Withdrawn is set when the owner sweeps both vaults. A withdrawn
	// pool no longer trades; its curve state is reset alongside.
	Withdrawn bool

	CreatedAt int64 // Unix timestamp in milliseconds
	UpdatedAt int64 // Unix timestamp in milliseconds
}

// SpotPrice returns the instantaneous unit price at current reserves.
func (p *BondingCurvePool) SpotPrice() math.LegacyDec {
	r := math.LegacyNewDecFromInt(math.NewIntFromUint64(p.TokenReserves))
	return p.InitialPrice.Add(p.CurveSlope.Mul(r))
}

// MarketCap returns the fully diluted valuation in reserve units:
// spot price times the total supply recorded at creation.
func (p *BondingCurvePool) MarketCap() math.LegacyDec {
	supply := math.LegacyNewDecFromInt(math.NewIntFromUint64(p.TokenTotalSupply))
	return p.SpotPrice().Mul(supply)
}
