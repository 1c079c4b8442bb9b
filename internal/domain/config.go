package domain

// GlobalConfig is the protocol-level configuration singleton.
// Corresponds to the global_config table in PostgreSQL.
type GlobalConfig struct {
	Initialized  bool     // set once by Initialize
	Authority    Identity // only account allowed to call SetParams/Deposit
	FeeRecipient Identity // receives protocol fees
	OwnerWallet  Identity // treasury; only account allowed to call Withdraw

	ReserveMint  AssetID    // identity of the reserve asset
	ReserveVault AccountRef // custodial vault for authority deposits
	// ReserveSupply tracks reserve asset deposited through Deposit. It is
	// bookkeeping, not necessarily the vault balance if transfers happen
	// outside the engine.
	ReserveSupply uint64

	PoolCreationTokenAmount uint64 // project-asset seed required by Create
	PoolCreationFeeAmount   uint64 // reserve-asset fee charged by Create
	CreationFee             uint64 // flat creation fee component
	FeeBasisPoints          uint64 // per-trade protocol fee, bps of notional
	McapLimit               uint64 // market-cap limit copied to new pools; 0 disables

	UpdatedAt int64 // Unix timestamp in milliseconds
}

// FeeBasisPointsDenom is the denominator for FeeBasisPoints.
const FeeBasisPointsDenom = 10_000
