// Package derive computes deterministic account references and trade IDs.
// A reference is SHA256(role|asset|bump) with the smallest bump whose
// digest is not a valid ed25519 point, so derived vaults can never collide
// with a wallet identity.
package derive

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"

	"curve-engine/internal/domain"
)

// Derivation roles. One account per (role, asset).
const (
	RoleGlobalReserveVault = "GLOBAL-RESERVE-VAULT"
	RolePoolTokenVault     = "POOL-TOKEN-VAULT"
	RolePoolReserveVault   = "POOL-RESERVE-VAULT"
)

// Account returns the unique account reference for (role, asset).
func Account(role string, asset domain.AssetID) domain.AccountRef {
	for bump := 0; ; bump++ {
		data := fmt.Sprintf("%s|%s|%d", role, asset, bump)
		hash := sha256.Sum256([]byte(data))
		if _, err := new(edwards25519.Point).SetBytes(hash[:]); err != nil {
			return domain.AccountRef(hash)
		}
	}
}

// PoolTokenVault returns the pool's project-asset vault for mint.
func PoolTokenVault(mint domain.AssetID) domain.AccountRef {
	return Account(RolePoolTokenVault, mint)
}

// PoolReserveVault returns the pool's reserve-asset vault for mint.
func PoolReserveVault(mint domain.AssetID) domain.AccountRef {
	return Account(RolePoolReserveVault, mint)
}

// GlobalReserveVault returns the protocol reserve vault for the reserve mint.
func GlobalReserveVault(reserveMint domain.AssetID) domain.AccountRef {
	return Account(RoleGlobalReserveVault, reserveMint)
}
