package domain

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Identity is a 32-byte account identity, rendered base58.
// Wallet identities are ed25519 public keys and must decode to a valid
// curve point; derived account references are exempt from that check.
type Identity [32]byte

// AssetID identifies a mint (the reserve asset or a project asset).
type AssetID [32]byte

// AccountRef is an opaque reference to a custodial account (vault).
// Refs produced by derivation are off-curve by construction.
type AccountRef [32]byte

var (
	// ErrInvalidIdentity is returned when parsing fails or the bytes are
	// not a valid ed25519 curve point.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrInvalidAssetID is returned when an asset id fails to parse.
	ErrInvalidAssetID = errors.New("invalid asset id")
)

// ParseIdentity decodes a base58 identity and verifies it is on-curve.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	decoded, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(decoded) != len(id) {
		return id, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidIdentity, len(decoded))
	}
	copy(id[:], decoded)
	if !id.OnCurve() {
		return id, fmt.Errorf("%w: not on ed25519 curve", ErrInvalidIdentity)
	}
	return id, nil
}

// ParseAssetID decodes a base58 asset id.
func ParseAssetID(s string) (AssetID, error) {
	var a AssetID
	decoded, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAssetID, err)
	}
	if len(decoded) != len(a) {
		return a, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidAssetID, len(decoded))
	}
	copy(a[:], decoded)
	return a, nil
}

// IdentityFromString decodes a stored base58 identity without the on-curve
// check. Use ParseIdentity at trust boundaries; this is for rehydrating
// records that were validated on the way in.
func IdentityFromString(s string) (Identity, error) {
	var id Identity
	decoded, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(decoded) != len(id) {
		return id, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidIdentity, len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}

// AccountRefFromString decodes a stored base58 account reference.
func AccountRefFromString(s string) (AccountRef, error) {
	var r AccountRef
	decoded, err := base58.Decode(s)
	if err != nil {
		return r, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(decoded) != len(r) {
		return r, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidIdentity, len(decoded))
	}
	copy(r[:], decoded)
	return r, nil
}

// OnCurve reports whether the identity bytes form a valid ed25519 point.
func (id Identity) OnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(id[:])
	return err == nil
}

// IsZero reports whether the identity is the zero value.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Ref returns the ledger account reference holding this identity's balances.
func (id Identity) Ref() AccountRef {
	return AccountRef(id)
}

func (id Identity) String() string {
	return base58.Encode(id[:])
}

// IsZero reports whether the asset id is the zero value.
func (a AssetID) IsZero() bool {
	return a == AssetID{}
}

func (a AssetID) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the ref is the zero value.
func (r AccountRef) IsZero() bool {
	return r == AccountRef{}
}

func (r AccountRef) String() string {
	return base58.Encode(r[:])
}
