package derive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"curve-engine/internal/domain"
)

// TradeID computes a deterministic trade id using SHA256.
// Formula: SHA256(mint|user|side|token_amount|reserve_amount|timestamp)
// Returns hex-encoded hash (64 characters).
func TradeID(
	mint domain.AssetID,
	user domain.Identity,
	side string,
	tokenAmount uint64,
	reserveAmount uint64,
	timestamp int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d|%d",
		mint,
		user,
		side,
		tokenAmount,
		reserveAmount,
		timestamp,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
