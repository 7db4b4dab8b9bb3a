package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"
)

// FingerprintCookie is the client-side channel carrying the session
// fingerprint, paired with the bearer token.
const FingerprintCookie = "fingerprint"

// Fingerprint derives the session-binding digest from non-secret identifiers
// and the issuance instant. For a given token exactly one valid fingerprint
// exists; it never changes for the life of that token.
func Fingerprint(username, userID string, issuedAt time.Time) string {
	data := username + userID + strconv.FormatInt(issuedAt.UnixMilli(), 10)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// FingerprintsMatch compares a presented fingerprint with the embedded one
// without leaking timing.
func FingerprintsMatch(presented, embedded string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(embedded)) == 1
}
