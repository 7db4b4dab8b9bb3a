package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	issuedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	a := Fingerprint("alice", "user-1", issuedAt)
	b := Fingerprint("alice", "user-1", issuedAt)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "hex-encoded sha256")
}

func TestFingerprintVariesWithInputs(t *testing.T) {
	issuedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	base := Fingerprint("alice", "user-1", issuedAt)

	assert.NotEqual(t, base, Fingerprint("bob", "user-1", issuedAt))
	assert.NotEqual(t, base, Fingerprint("alice", "user-2", issuedAt))
	assert.NotEqual(t, base, Fingerprint("alice", "user-1", issuedAt.Add(time.Millisecond)))
}

func TestFingerprintIgnoresSubMillisecondPrecision(t *testing.T) {
	issuedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	// The digest is derived from the millisecond timestamp, so anything
	// below that resolution cannot change it.
	assert.Equal(t,
		Fingerprint("alice", "user-1", issuedAt),
		Fingerprint("alice", "user-1", issuedAt.Add(500*time.Microsecond)))
}

func TestFingerprintsMatch(t *testing.T) {
	issuedAt := time.Now()
	fp := Fingerprint("alice", "user-1", issuedAt)

	assert.True(t, FingerprintsMatch(fp, fp))
	assert.False(t, FingerprintsMatch("", fp))
	assert.False(t, FingerprintsMatch(Fingerprint("mallory", "user-2", issuedAt), fp))
}
