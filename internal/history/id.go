package history

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"time"
)

const (
	minIDLength = 3
	maxIDLength = 8
	nonceSize   = 16

	// idDateLayout prefixes every ID so reports of one day group together.
	idDateLayout = "20060102"
)

// GenerateID returns a report ID of the form 20240115-k3x. The suffix is a
// base36 digest of seed, createdAt and a random nonce; it starts at
// minIDLength characters and grows up to maxIDLength while existsFn reports
// a collision.
func GenerateID(seed string, createdAt time.Time, existsFn func(string) bool) string {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}

	h := sha256.New()
	h.Write([]byte(seed))
	h.Write([]byte(createdAt.Format(time.RFC3339Nano)))
	h.Write(nonce)
	digest := new(big.Int).SetBytes(h.Sum(nil)).Text(36)
	for len(digest) < maxIDLength {
		digest = "0" + digest
	}

	prefix := createdAt.UTC().Format(idDateLayout) + "-"
	for length := minIDLength; length < maxIDLength; length++ {
		if candidate := prefix + digest[:length]; !existsFn(candidate) {
			return candidate
		}
	}
	return prefix + digest[:maxIDLength]
}
