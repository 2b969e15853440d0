// Package receipt issues verification hashes for token claims.
//
// A receipt binds the token code, the claimant, the claim time and 256 bits of
// fresh randomness through argon2id. The payload alone is guessable, so the
// hash must be slow and salted for a forged receipt to be out of reach.
//
// Output uses the PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<key>
package receipt

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/crypto/argon2"
)

// Params are the argon2id cost parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  int
	KeyLength   uint32
}

// DefaultParams matches the argon2-cffi defaults.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

const entropyBytes = 32

// Hasher produces claim receipts.
type Hasher struct {
	params Params
	rand   io.Reader
}

// NewHasher creates a Hasher with DefaultParams reading from crypto/rand.
func NewHasher() *Hasher {
	return &Hasher{params: DefaultParams, rand: rand.Reader}
}

// NewHasherWithParams creates a Hasher with custom cost parameters and
// entropy source. Tests use it with a small memory cost.
func NewHasherWithParams(params Params, random io.Reader) *Hasher {
	if random == nil {
		random = rand.Reader
	}
	return &Hasher{params: params, rand: random}
}

// Issue returns a fresh receipt for a claim of code by userID at claimedAt.
func (h *Hasher) Issue(code string, userID int64, claimedAt time.Time) (string, error) {
	nonce := make([]byte, entropyBytes)
	if _, err := io.ReadFull(h.rand, nonce); err != nil {
		return "", fmt.Errorf("receipt: reading entropy: %w", err)
	}
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("receipt: reading salt: %w", err)
	}

	payload := code +
		strconv.FormatInt(userID, 10) +
		strconv.FormatFloat(float64(claimedAt.UnixNano())/1e9, 'f', 6, 64) +
		hex.EncodeToString(nonce)

	key := argon2.IDKey([]byte(payload), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}
