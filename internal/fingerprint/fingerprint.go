// Package fingerprint computes change-detection digests of text. Not for
// integrity or security.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the digest length in bytes.
const Size = 16

// Digest is a fixed-size fingerprint. The zero value means "nothing hashed yet".
type Digest [Size]byte

// Of returns the fingerprint of text.
func Of(text string) Digest {
	sum := sha256.Sum256([]byte(text))
	var d Digest
	copy(d[:], sum[:Size])
	return d
}

func (d Digest) IsZero() bool { return d == Digest{} }

func (d Digest) String() string { return hex.EncodeToString(d[:]) }
