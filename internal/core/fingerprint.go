package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/minio/highwayhash"
)

// Fingerprinter hashes upload bytes so repeated uploads of the same file can
// share one parsed source table. The key is random per process; fingerprints
// are never persisted.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a fingerprinter with a fresh random key.
func NewFingerprinter() (*Fingerprinter, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate fingerprint key: %w", err)
	}
	return NewFingerprinterWithKey(key)
}

// NewFingerprinterWithKey creates a fingerprinter with a fixed key.
func NewFingerprinterWithKey(key []byte) (*Fingerprinter, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("hash key must be exactly 32 bytes, got %d", len(key))
	}
	return &Fingerprinter{key: key}, nil
}

// Sum returns the hex HighwayHash-256 of data.
func (f *Fingerprinter) Sum(data []byte) string {
	sum := highwayhash.Sum(data, f.key)
	return hex.EncodeToString(sum[:])
}
