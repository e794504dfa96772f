package random

import (
	crypto_rand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

func mustCryptoRandUint64() uint64 {
	var b [8]byte
	if _, err := crypto_rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("Failed to obtain random data: %s", err))
	}
	return binary.LittleEndian.Uint64(b[:])
}

// NewFastSingleThreadedGenerator creates a new SingleThreadedGenerator
// that is not suitable for cryptographic purposes. The generator is
// randomly seeded.
func NewFastSingleThreadedGenerator() SingleThreadedGenerator {
	return NewSeededSingleThreadedGenerator(mustCryptoRandUint64(), mustCryptoRandUint64())
}

// NewSeededSingleThreadedGenerator creates a new
// SingleThreadedGenerator that yields the same values every time it
// is created with the same seed. This is useful for reproducing
// generated workloads.
func NewSeededSingleThreadedGenerator(seed1, seed2 uint64) SingleThreadedGenerator {
	return rand.New(rand.NewPCG(seed1, seed2))
}
