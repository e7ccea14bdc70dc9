package uniqueness

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

const (
	mersennePrime uint64 = (1 << 61) - 1
	maxHash       uint64 = (1 << 32) - 1
)

// MinHash is a fixed-size similarity fingerprint. The base hash is
// xxhash folded to 32 bits; each slot applies its own universal-hash
// permutation derived deterministically from the seed. Serialization
// matches the store's wire shape: {"seed": N, "hashvalues": base64 of
// packed uint64 values}.
type MinHash struct {
	seed   uint64
	a      []uint64
	b      []uint64
	values []uint64
}

// NewMinHash builds an empty fingerprint with numPerm permutation
// slots. The same (numPerm, seed) pair always yields the same
// permutations.
func NewMinHash(numPerm int, seed uint64) *MinHash {
	m := &MinHash{
		seed:   seed,
		a:      make([]uint64, numPerm),
		b:      make([]uint64, numPerm),
		values: make([]uint64, numPerm),
	}
	state := seed
	for i := 0; i < numPerm; i++ {
		m.a[i] = splitmix64(&state)%(mersennePrime-1) + 1
		m.b[i] = splitmix64(&state) % mersennePrime
		m.values[i] = maxHash
	}
	return m
}

// Update folds one token into the fingerprint.
func (m *MinHash) Update(data []byte) {
	hv := xxhash.Sum64(data) & maxHash
	for i := range m.values {
		phv := (m.a[i]*hv + m.b[i]) % mersennePrime & maxHash
		if phv < m.values[i] {
			m.values[i] = phv
		}
	}
}

// Empty reports whether no token has been folded in yet.
func (m *MinHash) Empty() bool {
	for _, v := range m.values {
		if v != maxHash {
			return false
		}
	}
	return true
}

// Similarity estimates the Jaccard similarity with another
// fingerprint of the same permutation count.
func (m *MinHash) Similarity(other *MinHash) float64 {
	if len(m.values) == 0 || len(m.values) != len(other.values) {
		return 0
	}
	matches := 0
	for i := range m.values {
		if m.values[i] == other.values[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(m.values))
}

type minhashWire struct {
	Seed       uint64 `json:"seed"`
	HashValues string `json:"hashvalues"`
}

// Serialize renders the fingerprint as the JSON document the store
// accepts. Hash values are packed as little-endian uint64s and
// base64-encoded.
func (m *MinHash) Serialize() (string, error) {
	packed := make([]byte, 8*len(m.values))
	for i, v := range m.values {
		binary.LittleEndian.PutUint64(packed[i*8:], v)
	}
	out, err := json.Marshal(minhashWire{
		Seed:       m.seed,
		HashValues: base64.StdEncoding.EncodeToString(packed),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Deserialize restores a fingerprint serialized by Serialize. The
// permutation count must match the one it was built with.
func Deserialize(data string, numPerm int) (*MinHash, error) {
	var wire minhashWire
	if err := json.Unmarshal([]byte(data), &wire); err != nil {
		return nil, err
	}
	packed, err := base64.StdEncoding.DecodeString(wire.HashValues)
	if err != nil {
		return nil, err
	}

	m := NewMinHash(numPerm, wire.Seed)
	for i := 0; i < len(m.values) && (i+1)*8 <= len(packed); i++ {
		m.values[i] = binary.LittleEndian.Uint64(packed[i*8:])
	}
	return m, nil
}

func splitmix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
