package glossary

import (
	"encoding/hex"
	"fmt"
	"math/bits"
)

// Fingerprint is the bitwise union of every indexed term's digest.
type Fingerprint [Width]byte

// OrInto ORs src into dst byte by byte.
//
// Both operands must have the same length. A mismatch is a programming error
// and panics.
func OrInto(dst, src []byte) {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("glossary: operand width mismatch: %d != %d", len(dst), len(src)))
	}
	for i := range src {
		dst[i] |= src[i]
	}
}

// Add folds d into the fingerprint.
func (f *Fingerprint) Add(d Digest) {
	OrInto(f[:], d[:])
}

// Covers reports whether every bit set in d is also set in f.
func (f Fingerprint) Covers(d Digest) bool {
	for i := range d {
		if d[i]&f[i] != d[i] {
			return false
		}
	}
	return true
}

// Superset reports whether f has every bit of other set.
func (f Fingerprint) Superset(other Fingerprint) bool {
	return f.Covers(Digest(other))
}

// PopCount returns the number of set bits.
func (f Fingerprint) PopCount() int {
	n := 0
	for _, b := range f {
		n += bits.OnesCount8(b)
	}
	return n
}

// Density returns the fraction of set bits, in [0, 1].
//
// A density of 1 means the pre-check passes for every candidate.
func (f Fingerprint) Density() float64 {
	return float64(f.PopCount()) / float64(Width*8)
}

// String returns the hex encoding of f.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// ParseFingerprint decodes a hex-encoded fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	b, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("%w: %v", ErrBadFingerprint, err)
	}
	if len(b) != Width {
		return f, fmt.Errorf("%w: got %d bytes", ErrBadFingerprint, len(b))
	}
	copy(f[:], b)
	return f, nil
}
