package glossary

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrInto(t *testing.T) {
	t.Run("ors byte by byte", func(t *testing.T) {
		dst := []byte{0x01, 0xF0, 0x00}
		OrInto(dst, []byte{0x02, 0x0F, 0x00})
		assert.Equal(t, []byte{0x03, 0xFF, 0x00}, dst)
	})

	t.Run("panics on width mismatch", func(t *testing.T) {
		assert.Panics(t, func() {
			OrInto(make([]byte, Width), make([]byte, Width-1))
		})
		assert.Panics(t, func() {
			OrInto(make([]byte, 1), make([]byte, Width))
		})
	})

	t.Run("commutative and associative", func(t *testing.T) {
		a, b, c := Sum("ato"), Sum("atc"), Sum("mdi")

		left := make([]byte, Width)
		OrInto(left, a[:])
		OrInto(left, b[:])
		OrInto(left, c[:])

		right := make([]byte, Width)
		OrInto(right, c[:])
		OrInto(right, a[:])
		OrInto(right, b[:])

		assert.True(t, bytes.Equal(left, right))
	})
}

func TestFingerprintCovers(t *testing.T) {
	var f Fingerprint
	assert.False(t, f.Covers(Sum("ato")), "empty fingerprint covers nothing")
	assert.True(t, f.Covers(Digest{}), "zero digest is always covered")

	f.Add(Sum("ato"))
	assert.True(t, f.Covers(Sum("ato")))

	before := f
	f.Add(Sum("atc"))
	assert.True(t, f.Covers(Sum("ato")), "adding never clears bits")
	assert.True(t, f.Covers(Sum("atc")))
	assert.True(t, f.Superset(before))
}

func TestFingerprintPopCount(t *testing.T) {
	var f Fingerprint
	assert.Zero(t, f.PopCount())
	assert.Zero(t, f.Density())

	for i := range f {
		f[i] = 0xFF
	}
	assert.Equal(t, Width*8, f.PopCount())
	assert.InDelta(t, 1.0, f.Density(), 1e-9)

	var g Fingerprint
	g[0] = 0x81
	assert.Equal(t, 2, g.PopCount())
}

func TestParseFingerprint(t *testing.T) {
	var f Fingerprint
	f.Add(Sum("ato"))
	f.Add(Sum("atc"))

	parsed, err := ParseFingerprint(f.String())
	require.NoError(t, err)
	assert.Equal(t, f, parsed)

	_, err = ParseFingerprint("zz")
	assert.ErrorIs(t, err, ErrBadFingerprint)

	_, err = ParseFingerprint("00ff")
	assert.ErrorIs(t, err, ErrBadFingerprint)
}

func TestFingerprint_ValueMethods(t *testing.T) {
	assert.Zero(t, Fingerprint{}.PopCount())
	assert.Zero(t, Fingerprint{}.Density())
	assert.True(t, Fingerprint{}.Covers(Digest{}))

	ix, err := Compile(map[string]Entry{"ato": {Text: "ATO"}})
	require.NoError(t, err)
	assert.Equal(t, ix.Stats().Density, ix.Fingerprint().Density())
	assert.True(t, ix.Fingerprint().Covers(Sum("ato")))
	assert.True(t, ix.Fingerprint().Superset(Fingerprint{}))
}
