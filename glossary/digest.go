package glossary

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Width is the byte width shared by digests and fingerprints.
const Width = sha256.Size

// Digest is the SHA-256 of a normalized term.
type Digest [Width]byte

// Sum returns the digest of s. The input is hashed as given; callers normalize first.
func Sum(s string) Digest {
	return Digest(sha256.Sum256([]byte(s)))
}

// String returns the hex encoding of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Normalize maps a term or candidate to the form that is digested and compared.
// Surrounding whitespace is dropped, the text is put in NFC and lowercased.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return strings.ToLower(s)
}
