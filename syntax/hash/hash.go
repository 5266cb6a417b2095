// Package hash computes structural fingerprints of syntax trees.
package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/chazu/objectscript/syntax"
	"github.com/chazu/objectscript/syntax/dump"
)

// Fingerprint computes the SHA-256 fingerprint of a tree.
//
// The fingerprint covers node kinds, field names, attributes and byte
// ranges, so two parses of the same text always agree and any structural
// change produces a different value.
func Fingerprint(root interface{ Span() syntax.Span }, src string) [32]byte {
	return FingerprintNode(dump.Encode(root, src))
}

// FingerprintNode computes the fingerprint of an already dumped tree.
func FingerprintNode(n *dump.Node) [32]byte {
	return sha256.Sum256(Serialize(n))
}

// Content computes the key of a source text as parsed under a dialect.
// Caches use it to recognise unchanged files without parsing them.
func Content(src, dialect string) [32]byte {
	s := &serializer{buf: make([]byte, 0, len(src)+32)}
	s.writeByte(HashVersion)
	s.writeByte(TagDialect)
	s.writeString(dialect)
	s.writeByte(TagSource)
	s.writeString(src)
	return sha256.Sum256(s.buf)
}

// Hex renders a fingerprint as lower-case hex.
func Hex(fp [32]byte) string {
	return hex.EncodeToString(fp[:])
}
