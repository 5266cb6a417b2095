package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the fingerprint serialization format.
//
// Tags are frozen: a tag byte never changes meaning. New tags may be added;
// changing existing ones invalidates every stored fingerprint and the
// caches keyed by them.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
const HashVersion byte = 1

const (
	TagReservedZero byte = 0x00

	// Tree structure
	TagNode  byte = 0x01
	TagText  byte = 0x02
	TagAttr  byte = 0x03
	TagField byte = 0x04
	TagEnd   byte = 0x05

	// Raw content keys
	TagSource  byte = 0x10
	TagDialect byte = 0x11

	// Reserved 0xFE-0xFF
)

var allTags = []byte{
	TagReservedZero,
	TagNode, TagText, TagAttr, TagField, TagEnd,
	TagSource, TagDialect,
}
