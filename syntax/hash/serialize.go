package hash

import (
	"encoding/binary"

	"github.com/chazu/objectscript/syntax/dump"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of dumped trees.
//
// Encoding conventions:
//   - First byte: HashVersion
//   - Integers: big-endian int64
//   - Strings: uint32 big-endian length + bytes
//   - Nodes: TagNode kind start end [TagText text] attrs fields TagEnd
//   - Attrs and fields keep their encoded order
// ---------------------------------------------------------------------------

// Serialize produces the byte serialization of a dumped tree.
func Serialize(n *dump.Node) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeNode(n)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeInt(v int) {
	s.writeInt64(int64(v))
}

func (s *serializer) serializeNode(n *dump.Node) {
	if n == nil {
		s.writeByte(TagReservedZero)
		return
	}
	s.writeByte(TagNode)
	s.writeString(n.Kind)
	s.writeInt(n.Start)
	s.writeInt(n.End)
	if n.Text != "" {
		s.writeByte(TagText)
		s.writeString(n.Text)
	}
	for _, a := range n.Attrs {
		s.writeByte(TagAttr)
		s.writeString(a.Name)
		s.writeString(a.Value)
	}
	for _, f := range n.Fields {
		s.writeByte(TagField)
		s.writeString(f.Name)
		s.writeUint32(uint32(len(f.Nodes)))
		for _, c := range f.Nodes {
			s.serializeNode(c)
		}
	}
	s.writeByte(TagEnd)
}
