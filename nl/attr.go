// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

const SizeofAttrHdr = unix.SizeofNlAttr

// KindMask selects the attribute type code from the 16 bit type field;
// the top two bits are the nested and net-byte-order flags.
const KindMask = ^uint16(unix.NLA_F_NESTED | unix.NLA_F_NET_BYTEORDER)

// attrAlign rounds an attribute payload length up to RTA_ALIGNTO.
func attrAlign(l int) int {
	return (l + unix.RTA_ALIGNTO - 1) & ^(unix.RTA_ALIGNTO - 1)
}

// AttrHdr is the decoded 4 byte TLV header of one attribute record.
type AttrHdr struct {
	Len  uint16 // includes this header
	Type uint16 // flag bits plus kind
}

func (h AttrHdr) Kind() uint16       { return h.Type & KindMask }
func (h AttrHdr) Nested() bool       { return h.Type&unix.NLA_F_NESTED != 0 }
func (h AttrHdr) NetByteOrder() bool { return h.Type&unix.NLA_F_NET_BYTEORDER != 0 }

// Attr is one decoded attribute value. Size is the payload length with
// the TLV header excluded; Set stores exactly Size bytes into a buffer
// the encoder has already sized. Attrs own their bytes: nothing in an
// Attr may alias the buffer it was decoded from.
type Attr interface {
	Kind() uint16
	Size() int
	Set(b []byte)
}

// flagger is implemented by attrs whose TLV type field carries NLA_F_
// bits on the wire.
type flagger interface {
	AttrFlags() uint16
}

// Unknown holds an attribute whose kind no catalog recognizes. The raw
// payload and the type field flag bits survive a decode/encode round
// trip unchanged; producing one is never an error.
type Unknown struct {
	AttrKind uint16
	Nest     bool
	NetOrder bool
	Data     []byte
}

func (a Unknown) Kind() uint16 { return a.AttrKind }
func (a Unknown) Size() int    { return len(a.Data) }
func (a Unknown) Set(b []byte) { copy(b, a.Data) }

func (a Unknown) AttrFlags() (f uint16) {
	if a.Nest {
		f |= unix.NLA_F_NESTED
	}
	if a.NetOrder {
		f |= unix.NLA_F_NET_BYTEORDER
	}
	return
}

func (a Unknown) String() string {
	return fmt.Sprintf("attr %d: %d opaque bytes", a.AttrKind, len(a.Data))
}

// DecodeUnknown is the fallback arm of every attribute catalog.
func DecodeUnknown(h AttrHdr, v View) (Attr, error) {
	return Unknown{
		AttrKind: h.Kind(),
		Nest:     h.Nested(),
		NetOrder: h.NetByteOrder(),
		Data:     v.Bytes(),
	}, nil
}

func decodeErr(h AttrHdr, want string, v View) error {
	return fmt.Errorf("attr %d: payload %d bytes, want %s: %w",
		h.Kind(), v.Len(), want, ErrAttrDecode)
}

type Uint8Attr struct {
	AttrKind uint16
	Value    uint8
}

func (a Uint8Attr) Kind() uint16 { return a.AttrKind }
func (a Uint8Attr) Size() int    { return 1 }
func (a Uint8Attr) Set(b []byte) { b[0] = a.Value }

func DecodeUint8(h AttrHdr, v View) (Attr, error) {
	if v.Len() != 1 {
		return nil, decodeErr(h, "1", v)
	}
	u, _ := v.U8(0)
	return Uint8Attr{h.Kind(), u}, nil
}

type Uint16Attr struct {
	AttrKind uint16
	Value    uint16
}

func (a Uint16Attr) Kind() uint16 { return a.AttrKind }
func (a Uint16Attr) Size() int    { return 2 }
func (a Uint16Attr) Set(b []byte) { binary.LittleEndian.PutUint16(b, a.Value) }

func DecodeUint16(h AttrHdr, v View) (Attr, error) {
	if v.Len() != 2 {
		return nil, decodeErr(h, "2", v)
	}
	u, _ := v.U16(0)
	return Uint16Attr{h.Kind(), u}, nil
}

type Uint32Attr struct {
	AttrKind uint16
	Value    uint32
}

func (a Uint32Attr) Kind() uint16 { return a.AttrKind }
func (a Uint32Attr) Size() int    { return 4 }
func (a Uint32Attr) Set(b []byte) { binary.LittleEndian.PutUint32(b, a.Value) }

func DecodeUint32(h AttrHdr, v View) (Attr, error) {
	if v.Len() != 4 {
		return nil, decodeErr(h, "4", v)
	}
	u, _ := v.U32(0)
	return Uint32Attr{h.Kind(), u}, nil
}

type Uint64Attr struct {
	AttrKind uint16
	Value    uint64
}

func (a Uint64Attr) Kind() uint16 { return a.AttrKind }
func (a Uint64Attr) Size() int    { return 8 }
func (a Uint64Attr) Set(b []byte) { binary.LittleEndian.PutUint64(b, a.Value) }

func DecodeUint64(h AttrHdr, v View) (Attr, error) {
	if v.Len() != 8 {
		return nil, decodeErr(h, "8", v)
	}
	u, _ := v.U64(0)
	return Uint64Attr{h.Kind(), u}, nil
}

type Int32Attr struct {
	AttrKind uint16
	Value    int32
}

func (a Int32Attr) Kind() uint16 { return a.AttrKind }
func (a Int32Attr) Size() int    { return 4 }
func (a Int32Attr) Set(b []byte) { binary.LittleEndian.PutUint32(b, uint32(a.Value)) }

func DecodeInt32(h AttrHdr, v View) (Attr, error) {
	if v.Len() != 4 {
		return nil, decodeErr(h, "4", v)
	}
	i, _ := v.I32(0)
	return Int32Attr{h.Kind(), i}, nil
}

// BeUint16Attr is a 16 bit value carried in network byte order, e.g.
// NDA_PORT. Its TLV type field carries NLA_F_NET_BYTEORDER.
type BeUint16Attr struct {
	AttrKind uint16
	Value    uint16
}

func (a BeUint16Attr) Kind() uint16      { return a.AttrKind }
func (a BeUint16Attr) Size() int         { return 2 }
func (a BeUint16Attr) Set(b []byte)      { binary.BigEndian.PutUint16(b, a.Value) }
func (a BeUint16Attr) AttrFlags() uint16 { return unix.NLA_F_NET_BYTEORDER }

func DecodeBeUint16(h AttrHdr, v View) (Attr, error) {
	if v.Len() != 2 {
		return nil, decodeErr(h, "2", v)
	}
	u, _ := v.BeU16(0)
	return BeUint16Attr{h.Kind(), u}, nil
}

type BeUint32Attr struct {
	AttrKind uint16
	Value    uint32
}

func (a BeUint32Attr) Kind() uint16      { return a.AttrKind }
func (a BeUint32Attr) Size() int         { return 4 }
func (a BeUint32Attr) Set(b []byte)      { binary.BigEndian.PutUint32(b, a.Value) }
func (a BeUint32Attr) AttrFlags() uint16 { return unix.NLA_F_NET_BYTEORDER }

func DecodeBeUint32(h AttrHdr, v View) (Attr, error) {
	if v.Len() != 4 {
		return nil, decodeErr(h, "4", v)
	}
	u, _ := v.BeU32(0)
	return BeUint32Attr{h.Kind(), u}, nil
}

// StringAttr is a NUL terminated string payload such as IFLA_IFNAME.
type StringAttr struct {
	AttrKind uint16
	Value    string
}

func (a StringAttr) Kind() uint16 { return a.AttrKind }
func (a StringAttr) Size() int    { return len(a.Value) + 1 }

func (a StringAttr) Set(b []byte) {
	copy(b, a.Value)
	b[len(a.Value)] = 0
}

func (a StringAttr) String() string { return a.Value }

// DecodeString strips trailing NULs; the kernel is not consistent about
// sending exactly one.
func DecodeString(h AttrHdr, v View) (Attr, error) {
	b := v.Bytes()
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return StringAttr{h.Kind(), string(b)}, nil
}

// BytesAttr is a recognized kind whose payload stays raw, e.g. a link
// layer address of a type the caller interprets.
type BytesAttr struct {
	AttrKind uint16
	Data     []byte
}

func (a BytesAttr) Kind() uint16 { return a.AttrKind }
func (a BytesAttr) Size() int    { return len(a.Data) }
func (a BytesAttr) Set(b []byte) { copy(b, a.Data) }

func DecodeBytes(h AttrHdr, v View) (Attr, error) {
	return BytesAttr{h.Kind(), v.Bytes()}, nil
}

// Nest is an attribute whose payload is itself an ordered attribute
// list. Its TLV type field carries NLA_F_NESTED.
type Nest struct {
	AttrKind uint16
	Attrs    []Attr
}

func (a Nest) Kind() uint16      { return a.AttrKind }
func (a Nest) Size() int         { return SizeAttrs(a.Attrs) }
func (a Nest) AttrFlags() uint16 { return unix.NLA_F_NESTED }

func (a Nest) Set(b []byte) {
	setAttrs(b, a.Attrs)
}
