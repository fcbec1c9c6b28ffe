// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// passthrough decodes every kind as Unknown.
func passthrough(p *AttrParser, h AttrHdr, v View) (Attr, error) {
	return DecodeUnknown(h, v)
}

func TestAttrAlign(t *testing.T) {
	for l, want := range map[int]int{0: 0, 1: 4, 3: 4, 4: 4, 5: 8, 8: 8} {
		require.Equal(t, want, attrAlign(l), "align %d", l)
	}
}

func TestUint32AttrWire(t *testing.T) {
	b, err := AppendAttrs(nil, []Attr{Uint32Attr{AttrKind: 2, Value: 1}})
	require.NoError(t, err)
	require.Equal(t, []byte{8, 0, 2, 0, 1, 0, 0, 0}, b)

	attrs, err := ParseAttrs(MakeView(b), func(p *AttrParser, h AttrHdr, v View) (Attr, error) {
		return DecodeUint32(h, v)
	})
	require.NoError(t, err)
	require.Equal(t, []Attr{Uint32Attr{AttrKind: 2, Value: 1}}, attrs)
}

func TestStringAttrWire(t *testing.T) {
	b, err := AppendAttrs(nil, []Attr{StringAttr{AttrKind: 3, Value: "eth0"}})
	require.NoError(t, err)
	// 5 byte payload padded to 8; padding excluded from the length field.
	require.Equal(t, []byte{9, 0, 3, 0, 'e', 't', 'h', '0', 0, 0, 0, 0}, b)

	attrs, err := ParseAttrs(MakeView(b), func(p *AttrParser, h AttrHdr, v View) (Attr, error) {
		return DecodeString(h, v)
	})
	require.NoError(t, err)
	require.Equal(t, []Attr{StringAttr{AttrKind: 3, Value: "eth0"}}, attrs)
}

func TestAttrFlagBitsIsolated(t *testing.T) {
	// Type field 0xC00A: kind 0x000A with both flag bits set.
	b := []byte{8, 0, 0x0A, 0xC0, 1, 2, 3, 4}
	attrs, err := ParseAttrs(MakeView(b), passthrough)
	require.NoError(t, err)
	want := []Attr{Unknown{
		AttrKind: 0x0A,
		Nest:     true,
		NetOrder: true,
		Data:     []byte{1, 2, 3, 4},
	}}
	require.Empty(t, cmp.Diff(want, attrs))

	// Flags survive re-encoding.
	out, err := AppendAttrs(nil, attrs)
	require.NoError(t, err)
	require.Equal(t, b, out)
}

func TestDecodeSizeChecks(t *testing.T) {
	h := AttrHdr{Type: 1}
	v := MakeView([]byte{1, 2, 3})

	for name, dec := range map[string]func(AttrHdr, View) (Attr, error){
		"u8":   DecodeUint8,
		"u16":  DecodeUint16,
		"u32":  DecodeUint32,
		"u64":  DecodeUint64,
		"i32":  DecodeInt32,
		"be16": DecodeBeUint16,
		"be32": DecodeBeUint32,
	} {
		_, err := dec(h, v)
		require.ErrorIs(t, err, ErrAttrDecode, name)
	}
}

func TestEmptyRegion(t *testing.T) {
	attrs, err := ParseAttrs(MakeView(nil), passthrough)
	require.NoError(t, err)
	require.Empty(t, attrs)

	// Trailing bytes too short for a TLV header end the walk.
	attrs, err = ParseAttrs(MakeView([]byte{0, 0, 0}), passthrough)
	require.NoError(t, err)
	require.Empty(t, attrs)
}

func TestMalformedTlv(t *testing.T) {
	// Declared length below the TLV minimum.
	_, err := ParseAttrs(MakeView([]byte{2, 0, 1, 0}), passthrough)
	require.ErrorIs(t, err, ErrTlvMalformed)

	// Declared length past the region.
	_, err = ParseAttrs(MakeView([]byte{12, 0, 1, 0, 1, 2, 3, 4}), passthrough)
	require.ErrorIs(t, err, ErrTlvMalformed)
}

func TestParseIsAtomic(t *testing.T) {
	// One good attr followed by an overrunning one.
	b := []byte{
		8, 0, 1, 0, 1, 0, 0, 0,
		40, 0, 2, 0, 1, 2, 3, 4,
	}
	attrs, err := ParseAttrs(MakeView(b), passthrough)
	require.ErrorIs(t, err, ErrTlvMalformed)
	require.Nil(t, attrs)
}

// nestOnOne recurses into kind 1 and passes everything else through.
func nestOnOne(p *AttrParser, h AttrHdr, v View) (Attr, error) {
	if h.Kind() == 1 {
		return p.Nest(h, v, nestOnOne)
	}
	return DecodeUnknown(h, v)
}

func TestNestRoundTrip(t *testing.T) {
	in := []Attr{
		Nest{AttrKind: 1, Attrs: []Attr{
			Uint32Attr{AttrKind: 2, Value: 7},
			Nest{AttrKind: 1, Attrs: []Attr{
				Uint32Attr{AttrKind: 3, Value: 8},
			}},
		}},
	}
	b, err := AppendAttrs(nil, in)
	require.NoError(t, err)

	got, err := ParseAttrs(MakeView(b), func(p *AttrParser, h AttrHdr, v View) (Attr, error) {
		if h.Kind() == 1 {
			return p.Nest(h, v, func(p *AttrParser, h AttrHdr, v View) (Attr, error) {
				if h.Kind() == 1 {
					return p.Nest(h, v, func(p *AttrParser, h AttrHdr, v View) (Attr, error) {
						return DecodeUint32(h, v)
					})
				}
				return DecodeUint32(h, v)
			})
		}
		return DecodeUint32(h, v)
	})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(in, got))
}

func TestNestDepthLimit(t *testing.T) {
	// Wrap an empty payload one level deeper than the ceiling allows.
	var b []byte
	for i := 0; i < MaxNestDepth+1; i++ {
		inner := b
		hdr := []byte{0, 0, 1, 0x80}
		hdr[0] = byte(SizeofAttrHdr + len(inner))
		hdr[1] = byte((SizeofAttrHdr + len(inner)) >> 8)
		b = append(hdr, inner...)
	}
	_, err := ParseAttrs(MakeView(b), nestOnOne)
	require.ErrorIs(t, err, ErrTlvMalformed)

	// Two levels fewer decodes fine.
	_, err = ParseAttrs(MakeView(b[2*SizeofAttrHdr:]), nestOnOne)
	require.NoError(t, err)
}

func TestAppendAttrsSizeCheck(t *testing.T) {
	big := BytesAttr{AttrKind: 1, Data: make([]byte, maxAttrSize+1)}
	_, err := AppendAttrs(nil, []Attr{big})
	require.ErrorIs(t, err, ErrAttrSize)

	_, err = AppendAttrs(nil, []Attr{Nest{AttrKind: 2, Attrs: []Attr{big}}})
	require.ErrorIs(t, err, ErrAttrSize)
}

func TestNetByteOrderAttrWire(t *testing.T) {
	b, err := AppendAttrs(nil, []Attr{BeUint16Attr{AttrKind: unix.NDA_PORT, Value: 4789}})
	require.NoError(t, err)
	require.Equal(t, []byte{6, 0, byte(unix.NDA_PORT), 0x40, 0x12, 0xB5, 0, 0}, b)
}
