// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import (
	"encoding/binary"
	"fmt"
)

// MaxNestDepth caps attribute recursion. The 4 byte TLV minimum already
// bounds depth at region length over four; this is a second, fixed
// ceiling for adversarial buffers.
const MaxNestDepth = 32

// maxAttrSize is the largest payload the 16 bit TLV length can carry.
const maxAttrSize = 0xffff - SizeofAttrHdr

// AttrDecoder turns one TLV record into a typed Attr. Unrecognized kinds
// must fall back to DecodeUnknown, never an error; only a structurally
// invalid payload for a recognized kind may fail. Nested kinds recurse
// through p.Nest so the depth ceiling holds across catalogs.
type AttrDecoder func(p *AttrParser, h AttrHdr, v View) (Attr, error)

// AttrParser carries the recursion depth of one decode call. The zero
// value is ready to use.
type AttrParser struct {
	depth int
}

// Parse decodes a byte region into an ordered attribute list. The result
// is atomic: any malformed TLV or failed typed decode discards the whole
// list and returns the error.
func (p *AttrParser) Parse(v View, dec AttrDecoder) ([]Attr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxNestDepth {
		return nil, fmt.Errorf("nested beyond depth %d: %w",
			MaxNestDepth, ErrTlvMalformed)
	}
	var attrs []Attr
	it := NewAttrIter(v)
	for {
		h, payload, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		a, err := dec(p, h, payload)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// Nest decodes a nested attribute's payload with dec and wraps the
// result as a Nest attr.
func (p *AttrParser) Nest(h AttrHdr, v View, dec AttrDecoder) (Attr, error) {
	attrs, err := p.Parse(v, dec)
	if err != nil {
		return nil, err
	}
	return Nest{AttrKind: h.Kind(), Attrs: attrs}, nil
}

// ParseAttrs decodes a top level attribute region.
func ParseAttrs(v View, dec AttrDecoder) ([]Attr, error) {
	var p AttrParser
	return p.Parse(v, dec)
}

// SizeAttrs is the encoded footprint of an attribute list: each entry's
// TLV header plus payload, padded to alignment.
func SizeAttrs(attrs []Attr) (l int) {
	for _, a := range attrs {
		l += SizeofAttrHdr + attrAlign(a.Size())
	}
	return
}

// setAttrs emits attrs into b, which must be exactly SizeAttrs(attrs)
// bytes of zeros; padding is whatever zero fill remains between records.
func setAttrs(b []byte, attrs []Attr) {
	i := 0
	for _, a := range attrs {
		s := a.Size()
		typ := a.Kind() & KindMask
		if f, ok := a.(flagger); ok {
			typ |= f.AttrFlags()
		}
		binary.LittleEndian.PutUint16(b[i:], uint16(SizeofAttrHdr+s))
		binary.LittleEndian.PutUint16(b[i+2:], typ)
		a.Set(b[i+SizeofAttrHdr : i+SizeofAttrHdr+s])
		i += SizeofAttrHdr + attrAlign(s)
	}
}

// checkAttrs rejects any attr, at any nesting level, whose payload the
// TLV length field cannot represent. Encoding reports the violation
// instead of truncating.
func checkAttrs(attrs []Attr) error {
	for _, a := range attrs {
		if s := a.Size(); s < 0 || s > maxAttrSize {
			return fmt.Errorf("attr %d: payload %d bytes: %w",
				a.Kind(), s, ErrAttrSize)
		}
		if n, ok := a.(Nest); ok {
			if err := checkAttrs(n.Attrs); err != nil {
				return err
			}
		}
	}
	return nil
}

// AppendAttrs encodes an ordered attribute list onto dst.
func AppendAttrs(dst []byte, attrs []Attr) ([]byte, error) {
	if err := checkAttrs(attrs); err != nil {
		return nil, err
	}
	n := len(dst)
	sz := SizeAttrs(attrs)
	dst = append(dst, make([]byte, sz)...)
	setAttrs(dst[n:n+sz], attrs)
	return dst, nil
}
