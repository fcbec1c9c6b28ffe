// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import (
	"encoding/binary"
	"fmt"
)

// View is a bounds checked, read only window over a caller owned buffer.
// Every accessor validates offset and width before indexing and returns
// ErrBufferTooShort instead of reading out of bounds. A View never owns
// its bytes; anything that outlives the parse must copy out (see Bytes).
type View struct {
	b []byte
}

func MakeView(b []byte) View { return View{b} }

func (v View) Len() int { return len(v.b) }

func (v View) check(off, n int) error {
	if off < 0 || n < 0 || off+n > len(v.b) {
		return fmt.Errorf("%d bytes at offset %d of %d: %w",
			n, off, len(v.b), ErrBufferTooShort)
	}
	return nil
}

// Slice returns a sub-view of n bytes starting at off.
func (v View) Slice(off, n int) (View, error) {
	if err := v.check(off, n); err != nil {
		return View{}, err
	}
	return View{v.b[off : off+n]}, nil
}

// Sub returns the tail of the view starting at off.
func (v View) Sub(off int) (View, error) {
	return v.Slice(off, len(v.b)-off)
}

func (v View) U8(off int) (uint8, error) {
	if err := v.check(off, 1); err != nil {
		return 0, err
	}
	return v.b[off], nil
}

// Multi-byte reads are little-endian; rtnetlink is a host order protocol
// and the supported hosts are little-endian. The Be variants serve
// attribute payloads flagged NLA_F_NET_BYTEORDER.

func (v View) U16(off int) (uint16, error) {
	if err := v.check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.b[off:]), nil
}

func (v View) U32(off int) (uint32, error) {
	if err := v.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v.b[off:]), nil
}

func (v View) U64(off int) (uint64, error) {
	if err := v.check(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v.b[off:]), nil
}

func (v View) I32(off int) (int32, error) {
	u, err := v.U32(off)
	return int32(u), err
}

func (v View) BeU16(off int) (uint16, error) {
	if err := v.check(off, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(v.b[off:]), nil
}

func (v View) BeU32(off int) (uint32, error) {
	if err := v.check(off, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v.b[off:]), nil
}

// Bytes copies the viewed region out of the borrowed buffer.
func (v View) Bytes() []byte {
	b := make([]byte, len(v.b))
	copy(b, v.b)
	return b
}
