// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import "fmt"

// AttrIter walks a byte region as a sequence of TLV records. Fewer than
// SizeofAttrHdr bytes remaining is the normal end of the sequence; a
// record whose declared length is below the minimum or whose aligned
// footprint runs past the region is ErrTlvMalformed. The iterator never
// reads past the region regardless of what the length fields claim.
type AttrIter struct {
	v   View
	off int
}

func NewAttrIter(v View) *AttrIter { return &AttrIter{v: v} }

// Next yields the header and payload of the next record. ok is false at
// the end of the sequence and on error.
func (it *AttrIter) Next() (h AttrHdr, payload View, ok bool, err error) {
	if it.off+SizeofAttrHdr > it.v.Len() {
		return h, payload, false, nil
	}
	h.Len, _ = it.v.U16(it.off)
	h.Type, _ = it.v.U16(it.off + 2)
	if h.Len < SizeofAttrHdr {
		return h, payload, false, fmt.Errorf(
			"offset %d: declared len %d: %w", it.off, h.Len, ErrTlvMalformed)
	}
	footprint := attrAlign(int(h.Len))
	// The trailing record's padding may be cut off by the region end;
	// only the declared length itself must fit.
	if it.off+int(h.Len) > it.v.Len() {
		return h, payload, false, fmt.Errorf(
			"offset %d: len %d overruns region of %d: %w",
			it.off, h.Len, it.v.Len(), ErrTlvMalformed)
	}
	payload, _ = it.v.Slice(it.off+SizeofAttrHdr, int(h.Len)-SizeofAttrHdr)
	it.off += footprint
	return h, payload, true, nil
}
