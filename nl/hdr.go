// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

const SizeofHdr = unix.NLMSG_HDRLEN

// Align rounds a message length up to NLMSG_ALIGNTO.
func Align(i int) int {
	return (i + unix.NLMSG_ALIGNTO - 1) & ^(unix.NLMSG_ALIGNTO - 1)
}

// Hdr is the 16 byte header common to all netlink messages.
type Hdr struct {
	Len   uint32
	Type  uint16
	Flags uint16
	Seq   uint32
	Pid   uint32
}

func (h *Hdr) MsgHdr() *Hdr { return h }

func (h *Hdr) String() string {
	return fmt.Sprintf("%s len %d seq %d pid %d flags %#x",
		MsgTypeName(h.Type), h.Len, h.Seq, h.Pid, h.Flags)
}

// ParseHdr reads the envelope from the front of v and returns the payload
// region that follows it. The claimed length is untrusted: the payload is
// clamped to the bytes actually present, so a truncated capture yields a
// shorter region rather than an out of range read. A claimed length below
// SizeofHdr is ErrHdrTooShort.
func ParseHdr(v View) (Hdr, View, error) {
	var h Hdr
	if v.Len() < SizeofHdr {
		return h, View{}, fmt.Errorf("%d of %d bytes: %w",
			v.Len(), SizeofHdr, ErrHdrTooShort)
	}
	h.Len, _ = v.U32(0)
	h.Type, _ = v.U16(4)
	h.Flags, _ = v.U16(6)
	h.Seq, _ = v.U32(8)
	h.Pid, _ = v.U32(12)
	if h.Len < SizeofHdr {
		return h, View{}, fmt.Errorf("claimed len %d: %w",
			h.Len, ErrHdrTooShort)
	}
	end := int(h.Len)
	if end > v.Len() {
		end = v.Len()
	}
	payload, err := v.Slice(SizeofHdr, end-SizeofHdr)
	if err != nil {
		return h, View{}, err
	}
	return h, payload, nil
}

// appendHdr writes the envelope with whatever Len h carries; Append
// patches in the recomputed length once the payload has been emitted.
func appendHdr(dst []byte, h Hdr) []byte {
	var b [SizeofHdr]byte
	binary.LittleEndian.PutUint32(b[0:], h.Len)
	binary.LittleEndian.PutUint16(b[4:], h.Type)
	binary.LittleEndian.PutUint16(b[6:], h.Flags)
	binary.LittleEndian.PutUint32(b[8:], h.Seq)
	binary.LittleEndian.PutUint32(b[12:], h.Pid)
	return append(dst, b[:]...)
}
