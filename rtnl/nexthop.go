// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package rtnl

import (
	"encoding/binary"
	"fmt"

	"github.com/platinasystems/rtnl/nl"
	"golang.org/x/sys/unix"
)

const SizeofNhMsg = 8

// NhMsg is the fixed header of nexthop object messages, kernel struct
// nhmsg.
type NhMsg struct {
	Family   uint8
	Scope    uint8
	Protocol uint8
	Flags    uint32
}

func parseNhMsg(v nl.View) (m NhMsg, rest nl.View, err error) {
	if v.Len() < SizeofNhMsg {
		err = fmt.Errorf("nhmsg: %d of %d bytes: %w",
			v.Len(), SizeofNhMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	m.Scope, _ = v.U8(1)
	m.Protocol, _ = v.U8(2)
	m.Flags, _ = v.U32(4)
	rest, err = v.Sub(SizeofNhMsg)
	return
}

func (m NhMsg) append(dst []byte) []byte {
	var b [SizeofNhMsg]byte
	b[0] = m.Family
	b[1] = m.Scope
	b[2] = m.Protocol
	binary.LittleEndian.PutUint32(b[4:], m.Flags)
	return append(dst, b[:]...)
}

// Nexthop is an RTM_NEWNEXTHOP, RTM_DELNEXTHOP or RTM_GETNEXTHOP
// message describing one standalone nexthop object.
type Nexthop struct {
	nl.Hdr
	NhMsg
	Attrs []nl.Attr
}

func parseNexthop(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Nexthop{Hdr: h}
	var rest nl.View
	var err error
	if m.NhMsg, rest, err = parseNhMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, nexthopAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Nexthop) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.NhMsg.append(dst), m.Attrs)
}

func nexthopAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.NHA_ID, unix.NHA_OIF, unix.NHA_MASTER:
		return nl.DecodeUint32(h, v)
	case unix.NHA_GATEWAY:
		return decodeIP(h, v)
	case unix.NHA_GROUP_TYPE, unix.NHA_ENCAP_TYPE:
		return nl.DecodeUint16(h, v)
	case unix.NHA_GROUP, unix.NHA_ENCAP:
		// Grouping entries and encap payloads; kept raw.
		return nl.DecodeBytes(h, v)
	case unix.NHA_BLACKHOLE, unix.NHA_GROUPS, unix.NHA_FDB:
		// Flag attributes with empty payloads.
		return nl.DecodeBytes(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}
