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

const SizeofNdMsg = 12

// NdMsg is the fixed header of neighbour messages, kernel struct ndmsg.
// Three pad bytes sit after Family on the wire.
type NdMsg struct {
	Family  uint8
	IfIndex uint32
	State   uint16
	Flags   uint8
	Type    uint8
}

func parseNdMsg(v nl.View) (m NdMsg, rest nl.View, err error) {
	if v.Len() < SizeofNdMsg {
		err = fmt.Errorf("ndmsg: %d of %d bytes: %w",
			v.Len(), SizeofNdMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	m.IfIndex, _ = v.U32(4)
	m.State, _ = v.U16(8)
	m.Flags, _ = v.U8(10)
	m.Type, _ = v.U8(11)
	rest, err = v.Sub(SizeofNdMsg)
	return
}

func (m NdMsg) append(dst []byte) []byte {
	var b [SizeofNdMsg]byte
	b[0] = m.Family
	binary.LittleEndian.PutUint32(b[4:], m.IfIndex)
	binary.LittleEndian.PutUint16(b[8:], m.State)
	b[10] = m.Flags
	b[11] = m.Type
	return append(dst, b[:]...)
}

// Neigh is an RTM_NEWNEIGH, RTM_DELNEIGH or RTM_GETNEIGH message.
type Neigh struct {
	nl.Hdr
	NdMsg
	Attrs []nl.Attr
}

func parseNeigh(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Neigh{Hdr: h}
	var rest nl.View
	var err error
	if m.NdMsg, rest, err = parseNdMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, neighAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Neigh) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.NdMsg.append(dst), m.Attrs)
}

func (m *Neigh) String() string {
	return fmt.Sprintf("%s index %d state %#x: %d attrs",
		nl.MsgTypeName(m.Hdr.Type), m.IfIndex, m.State, len(m.Attrs))
}

func neighAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.NDA_DST:
		return decodeIP(h, v)
	case unix.NDA_LLADDR:
		return nl.DecodeBytes(h, v)
	case unix.NDA_PROBES, unix.NDA_IFINDEX, unix.NDA_MASTER,
		unix.NDA_LINK_NETNSID, unix.NDA_SRC_VNI, unix.NDA_NH_ID:
		return nl.DecodeUint32(h, v)
	case unix.NDA_VLAN:
		return nl.DecodeUint16(h, v)
	case unix.NDA_PORT:
		// VXLAN remote port, network byte order.
		return nl.DecodeBeUint16(h, v)
	case unix.NDA_VNI:
		return nl.DecodeUint32(h, v)
	case unix.NDA_PROTOCOL:
		return nl.DecodeUint8(h, v)
	case unix.NDA_CACHEINFO:
		return decodeNdaCacheInfo(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

const SizeofNdaCacheInfo = 16

// NdaCacheInfo is the NDA_CACHEINFO payload, kernel struct
// nda_cacheinfo. Times are in hundredths of seconds.
type NdaCacheInfo struct {
	Confirmed uint32
	Used      uint32
	Updated   uint32
	RefCnt    uint32
}

func (a NdaCacheInfo) Kind() uint16 { return unix.NDA_CACHEINFO }
func (a NdaCacheInfo) Size() int    { return SizeofNdaCacheInfo }

func (a NdaCacheInfo) Set(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], a.Confirmed)
	binary.LittleEndian.PutUint32(b[4:], a.Used)
	binary.LittleEndian.PutUint32(b[8:], a.Updated)
	binary.LittleEndian.PutUint32(b[12:], a.RefCnt)
}

func decodeNdaCacheInfo(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != SizeofNdaCacheInfo {
		return nil, fmt.Errorf("attr %d: cacheinfo payload %d bytes: %w",
			h.Kind(), v.Len(), nl.ErrAttrDecode)
	}
	var a NdaCacheInfo
	a.Confirmed, _ = v.U32(0)
	a.Used, _ = v.U32(4)
	a.Updated, _ = v.U32(8)
	a.RefCnt, _ = v.U32(12)
	return a, nil
}
