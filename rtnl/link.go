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

const SizeofIfInfoMsg = unix.SizeofIfInfomsg

// IfInfoMsg is the fixed header of link messages, kernel struct
// ifinfomsg. L2Type is the ARPHRD_ link layer type.
type IfInfoMsg struct {
	Family uint8
	L2Type uint16
	Index  uint32
	Flags  uint32
	Change uint32
}

func parseIfInfoMsg(v nl.View) (m IfInfoMsg, rest nl.View, err error) {
	if v.Len() < SizeofIfInfoMsg {
		err = fmt.Errorf("ifinfomsg: %d of %d bytes: %w",
			v.Len(), SizeofIfInfoMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	m.L2Type, _ = v.U16(2)
	m.Index, _ = v.U32(4)
	m.Flags, _ = v.U32(8)
	m.Change, _ = v.U32(12)
	rest, err = v.Sub(SizeofIfInfoMsg)
	return
}

func (m IfInfoMsg) append(dst []byte) []byte {
	var b [SizeofIfInfoMsg]byte
	b[0] = m.Family
	binary.LittleEndian.PutUint16(b[2:], m.L2Type)
	binary.LittleEndian.PutUint32(b[4:], m.Index)
	binary.LittleEndian.PutUint32(b[8:], m.Flags)
	binary.LittleEndian.PutUint32(b[12:], m.Change)
	return append(dst, b[:]...)
}

// Link is an RTM_NEWLINK, RTM_DELLINK, RTM_GETLINK or RTM_SETLINK
// message; the envelope's Type field says which.
type Link struct {
	nl.Hdr
	IfInfoMsg
	Attrs []nl.Attr
}

func parseLink(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Link{Hdr: h}
	var rest nl.View
	var err error
	if m.IfInfoMsg, rest, err = parseIfInfoMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, linkAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Link) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.IfInfoMsg.append(dst), m.Attrs)
}

func (m *Link) String() string {
	return fmt.Sprintf("%s index %d flags %#x: %d attrs",
		nl.MsgTypeName(m.Hdr.Type), m.Index, m.IfInfoMsg.Flags,
		len(m.Attrs))
}

func linkAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.IFLA_IFNAME, unix.IFLA_QDISC, unix.IFLA_IFALIAS,
		unix.IFLA_PHYS_PORT_NAME:
		return nl.DecodeString(h, v)
	case unix.IFLA_MTU, unix.IFLA_LINK, unix.IFLA_MASTER,
		unix.IFLA_TXQLEN, unix.IFLA_WEIGHT, unix.IFLA_GROUP,
		unix.IFLA_PROMISCUITY, unix.IFLA_EXT_MASK,
		unix.IFLA_NUM_TX_QUEUES, unix.IFLA_NUM_RX_QUEUES,
		unix.IFLA_GSO_MAX_SEGS, unix.IFLA_GSO_MAX_SIZE,
		unix.IFLA_CARRIER_CHANGES, unix.IFLA_NET_NS_PID,
		unix.IFLA_NET_NS_FD:
		return nl.DecodeUint32(h, v)
	case unix.IFLA_CARRIER, unix.IFLA_LINKMODE, unix.IFLA_OPERSTATE,
		unix.IFLA_PROTO_DOWN:
		return nl.DecodeUint8(h, v)
	case unix.IFLA_LINK_NETNSID:
		return nl.DecodeInt32(h, v)
	case unix.IFLA_ADDRESS, unix.IFLA_BROADCAST, unix.IFLA_PHYS_PORT_ID,
		unix.IFLA_PHYS_SWITCH_ID:
		return nl.DecodeBytes(h, v)
	case unix.IFLA_STATS:
		return decodeLinkStats(h, v)
	case unix.IFLA_STATS64:
		return decodeLinkStats64(h, v)
	case unix.IFLA_LINKINFO:
		return p.Nest(h, v, linkInfoAttr)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

func linkInfoAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.IFLA_INFO_KIND, unix.IFLA_INFO_SLAVE_KIND:
		return nl.DecodeString(h, v)
	case unix.IFLA_INFO_DATA, unix.IFLA_INFO_SLAVE_DATA,
		unix.IFLA_INFO_XSTATS:
		// Layout depends on IFLA_INFO_KIND; keep the bytes.
		return nl.DecodeBytes(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

// Counter order of kernel struct rtnl_link_stats, rx_nohandler included.
const (
	RxPackets = iota
	TxPackets
	RxBytes
	TxBytes
	RxErrors
	TxErrors
	RxDropped
	TxDropped
	Multicast
	Collisions
	RxLengthErrors
	RxOverErrors
	RxCrcErrors
	RxFrameErrors
	RxFifoErrors
	RxMissedErrors
	TxAbortedErrors
	TxCarrierErrors
	TxFifoErrors
	TxHeartbeatErrors
	TxWindowErrors
	RxCompressed
	TxCompressed
	RxNoHandler
	nLinkStat
)

const (
	SizeofLinkStats   = nLinkStat * 4
	SizeofLinkStats64 = nLinkStat * 8
)

type LinkStats [nLinkStat]uint32

func (a LinkStats) Kind() uint16 { return unix.IFLA_STATS }
func (a LinkStats) Size() int    { return SizeofLinkStats }

func (a LinkStats) Set(b []byte) {
	for i, u := range a {
		binary.LittleEndian.PutUint32(b[4*i:], u)
	}
}

// decodeLinkStats types the counters only at the exact modern size;
// older or newer kernels ship different field counts, which stay opaque
// so they round trip untouched.
func decodeLinkStats(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != SizeofLinkStats {
		return nl.DecodeBytes(h, v)
	}
	var a LinkStats
	for i := range a {
		a[i], _ = v.U32(4 * i)
	}
	return a, nil
}

type LinkStats64 [nLinkStat]uint64

func (a LinkStats64) Kind() uint16 { return unix.IFLA_STATS64 }
func (a LinkStats64) Size() int    { return SizeofLinkStats64 }

func (a LinkStats64) Set(b []byte) {
	for i, u := range a {
		binary.LittleEndian.PutUint64(b[8*i:], u)
	}
}

func decodeLinkStats64(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != SizeofLinkStats64 {
		return nl.DecodeBytes(h, v)
	}
	var a LinkStats64
	for i := range a {
		a[i], _ = v.U64(8 * i)
	}
	return a, nil
}
