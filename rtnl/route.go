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

const SizeofRtMsg = unix.SizeofRtMsg

// RtMsg is the fixed header of route messages, kernel struct rtmsg.
type RtMsg struct {
	Family   uint8
	DstLen   uint8
	SrcLen   uint8
	Tos      uint8
	Table    uint8
	Protocol uint8
	Scope    uint8
	Type     uint8
	Flags    uint32
}

func parseRtMsg(v nl.View) (m RtMsg, rest nl.View, err error) {
	if v.Len() < SizeofRtMsg {
		err = fmt.Errorf("rtmsg: %d of %d bytes: %w",
			v.Len(), SizeofRtMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	m.DstLen, _ = v.U8(1)
	m.SrcLen, _ = v.U8(2)
	m.Tos, _ = v.U8(3)
	m.Table, _ = v.U8(4)
	m.Protocol, _ = v.U8(5)
	m.Scope, _ = v.U8(6)
	m.Type, _ = v.U8(7)
	m.Flags, _ = v.U32(8)
	rest, err = v.Sub(SizeofRtMsg)
	return
}

func (m RtMsg) append(dst []byte) []byte {
	var b [SizeofRtMsg]byte
	b[0] = m.Family
	b[1] = m.DstLen
	b[2] = m.SrcLen
	b[3] = m.Tos
	b[4] = m.Table
	b[5] = m.Protocol
	b[6] = m.Scope
	b[7] = m.Type
	binary.LittleEndian.PutUint32(b[8:], m.Flags)
	return append(dst, b[:]...)
}

// Route is an RTM_NEWROUTE, RTM_DELROUTE or RTM_GETROUTE message.
type Route struct {
	nl.Hdr
	RtMsg
	Attrs []nl.Attr
}

func parseRoute(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Route{Hdr: h}
	var rest nl.View
	var err error
	if m.RtMsg, rest, err = parseRtMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, routeAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Route) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.RtMsg.append(dst), m.Attrs)
}

func (m *Route) String() string {
	return fmt.Sprintf("%s table %d proto %d scope %d type %d: %d attrs",
		nl.MsgTypeName(m.Hdr.Type), m.Table, m.Protocol, m.Scope,
		m.RtMsg.Type, len(m.Attrs))
}

func routeAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.RTA_DST, unix.RTA_SRC, unix.RTA_GATEWAY, unix.RTA_PREFSRC:
		return decodeIP(h, v)
	case unix.RTA_OIF, unix.RTA_IIF, unix.RTA_PRIORITY, unix.RTA_FLOW,
		unix.RTA_TABLE, unix.RTA_MARK, unix.RTA_UID, unix.RTA_NH_ID:
		return nl.DecodeUint32(h, v)
	case unix.RTA_PREF, unix.RTA_TTL_PROPAGATE:
		return nl.DecodeUint8(h, v)
	case unix.RTA_EXPIRES:
		return nl.DecodeUint64(h, v)
	case unix.RTA_METRICS:
		return p.Nest(h, v, routeMetricAttr)
	case unix.RTA_CACHEINFO:
		return decodeRtaCacheInfo(h, v)
	case unix.RTA_MULTIPATH, unix.RTA_VIA, unix.RTA_NEWDST,
		unix.RTA_ENCAP, unix.RTA_MFC_STATS:
		// Structured payloads the catalog does not model; kept raw.
		return nl.DecodeBytes(h, v)
	case unix.RTA_ENCAP_TYPE:
		return nl.DecodeUint16(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

// routeMetricAttr covers the RTAX_ kinds inside RTA_METRICS. All are
// u32 except the congestion control algorithm name.
func routeMetricAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.RTAX_LOCK, unix.RTAX_MTU, unix.RTAX_WINDOW, unix.RTAX_RTT,
		unix.RTAX_RTTVAR, unix.RTAX_SSTHRESH, unix.RTAX_CWND,
		unix.RTAX_ADVMSS, unix.RTAX_REORDERING, unix.RTAX_HOPLIMIT,
		unix.RTAX_INITCWND, unix.RTAX_FEATURES, unix.RTAX_RTO_MIN,
		unix.RTAX_INITRWND, unix.RTAX_QUICKACK, unix.RTAX_FASTOPEN_NO_COOKIE:
		return nl.DecodeUint32(h, v)
	case unix.RTAX_CC_ALGO:
		return nl.DecodeString(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

const SizeofRtaCacheInfo = 32

// RtaCacheInfo is the RTA_CACHEINFO payload, kernel struct rta_cacheinfo.
type RtaCacheInfo struct {
	ClntRef uint32
	LastUse uint32
	Expires uint32
	Error   uint32
	Used    uint32
	Id      uint32
	Ts      uint32
	TsAge   uint32
}

func (a RtaCacheInfo) Kind() uint16 { return unix.RTA_CACHEINFO }
func (a RtaCacheInfo) Size() int    { return SizeofRtaCacheInfo }

func (a RtaCacheInfo) Set(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], a.ClntRef)
	binary.LittleEndian.PutUint32(b[4:], a.LastUse)
	binary.LittleEndian.PutUint32(b[8:], a.Expires)
	binary.LittleEndian.PutUint32(b[12:], a.Error)
	binary.LittleEndian.PutUint32(b[16:], a.Used)
	binary.LittleEndian.PutUint32(b[20:], a.Id)
	binary.LittleEndian.PutUint32(b[24:], a.Ts)
	binary.LittleEndian.PutUint32(b[28:], a.TsAge)
}

func decodeRtaCacheInfo(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != SizeofRtaCacheInfo {
		return nil, fmt.Errorf("attr %d: cacheinfo payload %d bytes: %w",
			h.Kind(), v.Len(), nl.ErrAttrDecode)
	}
	var a RtaCacheInfo
	a.ClntRef, _ = v.U32(0)
	a.LastUse, _ = v.U32(4)
	a.Expires, _ = v.U32(8)
	a.Error, _ = v.U32(12)
	a.Used, _ = v.U32(16)
	a.Id, _ = v.U32(20)
	a.Ts, _ = v.U32(24)
	a.TsAge, _ = v.U32(28)
	return a, nil
}
