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

const SizeofIfAddrMsg = unix.SizeofIfAddrmsg

// IfAddrMsg is the fixed header of address messages, kernel struct
// ifaddrmsg.
type IfAddrMsg struct {
	Family    uint8
	PrefixLen uint8
	Flags     uint8
	Scope     uint8
	Index     uint32
}

func parseIfAddrMsg(v nl.View) (m IfAddrMsg, rest nl.View, err error) {
	if v.Len() < SizeofIfAddrMsg {
		err = fmt.Errorf("ifaddrmsg: %d of %d bytes: %w",
			v.Len(), SizeofIfAddrMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	m.PrefixLen, _ = v.U8(1)
	m.Flags, _ = v.U8(2)
	m.Scope, _ = v.U8(3)
	m.Index, _ = v.U32(4)
	rest, err = v.Sub(SizeofIfAddrMsg)
	return
}

func (m IfAddrMsg) append(dst []byte) []byte {
	var b [SizeofIfAddrMsg]byte
	b[0] = m.Family
	b[1] = m.PrefixLen
	b[2] = m.Flags
	b[3] = m.Scope
	binary.LittleEndian.PutUint32(b[4:], m.Index)
	return append(dst, b[:]...)
}

// Addr is an RTM_NEWADDR, RTM_DELADDR or RTM_GETADDR message.
type Addr struct {
	nl.Hdr
	IfAddrMsg
	Attrs []nl.Attr
}

func parseAddr(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Addr{Hdr: h}
	var rest nl.View
	var err error
	if m.IfAddrMsg, rest, err = parseIfAddrMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, addrAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Addr) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.IfAddrMsg.append(dst), m.Attrs)
}

func (m *Addr) String() string {
	return fmt.Sprintf("%s index %d /%d: %d attrs",
		nl.MsgTypeName(m.Hdr.Type), m.Index, m.PrefixLen, len(m.Attrs))
}

func addrAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.IFA_ADDRESS, unix.IFA_LOCAL, unix.IFA_BROADCAST,
		unix.IFA_ANYCAST, unix.IFA_MULTICAST:
		return decodeIP(h, v)
	case unix.IFA_LABEL:
		return nl.DecodeString(h, v)
	case unix.IFA_FLAGS, unix.IFA_RT_PRIORITY:
		return nl.DecodeUint32(h, v)
	case unix.IFA_CACHEINFO:
		return decodeIfAddrCacheInfo(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

const SizeofIfAddrCacheInfo = 16

// IfAddrCacheInfo is the IFA_CACHEINFO payload, kernel struct
// ifa_cacheinfo. Lifetimes are in seconds, 0xffffffff means forever.
type IfAddrCacheInfo struct {
	Prefered uint32
	Valid    uint32
	Cstamp   uint32 // created, hundredths of seconds
	Tstamp   uint32 // updated, hundredths of seconds
}

func (a IfAddrCacheInfo) Kind() uint16 { return unix.IFA_CACHEINFO }
func (a IfAddrCacheInfo) Size() int    { return SizeofIfAddrCacheInfo }

func (a IfAddrCacheInfo) Set(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], a.Prefered)
	binary.LittleEndian.PutUint32(b[4:], a.Valid)
	binary.LittleEndian.PutUint32(b[8:], a.Cstamp)
	binary.LittleEndian.PutUint32(b[12:], a.Tstamp)
}

func decodeIfAddrCacheInfo(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != SizeofIfAddrCacheInfo {
		return nil, fmt.Errorf("attr %d: cacheinfo payload %d bytes: %w",
			h.Kind(), v.Len(), nl.ErrAttrDecode)
	}
	var a IfAddrCacheInfo
	a.Prefered, _ = v.U32(0)
	a.Valid, _ = v.U32(4)
	a.Cstamp, _ = v.U32(8)
	a.Tstamp, _ = v.U32(12)
	return a, nil
}
