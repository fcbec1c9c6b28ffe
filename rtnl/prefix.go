// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package rtnl

import (
	"encoding/binary"
	"fmt"

	"github.com/platinasystems/rtnl/nl"
)

// Prefix attribute kinds from linux/if_addr.h; x/sys/unix does not
// carry these.
const (
	PREFIX_UNSPEC = iota
	PREFIX_ADDRESS
	PREFIX_CACHEINFO
)

const SizeofPrefixMsg = 12

// PrefixMsg is the fixed header of RTM_NEWPREFIX messages, kernel
// struct prefixmsg. The kernel sends these for IPv6 router
// advertisement prefixes; PrefixType is 3 (prefix information, RFC
// 4861) and Flags holds the on-link and autonomous bits.
type PrefixMsg struct {
	Family     uint8
	IfIndex    int32
	PrefixType uint8
	PrefixLen  uint8
	Flags      uint8
}

func parsePrefixMsg(v nl.View) (m PrefixMsg, rest nl.View, err error) {
	if v.Len() < SizeofPrefixMsg {
		err = fmt.Errorf("prefixmsg: %d of %d bytes: %w",
			v.Len(), SizeofPrefixMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	m.IfIndex, _ = v.I32(4)
	m.PrefixType, _ = v.U8(8)
	m.PrefixLen, _ = v.U8(9)
	m.Flags, _ = v.U8(10)
	rest, err = v.Sub(SizeofPrefixMsg)
	return
}

func (m PrefixMsg) append(dst []byte) []byte {
	var b [SizeofPrefixMsg]byte
	b[0] = m.Family
	binary.LittleEndian.PutUint32(b[4:], uint32(m.IfIndex))
	b[8] = m.PrefixType
	b[9] = m.PrefixLen
	b[10] = m.Flags
	return append(dst, b[:]...)
}

// Prefix is an RTM_NEWPREFIX message.
type Prefix struct {
	nl.Hdr
	PrefixMsg
	Attrs []nl.Attr
}

func parsePrefix(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Prefix{Hdr: h}
	var rest nl.View
	var err error
	if m.PrefixMsg, rest, err = parsePrefixMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, prefixAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Prefix) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.PrefixMsg.append(dst), m.Attrs)
}

func prefixAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case PREFIX_ADDRESS:
		return decodeIP(h, v)
	case PREFIX_CACHEINFO:
		return decodePrefixCacheInfo(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

const SizeofPrefixCacheInfo = 8

// PrefixCacheInfo is the PREFIX_CACHEINFO payload, kernel struct
// prefix_cacheinfo: lifetimes in seconds.
type PrefixCacheInfo struct {
	PreferredTime uint32
	ValidTime     uint32
}

func (a PrefixCacheInfo) Kind() uint16 { return PREFIX_CACHEINFO }
func (a PrefixCacheInfo) Size() int    { return SizeofPrefixCacheInfo }

func (a PrefixCacheInfo) Set(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], a.PreferredTime)
	binary.LittleEndian.PutUint32(b[4:], a.ValidTime)
}

func decodePrefixCacheInfo(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != SizeofPrefixCacheInfo {
		return nil, fmt.Errorf("attr %d: cacheinfo payload %d bytes: %w",
			h.Kind(), v.Len(), nl.ErrAttrDecode)
	}
	var a PrefixCacheInfo
	a.PreferredTime, _ = v.U32(0)
	a.ValidTime, _ = v.U32(4)
	return a, nil
}
