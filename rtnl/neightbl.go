// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package rtnl

import (
	"fmt"

	"github.com/platinasystems/rtnl/nl"
	"golang.org/x/sys/unix"
)

const SizeofNdtMsg = 4

// NdtMsg is the fixed header of neighbour table messages, kernel struct
// ndtmsg: the address family plus three pad bytes.
type NdtMsg struct {
	Family uint8
}

func parseNdtMsg(v nl.View) (m NdtMsg, rest nl.View, err error) {
	if v.Len() < SizeofNdtMsg {
		err = fmt.Errorf("ndtmsg: %d of %d bytes: %w",
			v.Len(), SizeofNdtMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	rest, err = v.Sub(SizeofNdtMsg)
	return
}

func (m NdtMsg) append(dst []byte) []byte {
	return append(dst, m.Family, 0, 0, 0)
}

// Neightbl is an RTM_NEWNEIGHTBL, RTM_GETNEIGHTBL or RTM_SETNEIGHTBL
// message describing one neighbour table (arp_cache, ndisc_cache).
type Neightbl struct {
	nl.Hdr
	NdtMsg
	Attrs []nl.Attr
}

func parseNeightbl(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Neightbl{Hdr: h}
	var rest nl.View
	var err error
	if m.NdtMsg, rest, err = parseNdtMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, neightblAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Neightbl) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.NdtMsg.append(dst), m.Attrs)
}

func neightblAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.NDTA_NAME:
		return nl.DecodeString(h, v)
	case unix.NDTA_THRESH1, unix.NDTA_THRESH2, unix.NDTA_THRESH3:
		return nl.DecodeUint32(h, v)
	case unix.NDTA_GC_INTERVAL:
		return nl.DecodeUint64(h, v)
	case unix.NDTA_PARMS:
		return p.Nest(h, v, neightblParmAttr)
	case unix.NDTA_CONFIG, unix.NDTA_STATS:
		// struct ndt_config / ndt_stats; kept raw.
		return nl.DecodeBytes(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

func neightblParmAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.NDTPA_IFINDEX, unix.NDTPA_REFCNT, unix.NDTPA_QUEUE_LEN,
		unix.NDTPA_QUEUE_LENBYTES, unix.NDTPA_PROXY_QLEN,
		unix.NDTPA_APP_PROBES, unix.NDTPA_UCAST_PROBES,
		unix.NDTPA_MCAST_PROBES, unix.NDTPA_MCAST_REPROBES:
		return nl.DecodeUint32(h, v)
	case unix.NDTPA_REACHABLE_TIME, unix.NDTPA_BASE_REACHABLE_TIME,
		unix.NDTPA_RETRANS_TIME, unix.NDTPA_GC_STALETIME,
		unix.NDTPA_DELAY_PROBE_TIME, unix.NDTPA_ANYCAST_DELAY,
		unix.NDTPA_PROXY_DELAY, unix.NDTPA_LOCKTIME:
		return nl.DecodeUint64(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}
