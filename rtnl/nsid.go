// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package rtnl

import (
	"fmt"

	"github.com/platinasystems/rtnl/nl"
	"golang.org/x/sys/unix"
)

// Network namespace id messages carry struct rtgenmsg padded to the
// netlink alignment, so attributes start 4 bytes in.
const SizeofNetnsMsg = 4

type NetnsMsg struct {
	Family uint8
}

func parseNetnsMsg(v nl.View) (m NetnsMsg, rest nl.View, err error) {
	if v.Len() < SizeofNetnsMsg {
		err = fmt.Errorf("rtgenmsg: %d of %d bytes: %w",
			v.Len(), SizeofNetnsMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	rest, err = v.Sub(SizeofNetnsMsg)
	return
}

func (m NetnsMsg) append(dst []byte) []byte {
	return append(dst, m.Family, 0, 0, 0)
}

// Netns is an RTM_NEWNSID, RTM_DELNSID or RTM_GETNSID message.
type Netns struct {
	nl.Hdr
	NetnsMsg
	Attrs []nl.Attr
}

func parseNetns(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Netns{Hdr: h}
	var rest nl.View
	var err error
	if m.NetnsMsg, rest, err = parseNetnsMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, netnsAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Netns) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.NetnsMsg.append(dst), m.Attrs)
}

func netnsAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.NETNSA_NSID, unix.NETNSA_CURRENT_NSID:
		// Signed; the kernel answers -1 for an unassigned id.
		return nl.DecodeInt32(h, v)
	case unix.NETNSA_PID, unix.NETNSA_FD, unix.NETNSA_TARGET_NSID:
		return nl.DecodeUint32(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}
