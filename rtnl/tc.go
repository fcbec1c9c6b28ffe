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

const SizeofTcMsg = 20

// TcMsg is the fixed header of traffic control messages, kernel struct
// tcmsg, shared by qdisc, class, filter and chain operations. Three pad
// bytes sit after Family on the wire.
type TcMsg struct {
	Family  uint8
	IfIndex int32
	Handle  uint32
	Parent  uint32
	Info    uint32
}

func parseTcMsg(v nl.View) (m TcMsg, rest nl.View, err error) {
	if v.Len() < SizeofTcMsg {
		err = fmt.Errorf("tcmsg: %d of %d bytes: %w",
			v.Len(), SizeofTcMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	m.IfIndex, _ = v.I32(4)
	m.Handle, _ = v.U32(8)
	m.Parent, _ = v.U32(12)
	m.Info, _ = v.U32(16)
	rest, err = v.Sub(SizeofTcMsg)
	return
}

func (m TcMsg) append(dst []byte) []byte {
	var b [SizeofTcMsg]byte
	b[0] = m.Family
	binary.LittleEndian.PutUint32(b[4:], uint32(m.IfIndex))
	binary.LittleEndian.PutUint32(b[8:], m.Handle)
	binary.LittleEndian.PutUint32(b[12:], m.Parent)
	binary.LittleEndian.PutUint32(b[16:], m.Info)
	return append(dst, b[:]...)
}

// Tc covers the twelve RTM_ traffic control operations; the envelope's
// Type field says whether the subject is a qdisc, class, filter or
// chain. Handle and Parent use the major:minor convention of tc(8).
type Tc struct {
	nl.Hdr
	TcMsg
	Attrs []nl.Attr
}

func parseTc(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Tc{Hdr: h}
	var rest nl.View
	var err error
	if m.TcMsg, rest, err = parseTcMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, tcAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Tc) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.TcMsg.append(dst), m.Attrs)
}

func (m *Tc) String() string {
	return fmt.Sprintf("%s dev %d handle %d:%d parent %d:%d",
		nl.MsgTypeName(m.Hdr.Type), m.IfIndex,
		m.Handle>>16, m.Handle&0xffff,
		m.Parent>>16, m.Parent&0xffff)
}

func tcAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.TCA_KIND:
		return nl.DecodeString(h, v)
	case unix.TCA_CHAIN, unix.TCA_INGRESS_BLOCK, unix.TCA_EGRESS_BLOCK:
		return nl.DecodeUint32(h, v)
	case unix.TCA_HW_OFFLOAD:
		return nl.DecodeUint8(h, v)
	case unix.TCA_OPTIONS, unix.TCA_STATS, unix.TCA_STATS2,
		unix.TCA_XSTATS, unix.TCA_RATE, unix.TCA_FCNT, unix.TCA_STAB:
		// Layouts vary by the TCA_KIND discipline; kept raw.
		return nl.DecodeBytes(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}
