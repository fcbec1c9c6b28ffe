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

const SizeofFibRuleMsg = 12

// FibRuleMsg is the fixed header of policy rule messages, kernel struct
// fib_rule_hdr. It shares the rtmsg wire shape; Table and Action replace
// the route-specific fields.
type FibRuleMsg struct {
	Family uint8
	DstLen uint8
	SrcLen uint8
	Tos    uint8
	Table  uint8
	Action uint8
	Flags  uint32
}

func parseFibRuleMsg(v nl.View) (m FibRuleMsg, rest nl.View, err error) {
	if v.Len() < SizeofFibRuleMsg {
		err = fmt.Errorf("fib_rule_hdr: %d of %d bytes: %w",
			v.Len(), SizeofFibRuleMsg, nl.ErrFamilyHdrTooShort)
		return
	}
	m.Family, _ = v.U8(0)
	m.DstLen, _ = v.U8(1)
	m.SrcLen, _ = v.U8(2)
	m.Tos, _ = v.U8(3)
	m.Table, _ = v.U8(4)
	// bytes 5 and 6 are reserved
	m.Action, _ = v.U8(7)
	m.Flags, _ = v.U32(8)
	rest, err = v.Sub(SizeofFibRuleMsg)
	return
}

func (m FibRuleMsg) append(dst []byte) []byte {
	var b [SizeofFibRuleMsg]byte
	b[0] = m.Family
	b[1] = m.DstLen
	b[2] = m.SrcLen
	b[3] = m.Tos
	b[4] = m.Table
	b[7] = m.Action
	binary.LittleEndian.PutUint32(b[8:], m.Flags)
	return append(dst, b[:]...)
}

// Rule is an RTM_NEWRULE, RTM_DELRULE or RTM_GETRULE message.
type Rule struct {
	nl.Hdr
	FibRuleMsg
	Attrs []nl.Attr
}

func parseRule(h nl.Hdr, payload nl.View) (nl.Msg, error) {
	m := &Rule{Hdr: h}
	var rest nl.View
	var err error
	if m.FibRuleMsg, rest, err = parseFibRuleMsg(payload); err != nil {
		return nil, err
	}
	if m.Attrs, err = nl.ParseAttrs(rest, ruleAttr); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Rule) Append(dst []byte) ([]byte, error) {
	return nl.AppendAttrs(m.FibRuleMsg.append(dst), m.Attrs)
}

func ruleAttr(p *nl.AttrParser, h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	switch h.Kind() {
	case unix.FRA_DST, unix.FRA_SRC:
		return decodeIP(h, v)
	case unix.FRA_IIFNAME, unix.FRA_OIFNAME:
		return nl.DecodeString(h, v)
	case unix.FRA_PRIORITY, unix.FRA_FWMARK, unix.FRA_FWMASK,
		unix.FRA_TABLE, unix.FRA_GOTO, unix.FRA_FLOW,
		unix.FRA_SUPPRESS_PREFIXLEN, unix.FRA_SUPPRESS_IFGROUP:
		return nl.DecodeUint32(h, v)
	case unix.FRA_TUN_ID:
		return nl.DecodeUint64(h, v)
	case unix.FRA_L3MDEV, unix.FRA_PROTOCOL, unix.FRA_IP_PROTO:
		return nl.DecodeUint8(h, v)
	case unix.FRA_UID_RANGE:
		return decodeRuleUidRange(h, v)
	case unix.FRA_SPORT_RANGE, unix.FRA_DPORT_RANGE:
		return decodeRulePortRange(h, v)
	default:
		return nl.DecodeUnknown(h, v)
	}
}

// RulePortRange is an FRA_SPORT_RANGE or FRA_DPORT_RANGE payload,
// kernel struct fib_rule_port_range.
type RulePortRange struct {
	AttrKind uint16
	Start    uint16
	End      uint16
}

func (a RulePortRange) Kind() uint16 { return a.AttrKind }
func (a RulePortRange) Size() int    { return 4 }

func (a RulePortRange) Set(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], a.Start)
	binary.LittleEndian.PutUint16(b[2:], a.End)
}

func decodeRulePortRange(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != 4 {
		return nil, fmt.Errorf("attr %d: port range payload %d bytes: %w",
			h.Kind(), v.Len(), nl.ErrAttrDecode)
	}
	var a RulePortRange
	a.AttrKind = h.Kind()
	a.Start, _ = v.U16(0)
	a.End, _ = v.U16(2)
	return a, nil
}

// RuleUidRange is an FRA_UID_RANGE payload, kernel struct
// fib_rule_uid_range.
type RuleUidRange struct {
	Start uint32
	End   uint32
}

func (a RuleUidRange) Kind() uint16 { return unix.FRA_UID_RANGE }
func (a RuleUidRange) Size() int    { return 8 }

func (a RuleUidRange) Set(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], a.Start)
	binary.LittleEndian.PutUint32(b[4:], a.End)
}

func decodeRuleUidRange(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != 8 {
		return nil, fmt.Errorf("attr %d: uid range payload %d bytes: %w",
			h.Kind(), v.Len(), nl.ErrAttrDecode)
	}
	var a RuleUidRange
	a.Start, _ = v.U32(0)
	a.End, _ = v.U32(4)
	return a, nil
}
