// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// Msg is one decoded netlink message: envelope metadata plus whatever
// family content follows it. Append emits the family header and the
// attribute region; the envelope itself is written by nl.Append, which
// recomputes the length field and never trusts the one stored in Hdr.
type Msg interface {
	MsgHdr() *Hdr
	Append(dst []byte) ([]byte, error)
}

// ParseFn builds a family's message from a parsed envelope and the
// payload region that follows it.
type ParseFn func(h Hdr, payload View) (Msg, error)

// Map routes an envelope type code to its family parser. Catalogs build
// one statically and hand it to Parse; nothing mutates a Map after that.
type Map map[uint16]ParseFn

// Parse decodes one already delimited message. Control messages
// (NLMSG_NOOP, NLMSG_DONE, NLMSG_ERROR) are handled here; every other
// type code goes through m, and a code m does not know produces a
// RawMsg rather than an error, since unknown message types arrive
// whenever the kernel is newer than this library.
func Parse(b []byte, m Map) (Msg, error) {
	h, payload, err := ParseHdr(MakeView(b))
	if err != nil {
		return nil, err
	}
	switch h.Type {
	case unix.NLMSG_NOOP:
		return &NoopMsg{Hdr: h}, nil
	case unix.NLMSG_DONE:
		return &DoneMsg{Hdr: h, Data: payload.Bytes()}, nil
	case unix.NLMSG_ERROR:
		return parseErrMsg(h, payload)
	}
	if fn, found := m[h.Type]; found {
		return fn(h, payload)
	}
	return &RawMsg{Hdr: h, Data: payload.Bytes()}, nil
}

// Append encodes msg onto dst. The envelope length is recomputed from
// what was actually emitted.
func Append(dst []byte, msg Msg) ([]byte, error) {
	start := len(dst)
	dst = appendHdr(dst, *msg.MsgHdr())
	dst, err := msg.Append(dst)
	if err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(dst[start:], uint32(len(dst)-start))
	return dst, nil
}

// RawMsg carries a message of a type no catalog recognizes: envelope
// plus payload, preserved byte for byte.
type RawMsg struct {
	Hdr
	Data []byte
}

func (m *RawMsg) Append(dst []byte) ([]byte, error) {
	return append(dst, m.Data...), nil
}

func (m *RawMsg) String() string {
	return fmt.Sprintf("%s: %d raw bytes", m.Hdr.String(), len(m.Data))
}

type NoopMsg struct {
	Hdr
}

func (m *NoopMsg) Append(dst []byte) ([]byte, error) { return dst, nil }

// DoneMsg ends a dump. The kernel appends a status int; keep whatever
// trailer came with it.
type DoneMsg struct {
	Hdr
	Data []byte
}

func (m *DoneMsg) Append(dst []byte) ([]byte, error) {
	return append(dst, m.Data...), nil
}

// ErrMsg is an NLMSG_ERROR acknowledgment: a negative errno (zero for an
// ACK) and the header of the request it answers.
type ErrMsg struct {
	Hdr
	Errno int32
	Req   Hdr
}

const sizeofErrPayload = 4 + SizeofHdr

func parseErrMsg(h Hdr, payload View) (Msg, error) {
	if payload.Len() < sizeofErrPayload {
		return nil, fmt.Errorf("NLMSG_ERROR payload %d bytes: %w",
			payload.Len(), ErrFamilyHdrTooShort)
	}
	m := &ErrMsg{Hdr: h}
	m.Errno, _ = payload.I32(0)
	m.Req.Len, _ = payload.U32(4)
	m.Req.Type, _ = payload.U16(8)
	m.Req.Flags, _ = payload.U16(10)
	m.Req.Seq, _ = payload.U32(12)
	m.Req.Pid, _ = payload.U32(16)
	return m, nil
}

func (m *ErrMsg) Append(dst []byte) ([]byte, error) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(m.Errno))
	dst = append(dst, b[:]...)
	// The request header is echoed verbatim, length field included.
	return appendHdr(dst, m.Req), nil
}

func (m *ErrMsg) String() string {
	if m.Errno == 0 {
		return fmt.Sprintf("ack for %s", MsgTypeName(m.Req.Type))
	}
	return fmt.Sprintf("error %s for %s",
		unix.Errno(-m.Errno), MsgTypeName(m.Req.Type))
}

var msgTypeNames = []string{
	unix.NLMSG_NOOP:      "NLMSG_NOOP",
	unix.NLMSG_ERROR:     "NLMSG_ERROR",
	unix.NLMSG_DONE:      "NLMSG_DONE",
	unix.NLMSG_OVERRUN:   "NLMSG_OVERRUN",
	unix.RTM_NEWLINK:     "RTM_NEWLINK",
	unix.RTM_DELLINK:     "RTM_DELLINK",
	unix.RTM_GETLINK:     "RTM_GETLINK",
	unix.RTM_SETLINK:     "RTM_SETLINK",
	unix.RTM_NEWADDR:     "RTM_NEWADDR",
	unix.RTM_DELADDR:     "RTM_DELADDR",
	unix.RTM_GETADDR:     "RTM_GETADDR",
	unix.RTM_NEWROUTE:    "RTM_NEWROUTE",
	unix.RTM_DELROUTE:    "RTM_DELROUTE",
	unix.RTM_GETROUTE:    "RTM_GETROUTE",
	unix.RTM_NEWNEIGH:    "RTM_NEWNEIGH",
	unix.RTM_DELNEIGH:    "RTM_DELNEIGH",
	unix.RTM_GETNEIGH:    "RTM_GETNEIGH",
	unix.RTM_NEWRULE:     "RTM_NEWRULE",
	unix.RTM_DELRULE:     "RTM_DELRULE",
	unix.RTM_GETRULE:     "RTM_GETRULE",
	unix.RTM_NEWQDISC:    "RTM_NEWQDISC",
	unix.RTM_DELQDISC:    "RTM_DELQDISC",
	unix.RTM_GETQDISC:    "RTM_GETQDISC",
	unix.RTM_NEWTCLASS:   "RTM_NEWTCLASS",
	unix.RTM_DELTCLASS:   "RTM_DELTCLASS",
	unix.RTM_GETTCLASS:   "RTM_GETTCLASS",
	unix.RTM_NEWTFILTER:  "RTM_NEWTFILTER",
	unix.RTM_DELTFILTER:  "RTM_DELTFILTER",
	unix.RTM_GETTFILTER:  "RTM_GETTFILTER",
	unix.RTM_NEWPREFIX:   "RTM_NEWPREFIX",
	unix.RTM_NEWNEIGHTBL: "RTM_NEWNEIGHTBL",
	unix.RTM_GETNEIGHTBL: "RTM_GETNEIGHTBL",
	unix.RTM_SETNEIGHTBL: "RTM_SETNEIGHTBL",
	unix.RTM_NEWNSID:     "RTM_NEWNSID",
	unix.RTM_DELNSID:     "RTM_DELNSID",
	unix.RTM_GETNSID:     "RTM_GETNSID",
	unix.RTM_NEWCHAIN:    "RTM_NEWCHAIN",
	unix.RTM_DELCHAIN:    "RTM_DELCHAIN",
	unix.RTM_GETCHAIN:    "RTM_GETCHAIN",
	unix.RTM_NEWNEXTHOP:  "RTM_NEWNEXTHOP",
	unix.RTM_DELNEXTHOP:  "RTM_DELNEXTHOP",
	unix.RTM_GETNEXTHOP:  "RTM_GETNEXTHOP",
}

// MsgTypeName names a message type code, or formats the number when it
// has no name.
func MsgTypeName(t uint16) string {
	if int(t) < len(msgTypeNames) && msgTypeNames[t] != "" {
		return msgTypeNames[t]
	}
	return fmt.Sprintf("type-%d", t)
}
