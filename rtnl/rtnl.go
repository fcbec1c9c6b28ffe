// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

// Package rtnl catalogs the rtnetlink message families: their fixed
// headers and attribute kinds, plugged into the nl codec's dispatch.
// Each RTM_ operation code maps to one of the message types here; type
// codes outside the catalog fall through to nl.RawMsg.
package rtnl

import (
	"fmt"
	"net"

	"github.com/platinasystems/rtnl/nl"
	"golang.org/x/sys/unix"
)

// dispatch is built once; nothing mutates it afterward.
var dispatch = nl.Map{
	unix.RTM_NEWLINK: parseLink,
	unix.RTM_DELLINK: parseLink,
	unix.RTM_GETLINK: parseLink,
	unix.RTM_SETLINK: parseLink,

	unix.RTM_NEWADDR: parseAddr,
	unix.RTM_DELADDR: parseAddr,
	unix.RTM_GETADDR: parseAddr,

	unix.RTM_NEWROUTE: parseRoute,
	unix.RTM_DELROUTE: parseRoute,
	unix.RTM_GETROUTE: parseRoute,

	unix.RTM_NEWNEIGH: parseNeigh,
	unix.RTM_DELNEIGH: parseNeigh,
	unix.RTM_GETNEIGH: parseNeigh,

	unix.RTM_NEWRULE: parseRule,
	unix.RTM_DELRULE: parseRule,
	unix.RTM_GETRULE: parseRule,

	unix.RTM_NEWQDISC:   parseTc,
	unix.RTM_DELQDISC:   parseTc,
	unix.RTM_GETQDISC:   parseTc,
	unix.RTM_NEWTCLASS:  parseTc,
	unix.RTM_DELTCLASS:  parseTc,
	unix.RTM_GETTCLASS:  parseTc,
	unix.RTM_NEWTFILTER: parseTc,
	unix.RTM_DELTFILTER: parseTc,
	unix.RTM_GETTFILTER: parseTc,
	unix.RTM_NEWCHAIN:   parseTc,
	unix.RTM_DELCHAIN:   parseTc,
	unix.RTM_GETCHAIN:   parseTc,

	unix.RTM_NEWNEIGHTBL: parseNeightbl,
	unix.RTM_GETNEIGHTBL: parseNeightbl,
	unix.RTM_SETNEIGHTBL: parseNeightbl,

	unix.RTM_NEWNSID: parseNetns,
	unix.RTM_DELNSID: parseNetns,
	unix.RTM_GETNSID: parseNetns,

	unix.RTM_NEWPREFIX: parsePrefix,

	unix.RTM_NEWNEXTHOP: parseNexthop,
	unix.RTM_DELNEXTHOP: parseNexthop,
	unix.RTM_GETNEXTHOP: parseNexthop,
}

// Dispatch returns the rtnetlink message map for use with nl.Parse.
func Dispatch() nl.Map { return dispatch }

// Parse decodes one rtnetlink message.
func Parse(b []byte) (nl.Msg, error) { return nl.Parse(b, dispatch) }

// Append encodes one message onto dst.
func Append(dst []byte, m nl.Msg) ([]byte, error) { return nl.Append(dst, m) }

// IPAttr is an IPv4 or IPv6 address payload (IFA_ADDRESS, RTA_GATEWAY,
// NDA_DST and friends).
type IPAttr struct {
	AttrKind uint16
	IP       net.IP
}

func (a IPAttr) Kind() uint16   { return a.AttrKind }
func (a IPAttr) Size() int      { return len(a.IP) }
func (a IPAttr) Set(b []byte)   { copy(b, a.IP) }
func (a IPAttr) String() string { return a.IP.String() }

func decodeIP(h nl.AttrHdr, v nl.View) (nl.Attr, error) {
	if v.Len() != net.IPv4len && v.Len() != net.IPv6len {
		return nil, fmt.Errorf("attr %d: address payload %d bytes: %w",
			h.Kind(), v.Len(), nl.ErrAttrDecode)
	}
	return IPAttr{h.Kind(), net.IP(v.Bytes())}, nil
}
