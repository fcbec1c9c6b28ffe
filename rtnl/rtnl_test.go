// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package rtnl

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/platinasystems/rtnl/nl"
)

// roundTrip encodes in, decodes the bytes, and checks that the decoded
// message matches in and re-encodes to the same bytes.
func roundTrip(t *testing.T, in nl.Msg) {
	t.Helper()
	b, err := Append(nil, in)
	require.NoError(t, err)

	// The decoder reports the length actually on the wire.
	in.MsgHdr().Len = uint32(len(b))

	got, err := Parse(b)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(in, got))

	again, err := Append(nil, got)
	require.NoError(t, err)
	require.Equal(t, b, again)
}

func TestLinkRoundTrip(t *testing.T) {
	roundTrip(t, &Link{
		Hdr: nl.Hdr{Type: unix.RTM_NEWLINK, Seq: 1, Pid: 99},
		IfInfoMsg: IfInfoMsg{
			Family: unix.AF_UNSPEC,
			L2Type: unix.ARPHRD_ETHER,
			Index:  2,
			Flags:  unix.IFF_UP | unix.IFF_RUNNING,
		},
		Attrs: []nl.Attr{
			nl.StringAttr{AttrKind: unix.IFLA_IFNAME, Value: "eth0"},
			nl.Uint32Attr{AttrKind: unix.IFLA_MTU, Value: 1500},
			nl.BytesAttr{AttrKind: unix.IFLA_ADDRESS,
				Data: []byte{0, 1, 2, 3, 4, 5}},
			nl.Uint8Attr{AttrKind: unix.IFLA_OPERSTATE, Value: 6},
			nl.Nest{AttrKind: unix.IFLA_LINKINFO, Attrs: []nl.Attr{
				nl.StringAttr{AttrKind: unix.IFLA_INFO_KIND, Value: "vlan"},
				nl.BytesAttr{AttrKind: unix.IFLA_INFO_DATA,
					Data: []byte{6, 0, 1, 0, 0x64, 0, 0, 0}},
			}},
		},
	})
}

func TestAddrRoundTrip(t *testing.T) {
	roundTrip(t, &Addr{
		Hdr: nl.Hdr{Type: unix.RTM_NEWADDR, Seq: 2},
		IfAddrMsg: IfAddrMsg{
			Family:    unix.AF_INET,
			PrefixLen: 24,
			Scope:     unix.RT_SCOPE_UNIVERSE,
			Index:     2,
		},
		Attrs: []nl.Attr{
			IPAttr{AttrKind: unix.IFA_ADDRESS, IP: net.IP{10, 0, 0, 1}},
			IPAttr{AttrKind: unix.IFA_LOCAL, IP: net.IP{10, 0, 0, 1}},
			nl.StringAttr{AttrKind: unix.IFA_LABEL, Value: "eth0"},
			IfAddrCacheInfo{Prefered: 0xffffffff, Valid: 0xffffffff},
		},
	})
}

func TestRouteRoundTrip(t *testing.T) {
	roundTrip(t, &Route{
		Hdr: nl.Hdr{Type: unix.RTM_NEWROUTE, Seq: 3},
		RtMsg: RtMsg{
			Family:   unix.AF_INET,
			DstLen:   24,
			Table:    unix.RT_TABLE_MAIN,
			Protocol: unix.RTPROT_BOOT,
			Scope:    unix.RT_SCOPE_UNIVERSE,
			Type:     unix.RTN_UNICAST,
		},
		Attrs: []nl.Attr{
			IPAttr{AttrKind: unix.RTA_DST, IP: net.IP{192, 168, 1, 0}},
			IPAttr{AttrKind: unix.RTA_GATEWAY, IP: net.IP{10, 0, 0, 254}},
			nl.Uint32Attr{AttrKind: unix.RTA_OIF, Value: 2},
			nl.Uint32Attr{AttrKind: unix.RTA_PRIORITY, Value: 100},
			nl.Nest{AttrKind: unix.RTA_METRICS, Attrs: []nl.Attr{
				nl.Uint32Attr{AttrKind: unix.RTAX_MTU, Value: 1400},
				nl.StringAttr{AttrKind: unix.RTAX_CC_ALGO, Value: "cubic"},
			}},
			RtaCacheInfo{Used: 3, ClntRef: 1},
		},
	})
}

func TestNeighRoundTrip(t *testing.T) {
	roundTrip(t, &Neigh{
		Hdr: nl.Hdr{Type: unix.RTM_NEWNEIGH, Seq: 4},
		NdMsg: NdMsg{
			Family:  unix.AF_INET,
			IfIndex: 2,
			State:   unix.NUD_REACHABLE,
			Type:    unix.RTN_UNICAST,
		},
		Attrs: []nl.Attr{
			IPAttr{AttrKind: unix.NDA_DST, IP: net.IP{10, 0, 0, 254}},
			nl.BytesAttr{AttrKind: unix.NDA_LLADDR,
				Data: []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 1}},
			nl.BeUint16Attr{AttrKind: unix.NDA_PORT, Value: 4789},
			NdaCacheInfo{Confirmed: 10, Used: 20, Updated: 30, RefCnt: 1},
		},
	})
}

func TestRuleRoundTrip(t *testing.T) {
	roundTrip(t, &Rule{
		Hdr: nl.Hdr{Type: unix.RTM_NEWRULE, Seq: 5},
		FibRuleMsg: FibRuleMsg{
			Family: unix.AF_INET,
			Table:  unix.RT_TABLE_MAIN,
			Action: unix.FR_ACT_TO_TBL,
		},
		Attrs: []nl.Attr{
			nl.Uint32Attr{AttrKind: unix.FRA_PRIORITY, Value: 1000},
			nl.Uint32Attr{AttrKind: unix.FRA_FWMARK, Value: 0x10},
			RulePortRange{AttrKind: unix.FRA_SPORT_RANGE, Start: 1024, End: 2048},
			RuleUidRange{Start: 1000, End: 2000},
		},
	})
}

func TestTcRoundTrip(t *testing.T) {
	roundTrip(t, &Tc{
		Hdr: nl.Hdr{Type: unix.RTM_NEWQDISC, Seq: 6},
		TcMsg: TcMsg{
			Family:  unix.AF_UNSPEC,
			IfIndex: 2,
			Handle:  0x10000,
			Parent:  0xFFFFFFFF,
		},
		Attrs: []nl.Attr{
			nl.StringAttr{AttrKind: unix.TCA_KIND, Value: "fq_codel"},
			nl.BytesAttr{AttrKind: unix.TCA_OPTIONS,
				Data: []byte{8, 0, 1, 0, 0x87, 0x13, 0, 0}},
		},
	})
}

func TestNeightblRoundTrip(t *testing.T) {
	roundTrip(t, &Neightbl{
		Hdr:    nl.Hdr{Type: unix.RTM_NEWNEIGHTBL, Seq: 7},
		NdtMsg: NdtMsg{Family: unix.AF_INET},
		Attrs: []nl.Attr{
			nl.StringAttr{AttrKind: unix.NDTA_NAME, Value: "arp_cache"},
			nl.Uint32Attr{AttrKind: unix.NDTA_THRESH1, Value: 128},
			nl.Nest{AttrKind: unix.NDTA_PARMS, Attrs: []nl.Attr{
				nl.Uint32Attr{AttrKind: unix.NDTPA_IFINDEX, Value: 2},
				nl.Uint64Attr{AttrKind: unix.NDTPA_REACHABLE_TIME, Value: 30000},
			}},
		},
	})
}

func TestNetnsRoundTrip(t *testing.T) {
	roundTrip(t, &Netns{
		Hdr:      nl.Hdr{Type: unix.RTM_NEWNSID, Seq: 8},
		NetnsMsg: NetnsMsg{Family: unix.AF_UNSPEC},
		Attrs: []nl.Attr{
			nl.Int32Attr{AttrKind: unix.NETNSA_NSID, Value: -1},
			nl.Uint32Attr{AttrKind: unix.NETNSA_PID, Value: 1234},
		},
	})
}

func TestPrefixRoundTrip(t *testing.T) {
	roundTrip(t, &Prefix{
		Hdr: nl.Hdr{Type: unix.RTM_NEWPREFIX, Seq: 9},
		PrefixMsg: PrefixMsg{
			Family:     unix.AF_INET6,
			IfIndex:    2,
			PrefixType: 3,
			PrefixLen:  64,
			Flags:      0x03,
		},
		Attrs: []nl.Attr{
			IPAttr{AttrKind: PREFIX_ADDRESS, IP: net.IP{
				0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 0}},
			PrefixCacheInfo{PreferredTime: 3600, ValidTime: 7200},
		},
	})
}

func TestNexthopRoundTrip(t *testing.T) {
	roundTrip(t, &Nexthop{
		Hdr: nl.Hdr{Type: unix.RTM_NEWNEXTHOP, Seq: 10},
		NhMsg: NhMsg{
			Family:   unix.AF_INET,
			Scope:    unix.RT_SCOPE_UNIVERSE,
			Protocol: unix.RTPROT_STATIC,
		},
		Attrs: []nl.Attr{
			nl.Uint32Attr{AttrKind: unix.NHA_ID, Value: 42},
			nl.Uint32Attr{AttrKind: unix.NHA_OIF, Value: 2},
			IPAttr{AttrKind: unix.NHA_GATEWAY, IP: net.IP{10, 0, 0, 254}},
		},
	})
}

func TestUnknownAttrSurvives(t *testing.T) {
	roundTrip(t, &Link{
		Hdr:       nl.Hdr{Type: unix.RTM_NEWLINK},
		IfInfoMsg: IfInfoMsg{Index: 1},
		Attrs: []nl.Attr{
			nl.Unknown{AttrKind: 0x3333 & nl.KindMask, Nest: true,
				Data: []byte{1, 2, 3, 4}},
			nl.Unknown{AttrKind: 0x2A, Data: []byte{5}},
		},
	})
}

func TestFamilyHdrTooShort(t *testing.T) {
	for typ, size := range map[uint16]int{
		unix.RTM_NEWLINK:     SizeofIfInfoMsg,
		unix.RTM_NEWADDR:     SizeofIfAddrMsg,
		unix.RTM_NEWROUTE:    SizeofRtMsg,
		unix.RTM_NEWNEIGH:    SizeofNdMsg,
		unix.RTM_NEWRULE:     SizeofFibRuleMsg,
		unix.RTM_NEWQDISC:    SizeofTcMsg,
		unix.RTM_NEWNEIGHTBL: SizeofNdtMsg,
		unix.RTM_NEWNSID:     SizeofNetnsMsg,
		unix.RTM_NEWPREFIX:   SizeofPrefixMsg,
		unix.RTM_NEWNEXTHOP:  SizeofNhMsg,
	} {
		b := make([]byte, nl.SizeofHdr+size-1)
		b[0] = byte(len(b))
		b[4] = byte(typ)
		b[5] = byte(typ >> 8)
		_, err := Parse(b)
		require.ErrorIs(t, err, nl.ErrFamilyHdrTooShort,
			nl.MsgTypeName(typ))
	}
}

func TestFamilyHdrOnly(t *testing.T) {
	b := make([]byte, nl.SizeofHdr+SizeofIfInfoMsg)
	b[0] = byte(len(b))
	b[4] = byte(unix.RTM_NEWLINK)
	m, err := Parse(b)
	require.NoError(t, err)
	link, ok := m.(*Link)
	require.True(t, ok)
	require.Empty(t, link.Attrs)
}

func TestTruncationSafety(t *testing.T) {
	full, err := Append(nil, &Route{
		Hdr:   nl.Hdr{Type: unix.RTM_NEWROUTE},
		RtMsg: RtMsg{Family: unix.AF_INET, DstLen: 24},
		Attrs: []nl.Attr{
			IPAttr{AttrKind: unix.RTA_DST, IP: net.IP{10, 1, 2, 0}},
			nl.Uint32Attr{AttrKind: unix.RTA_OIF, Value: 3},
		},
	})
	require.NoError(t, err)
	for n := 0; n <= len(full); n++ {
		m, err := Parse(full[:n])
		if err == nil {
			require.NotNil(t, m, "%d bytes", n)
		}
	}
}

func TestDispatchCoversAllOps(t *testing.T) {
	ops := []uint16{
		unix.RTM_NEWLINK, unix.RTM_DELLINK, unix.RTM_GETLINK,
		unix.RTM_SETLINK,
		unix.RTM_NEWADDR, unix.RTM_DELADDR, unix.RTM_GETADDR,
		unix.RTM_NEWROUTE, unix.RTM_DELROUTE, unix.RTM_GETROUTE,
		unix.RTM_NEWNEIGH, unix.RTM_DELNEIGH, unix.RTM_GETNEIGH,
		unix.RTM_NEWRULE, unix.RTM_DELRULE, unix.RTM_GETRULE,
		unix.RTM_NEWQDISC, unix.RTM_DELQDISC, unix.RTM_GETQDISC,
		unix.RTM_NEWTCLASS, unix.RTM_DELTCLASS, unix.RTM_GETTCLASS,
		unix.RTM_NEWTFILTER, unix.RTM_DELTFILTER, unix.RTM_GETTFILTER,
		unix.RTM_NEWCHAIN, unix.RTM_DELCHAIN, unix.RTM_GETCHAIN,
		unix.RTM_NEWNEIGHTBL, unix.RTM_GETNEIGHTBL, unix.RTM_SETNEIGHTBL,
		unix.RTM_NEWNSID, unix.RTM_DELNSID, unix.RTM_GETNSID,
		unix.RTM_NEWPREFIX,
		unix.RTM_NEWNEXTHOP, unix.RTM_DELNEXTHOP, unix.RTM_GETNEXTHOP,
	}
	m := Dispatch()
	for _, op := range ops {
		require.Contains(t, m, op, nl.MsgTypeName(op))
	}
	require.Len(t, m, len(ops))
}

func TestBadAddressPayload(t *testing.T) {
	b, err := nl.AppendAttrs(nil,
		[]nl.Attr{nl.BytesAttr{AttrKind: unix.IFA_ADDRESS,
			Data: []byte{1, 2, 3}}})
	require.NoError(t, err)

	msg := append([]byte{
		0, 0, 0, 0,
		byte(unix.RTM_NEWADDR), 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		// ifaddrmsg
		unix.AF_INET, 24, 0, 0, 2, 0, 0, 0,
	}, b...)
	msg[0] = byte(len(msg))

	_, err = Parse(msg)
	require.ErrorIs(t, err, nl.ErrAttrDecode)
}
