// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package rtnl

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/platinasystems/rtnl/nl"
)

func TestLinkStatsTyped(t *testing.T) {
	var stats LinkStats64
	stats[RxPackets] = 1000
	stats[TxPackets] = 2000
	stats[RxBytes] = 1 << 40

	in := &Link{
		Hdr:       nl.Hdr{Type: unix.RTM_NEWLINK},
		IfInfoMsg: IfInfoMsg{Index: 2},
		Attrs:     []nl.Attr{stats},
	}
	b, err := Append(nil, in)
	require.NoError(t, err)

	m, err := Parse(b)
	require.NoError(t, err)
	link := m.(*Link)
	require.Len(t, link.Attrs, 1)
	got, ok := link.Attrs[0].(LinkStats64)
	require.True(t, ok)
	require.Empty(t, cmp.Diff(stats, got))
}

// A stats payload of an unexpected size stays raw so a round trip does
// not invent or drop counters.
func TestLinkStatsOddSizeStaysRaw(t *testing.T) {
	odd := make([]byte, SizeofLinkStats+8)
	binary.LittleEndian.PutUint32(odd, 42)

	in := &Link{
		Hdr:       nl.Hdr{Type: unix.RTM_NEWLINK},
		IfInfoMsg: IfInfoMsg{Index: 2},
		Attrs: []nl.Attr{
			nl.BytesAttr{AttrKind: unix.IFLA_STATS, Data: odd},
		},
	}
	b, err := Append(nil, in)
	require.NoError(t, err)

	m, err := Parse(b)
	require.NoError(t, err)
	link := m.(*Link)
	require.Len(t, link.Attrs, 1)
	raw, ok := link.Attrs[0].(nl.BytesAttr)
	require.True(t, ok)
	require.Equal(t, odd, raw.Data)

	again, err := Append(nil, m)
	require.NoError(t, err)
	require.Equal(t, b, again)
}

func TestLinkAttrOrderPreserved(t *testing.T) {
	in := &Link{
		Hdr:       nl.Hdr{Type: unix.RTM_NEWLINK},
		IfInfoMsg: IfInfoMsg{Index: 1},
		Attrs: []nl.Attr{
			nl.Uint32Attr{AttrKind: unix.IFLA_MTU, Value: 1500},
			nl.StringAttr{AttrKind: unix.IFLA_IFNAME, Value: "lo"},
			nl.Uint32Attr{AttrKind: unix.IFLA_TXQLEN, Value: 1000},
		},
	}
	b, err := Append(nil, in)
	require.NoError(t, err)

	m, err := Parse(b)
	require.NoError(t, err)
	link := m.(*Link)
	require.Equal(t, []nl.Attr{
		nl.Uint32Attr{AttrKind: unix.IFLA_MTU, Value: 1500},
		nl.StringAttr{AttrKind: unix.IFLA_IFNAME, Value: "lo"},
		nl.Uint32Attr{AttrKind: unix.IFLA_TXQLEN, Value: 1000},
	}, link.Attrs)
}
