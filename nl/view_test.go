// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestViewReads(t *testing.T) {
	v := MakeView([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	u8, err := v.U8(0)
	require.NoError(t, err)
	require.Equal(t, uint8(1), u8)

	u16, err := v.U16(0)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0201), u16)

	u32, err := v.U32(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0x04030201), u32)

	u64, err := v.U64(0)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0807060504030201), u64)

	be16, err := v.BeU16(0)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), be16)

	be32, err := v.BeU32(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), be32)
}

func TestViewBounds(t *testing.T) {
	v := MakeView([]byte{1, 2, 3})

	_, err := v.U32(0)
	require.ErrorIs(t, err, ErrBufferTooShort)

	_, err = v.U8(3)
	require.ErrorIs(t, err, ErrBufferTooShort)

	_, err = v.U8(-1)
	require.ErrorIs(t, err, ErrBufferTooShort)

	_, err = v.Slice(1, 3)
	require.ErrorIs(t, err, ErrBufferTooShort)

	sub, err := v.Sub(1)
	require.NoError(t, err)
	require.Equal(t, 2, sub.Len())

	_, err = v.Sub(4)
	require.ErrorIs(t, err, ErrBufferTooShort)
}

func TestViewBytesCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	b := MakeView(src).Bytes()
	src[0] = 9
	require.Equal(t, []byte{1, 2, 3}, b)
}

func TestZeroView(t *testing.T) {
	var v View
	require.Equal(t, 0, v.Len())
	_, err := v.U8(0)
	require.True(t, errors.Is(err, ErrBufferTooShort))
}
