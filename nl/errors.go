// Copyright 2015-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package nl

import "errors"

// Decode and encode failures wrap one of these sentinels so callers can
// classify them with errors.Is. Malformed input is always reported through
// a returned error, never a panic.
var (
	// ErrBufferTooShort is a read past the end of a View.
	ErrBufferTooShort = errors.New("buffer too short")

	// ErrHdrTooShort is a buffer too small for the 16 byte message header,
	// or a header whose claimed length is smaller than the header itself.
	ErrHdrTooShort = errors.New("message header too short")

	// ErrFamilyHdrTooShort is a message payload too small for the fixed
	// header of its family.
	ErrFamilyHdrTooShort = errors.New("family header too short")

	// ErrTlvMalformed is an attribute whose declared length is below the
	// 4 byte minimum or runs past the enclosing region. A malformed TLV
	// invalidates the whole attribute list.
	ErrTlvMalformed = errors.New("malformed attribute TLV")

	// ErrAttrDecode is a recognized attribute kind whose payload failed
	// its structural check. Unknown kinds never produce this.
	ErrAttrDecode = errors.New("attribute decode")

	// ErrAttrSize is an attribute whose payload cannot be represented by
	// the 16 bit TLV length field at encode time.
	ErrAttrSize = errors.New("attribute size out of range")
)
