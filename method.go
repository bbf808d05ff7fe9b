// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import (
	"github.com/intuitivelabs/bytescase"
)

// HTTPMethod is the type used to hold the numeric HTTP request method.
type HTTPMethod uint8

// method constants, ordinal-stable per the external interface.
const (
	MDelete HTTPMethod = iota
	MGet
	MHead
	MPost
	MPut
	MConnect
	MOptions
	MTrace
	MCopy
	MLock
	MMkcol
	MMove
	MPropfind
	MProppatch
	MUnlock
	MReport
	MMkactivity
	MCheckout
	MMerge
	MMsearch
	MNotify
	MSubscribe
	MUnsubscribe
	MPatch
	mOther // must stay last: "recognized but not enumerated"
)

// Method2Name translates a numeric HTTPMethod into its ASCII name.
var Method2Name = [mOther + 1][]byte{
	MDelete:      []byte("DELETE"),
	MGet:         []byte("GET"),
	MHead:        []byte("HEAD"),
	MPost:        []byte("POST"),
	MPut:         []byte("PUT"),
	MConnect:     []byte("CONNECT"),
	MOptions:     []byte("OPTIONS"),
	MTrace:       []byte("TRACE"),
	MCopy:        []byte("COPY"),
	MLock:        []byte("LOCK"),
	MMkcol:       []byte("MKCOL"),
	MMove:        []byte("MOVE"),
	MPropfind:    []byte("PROPFIND"),
	MProppatch:   []byte("PROPPATCH"),
	MUnlock:      []byte("UNLOCK"),
	MReport:      []byte("REPORT"),
	MMkactivity:  []byte("MKACTIVITY"),
	MCheckout:    []byte("CHECKOUT"),
	MMerge:       []byte("MERGE"),
	MMsearch:     []byte("M-SEARCH"),
	MNotify:      []byte("NOTIFY"),
	MSubscribe:   []byte("SUBSCRIBE"),
	MUnsubscribe: []byte("UNSUBSCRIBE"),
	MPatch:       []byte("PATCH"),
	mOther:       []byte("OTHER"),
}

// Name returns the ASCII method name.
func (m HTTPMethod) Name() []byte {
	if m > mOther {
		return Method2Name[mOther]
	}
	return Method2Name[m]
}

// String implements the Stringer interface.
func (m HTTPMethod) String() string {
	return string(m.Name())
}

// magic values: the bucket index is built from the low mthBitsLen bits of
// the name length and the low mthBitsFChar bits of the lowercased first
// char. Several methods share a bucket (e.g. MERGE and MKCOL);
// GetMethodNo tells them apart by comparing the full name.
const (
	mthBitsLen   uint = 3 // names run up to 11 chars (UNSUBSCRIBE); only the low 3 bits are hashed
	mthBitsFChar uint = 5
)

type mth2Type struct {
	n []byte
	t HTTPMethod
}

var mthNameLookup [1 << (mthBitsLen + mthBitsFChar)][]mth2Type

func hashMthName(n []byte) int {
	const (
		mC = (1 << mthBitsFChar) - 1
		mL = (1 << mthBitsLen) - 1
	)
	return (int(bytescase.ByteToLower(n[0])) & mC) |
		((len(n) & mL) << mthBitsFChar)
}

func init() {
	for i := MDelete; i < mOther; i++ {
		h := hashMthName(Method2Name[i])
		mthNameLookup[h] = append(mthNameLookup[h], mth2Type{Method2Name[i], i})
	}
}

// GetMethodNo converts an ASCII method name (as found on the request
// line) into the corresponding numeric HTTPMethod. Returns mOther if the
// method is not one of the enumerated values -- the caller should not
// reject the message on this basis alone; only the request-line grammar
// (token characters, trailing SP) is enforced by the state machine.
func GetMethodNo(buf []byte) HTTPMethod {
	if len(buf) == 0 {
		return mOther
	}
	i := hashMthName(buf)
	for _, m := range mthNameLookup[i] {
		if bytescase.CmpEq(buf, m.n) {
			return m.t
		}
	}
	return mOther
}
