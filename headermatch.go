// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import (
	"github.com/intuitivelabs/bytescase"
)

// HeaderType is the recognized subset of header names the framing logic
// cares about. Anything else is HdrOther -- its bytes are still delivered
// via OnHeaderField/OnHeaderValue, they are just not acted upon.
type HeaderType uint8

const (
	HdrOther HeaderType = iota
	HdrContentLength
	HdrTransferEncoding
	HdrConnection
	HdrUpgrade
	HdrProxyConnection
	HdrContentEncoding
	HdrSecWebSocketKey
	HdrSecWebSocketProto
	HdrSecWebSocketAccept
	HdrSecWebSocketVersion
)

var hdrTypeStr = [...]string{
	HdrOther:               "Other",
	HdrContentLength:       "Content-Length",
	HdrTransferEncoding:    "Transfer-Encoding",
	HdrConnection:          "Connection",
	HdrUpgrade:             "Upgrade",
	HdrProxyConnection:     "Proxy-Connection",
	HdrContentEncoding:     "Content-Encoding",
	HdrSecWebSocketKey:     "Sec-WebSocket-Key",
	HdrSecWebSocketProto:   "Sec-WebSocket-Protocol",
	HdrSecWebSocketAccept:  "Sec-WebSocket-Accept",
	HdrSecWebSocketVersion: "Sec-WebSocket-Version",
}

// String implements the Stringer interface.
func (t HeaderType) String() string {
	if int(t) >= len(hdrTypeStr) {
		return "Other"
	}
	return hdrTypeStr[t]
}

// recognized header names, lowercase, used only to seed the per-byte
// matcher below -- never re-compared against a fully buffered name.
var recognizedHdrNames = []struct {
	name []byte
	typ  HeaderType
}{
	{[]byte("content-length"), HdrContentLength},
	{[]byte("transfer-encoding"), HdrTransferEncoding},
	{[]byte("connection"), HdrConnection},
	{[]byte("upgrade"), HdrUpgrade},
	{[]byte("proxy-connection"), HdrProxyConnection},
	{[]byte("content-encoding"), HdrContentEncoding},
	{[]byte("sec-websocket-key"), HdrSecWebSocketKey},
	{[]byte("sec-websocket-protocol"), HdrSecWebSocketProto},
	{[]byte("sec-websocket-accept"), HdrSecWebSocketAccept},
	{[]byte("sec-websocket-version"), HdrSecWebSocketVersion},
}

// hdrMatcher is an incremental, case-insensitive matcher for header
// names. Bytes are fed one at a time as they stream in (possibly split
// across many Execute calls); it never buffers the name itself, only a
// small bitmask of still-possible candidates and the current position.
// This is the per-byte DFA the design notes call for (see
// headermatch.go entry in DESIGN.md).
type hdrMatcher struct {
	live uint16 // bitmask over recognizedHdrNames: still-possible candidates
	pos  int    // number of bytes matched so far
}

func newHdrMatcher() hdrMatcher {
	return hdrMatcher{live: (1 << uint(len(recognizedHdrNames))) - 1}
}

// reset reinitializes m for a new header name.
func (m *hdrMatcher) reset() {
	*m = newHdrMatcher()
}

// feed advances the matcher by one header-name byte.
func (m *hdrMatcher) feed(c byte) {
	if m.live == 0 {
		return
	}
	lc := bytescase.ByteToLower(c)
	for i, cand := range recognizedHdrNames {
		bit := uint16(1) << uint(i)
		if m.live&bit == 0 {
			continue
		}
		if m.pos >= len(cand.name) || cand.name[m.pos] != lc {
			m.live &^= bit
		}
	}
	m.pos++
}

// result returns the recognized HeaderType once the name is complete
// (i.e. once ':' has been seen). Exactly one live candidate whose full
// length equals the bytes fed means a match; anything else is HdrOther.
func (m *hdrMatcher) result() HeaderType {
	match := HdrOther
	found := 0
	for i, cand := range recognizedHdrNames {
		bit := uint16(1) << uint(i)
		if m.live&bit == 0 {
			continue
		}
		if len(cand.name) == m.pos {
			match = cand.typ
			found++
		}
	}
	if found == 1 {
		return match
	}
	return HdrOther
}
