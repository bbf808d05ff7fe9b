// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// httpVersionPrefix is matched byte-by-byte against the start of a
// status-line, or against whatever follows a request-line's URL, without
// ever buffering it -- matchHTTPPrefixByte only needs the literal and the
// caller's running index.
var httpVersionPrefix = []byte("HTTP/")

// matchHTTPPrefixByte reports whether c is the expected byte of
// httpVersionPrefix at position idx.
func matchHTTPPrefixByte(c byte, idx int) bool {
	if idx >= len(httpVersionPrefix) {
		return false
	}
	return c == httpVersionPrefix[idx]
}
