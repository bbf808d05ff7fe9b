// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// isTokenChar returns true if c is a valid RFC 7230 tchar (allowed inside
// a header name or an unquoted header value token).
func isTokenChar(c byte, strict bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	if !strict && c >= 0x80 {
		// lenient mode: tolerate high-bit bytes in tokens.
		return true
	}
	return false
}

// isHeaderValueChar returns true for bytes allowed inside a header field
// value (wider than a token: includes space and visible ASCII, RFC 7230
// section 3.2 field-content).
func isHeaderValueChar(c byte, strict bool) bool {
	if c == ' ' || c == '\t' {
		return true
	}
	if c >= 0x21 && c <= 0x7e {
		return true
	}
	if !strict && c >= 0x80 {
		return true
	}
	return false
}

// isDigit reports whether c is an ASCII decimal digit.
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// hexVal returns the numeric value of an ASCII hex digit and true, or
// (0, false) if c is not a hex digit.
func hexVal(c byte) (uint64, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0'), true
	case c >= 'a' && c <= 'f':
		return uint64(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}

// skipWS advances i past SP/HTAB characters only (no CR/LF).
func skipWS(buf []byte, i int) int {
	for i < len(buf) && (buf[i] == ' ' || buf[i] == '\t') {
		i++
	}
	return i
}

// obsFoldStart reports whether buf[i] begins an obs-fold continuation
// (SP or HTAB right after a line terminator).
func obsFoldStart(buf []byte, i int) bool {
	return i < len(buf) && (buf[i] == ' ' || buf[i] == '\t')
}
