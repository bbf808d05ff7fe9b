// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// teTokenScan incrementally tracks whether the last comma-separated token
// of a Transfer-Encoding value is "chunked", without ever buffering the
// header value itself. Whitespace around commas is ignored; whitespace
// inside a token is tolerated by simply not resetting the match (a
// pragmatic simplification, tokens with embedded folding whitespace are
// vanishingly rare in practice).
type teTokenScan struct {
	tokLen      int
	tokOK       bool
	lastChunked bool
}

const chunkedLiteral = "chunked"

func (s *teTokenScan) feed(c byte) {
	switch c {
	case ',':
		s.completeToken()
		s.tokLen, s.tokOK = 0, true
	case ' ', '\t':
		// ignore OWS, neither starts nor ends a token by itself.
	default:
		lc := c
		if lc >= 'A' && lc <= 'Z' {
			lc += 'a' - 'A'
		}
		if !(s.tokOK && s.tokLen < len(chunkedLiteral) && chunkedLiteral[s.tokLen] == lc) {
			s.tokOK = false
		}
		s.tokLen++
	}
}

func (s *teTokenScan) completeToken() {
	if s.tokOK && s.tokLen == len(chunkedLiteral) {
		s.lastChunked = true
	} else if s.tokLen > 0 {
		s.lastChunked = false
	}
}

// finish must be called once the full header value has been scanned.
func (s *teTokenScan) finish() bool {
	s.completeToken()
	return s.lastChunked
}

// connTokenScan incrementally tracks whether a Connection header value
// contains the "close" and/or "keep-alive" tokens, in any position.
type connTokenScan struct {
	tokLen    int
	closeOK   bool
	keepOK    bool
	sawClose  bool
	sawKeep   bool
}

const (
	closeLiteral = "close"
	keepLiteral  = "keep-alive"
)

func (s *connTokenScan) feed(c byte) {
	switch c {
	case ',':
		s.completeToken()
		s.reset()
	case ' ', '\t':
	default:
		lc := c
		if lc >= 'A' && lc <= 'Z' {
			lc += 'a' - 'A'
		}
		if s.tokLen == 0 {
			s.closeOK, s.keepOK = true, true
		}
		if s.closeOK && (s.tokLen >= len(closeLiteral) || closeLiteral[s.tokLen] != lc) {
			s.closeOK = false
		}
		if s.keepOK && (s.tokLen >= len(keepLiteral) || keepLiteral[s.tokLen] != lc) {
			s.keepOK = false
		}
		s.tokLen++
	}
}

func (s *connTokenScan) reset() { s.tokLen, s.closeOK, s.keepOK = 0, false, false }

func (s *connTokenScan) completeToken() {
	if s.closeOK && s.tokLen == len(closeLiteral) {
		s.sawClose = true
	}
	if s.keepOK && s.tokLen == len(keepLiteral) {
		s.sawKeep = true
	}
}

func (s *connTokenScan) finish() (close, keepAlive bool) {
	s.completeToken()
	return s.sawClose, s.sawKeep
}

// commitHeaderValue is called once a header's value has been fully
// scanned (at the CR or bare-LF terminating it), folding the incremental
// scanner state for framing-relevant headers into the parser's fields.
// Header bytes themselves were already handed to OnHeaderValue as they
// streamed past; this only updates bookkeeping.
func (p *Parser) commitHeaderValue() Errno {
	switch p.hdrType {
	case HdrContentLength:
		if p.clenDigits == 0 {
			return ErrInvalidContentLength
		}
		v := int64(p.clenVal)
		if p.clenSet && p.contentLength != v {
			return ErrInvalidContentLength // conflicting Content-Length headers
		}
		p.clenSet = true
		p.contentLength = v
	case HdrTransferEncoding:
		if p.teScan.finish() {
			p.flags |= FlagChunked
			p.clenSet = false
			p.contentLength = unsetContentLength
		}
	case HdrConnection, HdrProxyConnection:
		// Proxy-Connection is a non-standard but widely sent header,
		// legacy proxies' equivalent of Connection -- framed identically.
		close, keep := p.connScan.finish()
		if close {
			p.connClose = true
		}
		if keep {
			p.connKeepAlive = true
		}
	case HdrUpgrade:
		p.upgrade = true
	}
	return ErrOk
}

// feedContentLengthDigit accumulates one digit of a Content-Length value,
// rejecting non-digits and values above maxContentLength. Repeated
// Content-Length headers are checked in commitHeaderValue: a differing
// repeat is a protocol error (request smuggling defense), an identical
// one is tolerated, matching common intermediary behavior.
func (p *Parser) feedContentLengthDigit(c byte) Errno {
	if !isDigit(c) {
		return ErrInvalidContentLength
	}
	d := uint64(c - '0')
	if p.clenDigits > 0 && p.clenVal > (maxContentLength-d)/10 {
		return ErrHugeContentLength
	}
	p.clenVal = p.clenVal*10 + d
	p.clenDigits++
	return ErrOk
}

// finishHeaders is invoked once the blank line ending the header block has
// been consumed. It resolves the message's body framing, fires
// OnHeadersComplete and transitions to the appropriate body state.
func (p *Parser) finishHeaders() Errno {
	ret := 0
	if p.settings != nil && p.settings.OnHeadersComplete != nil {
		ret = p.settings.OnHeadersComplete(p)
	}
	switch ret {
	case 1:
		p.skipBody = true
	case 2:
		p.skipBody = true
		p.upgrade = true
	case 0:
		// no-op
	default:
		return ErrCBHeadersComplete
	}

	// CONNECT always hands off to a tunneled protocol, with or without an
	// Upgrade: header, both on the request that asks for it and on the
	// 2xx reply that grants it.
	if p.kind == Request {
		if p.method == MConnect {
			p.upgrade = true
		}
	} else if p.prevMethod == MConnect && p.statusCode >= 200 && p.statusCode <= 299 {
		p.upgrade = true
	}

	if p.upgrade {
		p.flags |= FlagUpgrade
		if p.cb(p.settings.OnMessageComplete) != 0 {
			return ErrCBMessageComplete
		}
		p.state = sMessageDone
		return errUpgradeHandoff
	}

	p.state = p.messageBodyType()
	if p.state == sMessageDone {
		if p.cb(p.settings.OnMessageComplete) != 0 {
			return ErrCBMessageComplete
		}
	}
	return ErrOk
}

// maxContentLength bounds Content-Length accumulation the same way
// maxChunkSize bounds chunk-size accumulation (chunk.go), both chosen to
// match the signed 63-bit ceiling of the source implementation.
const maxContentLength = (uint64(1) << 63) - 1
