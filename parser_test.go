// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder accumulates every callback firing into plain Go values so test
// assertions don't have to reason about how many calls a field spanned.
type recorder struct {
	msgBegins    int
	url          []byte
	fields       [][]byte
	values       [][]byte
	headersDone  int
	body         []byte
	msgComplete  int
	reason       []byte
	chunkHeaders int
	chunkSizes   []int64 // ContentLength() as observed inside each OnChunkHeader
	chunkDone    int

	method        HTTPMethod
	major, minor  uint16
	statusCode    uint16
	contentLength int64
	upgrade       bool

	headersCompleteRet int
}

func (r *recorder) settings() *Settings {
	return &Settings{
		OnMessageBegin: func(p *Parser) int { r.msgBegins++; return 0 },
		OnURL: func(p *Parser, d []byte) int {
			r.url = append(r.url, d...)
			return 0
		},
		OnHeaderField: func(p *Parser, d []byte) int {
			if len(r.fields) == len(r.values) {
				r.fields = append(r.fields, append([]byte{}, d...))
			} else {
				r.fields[len(r.fields)-1] = append(r.fields[len(r.fields)-1], d...)
			}
			return 0
		},
		OnHeaderValue: func(p *Parser, d []byte) int {
			if len(r.fields) > len(r.values) {
				r.values = append(r.values, append([]byte{}, d...))
			} else {
				r.values[len(r.values)-1] = append(r.values[len(r.values)-1], d...)
			}
			return 0
		},
		OnHeadersComplete: func(p *Parser) int {
			r.headersDone++
			r.method = p.Method()
			r.major, r.minor = p.HTTPMajor(), p.HTTPMinor()
			r.statusCode = p.StatusCode()
			r.contentLength = p.ContentLength()
			r.upgrade = p.HasUpgrade()
			return r.headersCompleteRet
		},
		OnBody: func(p *Parser, d []byte) int {
			r.body = append(r.body, d...)
			return 0
		},
		OnMessageComplete: func(p *Parser) int { r.msgComplete++; return 0 },
		OnReason: func(p *Parser, d []byte) int {
			r.reason = append(r.reason, d...)
			return 0
		},
		OnChunkHeader: func(p *Parser) int {
			r.chunkHeaders++
			r.chunkSizes = append(r.chunkSizes, p.ContentLength())
			return 0
		},
		OnChunkComplete: func(p *Parser) int { r.chunkDone++; return 0 },
	}
}

// feedWhole runs data through p in a single Execute call.
func feedWhole(t *testing.T, p *Parser, s *Settings, data []byte) int {
	t.Helper()
	n := p.Execute(s, data)
	require.Equal(t, ErrOk, p.Errno(), "unexpected parse error")
	return n
}

// feedFragmented runs data through p split at random byte boundaries,
// exercising the "any split survives" invariant (§5/§8).
func feedFragmented(t *testing.T, p *Parser, s *Settings, data []byte) int {
	t.Helper()
	total := 0
	for total < len(data) {
		remain := len(data) - total
		n := 1 + rand.Intn(remain)
		consumed := p.Execute(s, data[total:total+n])
		require.Equal(t, ErrOk, p.Errno(), "unexpected parse error at offset %d", total)
		total += consumed
		if consumed < n {
			break // upgrade/pause handoff
		}
	}
	return total
}

func TestRequestLineAndHeaders(t *testing.T) {
	raw := []byte("GET /index.html?x=1 HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Connection: keep-alive\r\n" +
		"\r\n")

	for _, frag := range []bool{false, true} {
		p := New(Request)
		r := &recorder{}
		s := r.settings()
		if frag {
			feedFragmented(t, p, s, raw)
		} else {
			feedWhole(t, p, s, raw)
		}
		assert.Equal(t, 1, r.msgBegins)
		assert.Equal(t, "/index.html?x=1", string(r.url))
		assert.Equal(t, MGet, r.method)
		assert.EqualValues(t, 1, r.major)
		assert.EqualValues(t, 1, r.minor)
		assert.Equal(t, 1, r.headersDone)
		require.Len(t, r.fields, 2)
		assert.Equal(t, "Host", string(r.fields[0]))
		assert.Equal(t, "example.com", string(r.values[0]))
		assert.Equal(t, "Connection", string(r.fields[1]))
		assert.Equal(t, "keep-alive", string(r.values[1]))
		assert.True(t, p.ConnectionKeepAlive())
		assert.Equal(t, 1, r.msgComplete)
	}
}

func TestProxyConnectionClose(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\n" +
		"Proxy-Connection: close\r\n" +
		"\r\n")
	p := New(Request)
	r := &recorder{}
	feedWhole(t, p, r.settings(), raw)
	assert.True(t, p.ConnectionClose())
}

func TestContentLengthBody(t *testing.T) {
	raw := []byte("POST /submit HTTP/1.1\r\n" +
		"Content-Length: 11\r\n" +
		"\r\n" +
		"hello world")

	for _, frag := range []bool{false, true} {
		p := New(Request)
		r := &recorder{}
		s := r.settings()
		n := total(t, p, s, raw, frag)
		assert.Equal(t, len(raw), n)
		assert.Equal(t, "hello world", string(r.body))
		assert.EqualValues(t, 11, r.contentLength)
		assert.Equal(t, 1, r.msgComplete)
	}
}

func total(t *testing.T, p *Parser, s *Settings, raw []byte, frag bool) int {
	if frag {
		return feedFragmented(t, p, s, raw)
	}
	return feedWhole(t, p, s, raw)
}

func TestChunkedBody(t *testing.T) {
	raw := []byte("POST /up HTTP/1.1\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"4\r\nWiki\r\n" +
		"5\r\npedia\r\n" +
		"0\r\n" +
		"Trailer-Field: trailer-value\r\n" +
		"\r\n")

	for _, frag := range []bool{false, true} {
		p := New(Request)
		r := &recorder{}
		s := r.settings()
		total(t, p, s, raw, frag)
		assert.Equal(t, "Wikipedia", string(r.body))
		assert.Equal(t, 3, r.chunkHeaders)
		assert.Equal(t, []int64{4, 5, 0}, r.chunkSizes, "ContentLength() must already reflect the chunk size inside OnChunkHeader")
		assert.Equal(t, 2, r.chunkDone)
		assert.Equal(t, 1, r.msgComplete)
		require.Len(t, r.fields, 2)
		assert.Equal(t, "Trailer-Field", string(r.fields[1]))
		assert.Equal(t, "trailer-value", string(r.values[1]))
	}
}

func TestResponseNoBody204(t *testing.T) {
	raw := []byte("HTTP/1.1 204 No Content\r\n" +
		"Connection: close\r\n" +
		"\r\n")

	p := New(Response)
	r := &recorder{}
	s := r.settings()
	n := feedWhole(t, p, s, raw)
	assert.Equal(t, len(raw), n)
	assert.EqualValues(t, 204, r.statusCode)
	assert.Equal(t, "No Content", string(r.reason))
	assert.Equal(t, 1, r.msgComplete)
	assert.True(t, p.ConnectionClose())
}

func TestUpgradeHandoff(t *testing.T) {
	raw := []byte("GET /ws HTTP/1.1\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"\r\n" +
		"binary-protocol-bytes-not-http")

	p := New(Request)
	r := &recorder{}
	s := r.settings()
	n := p.Execute(s, raw)
	require.Equal(t, ErrOk, p.Errno())
	require.True(t, p.HasUpgrade())
	headerEnd := len(raw) - len("binary-protocol-bytes-not-http")
	assert.Equal(t, headerEnd, n)
	assert.Equal(t, 1, r.msgComplete)
}

func TestConnectRequestUpgradeHandoff(t *testing.T) {
	raw := []byte("CONNECT example.com:443 HTTP/1.1\r\n" +
		"Host: example.com:443\r\n" +
		"\r\n" +
		"GARBAGE-not-http-tunneled-bytes")

	p := New(Request)
	r := &recorder{}
	s := r.settings()
	n := p.Execute(s, raw)
	require.Equal(t, ErrOk, p.Errno())
	require.True(t, p.HasUpgrade())
	headerEnd := len(raw) - len("GARBAGE-not-http-tunneled-bytes")
	assert.Equal(t, headerEnd, n)
	assert.Equal(t, 1, r.msgComplete)
	assert.Equal(t, byte('G'), raw[n])
}

func TestConnectResponseUpgradeHandoff(t *testing.T) {
	raw := []byte("HTTP/1.1 200 Connection Established\r\n" +
		"\r\n" +
		"GARBAGE-not-http-tunneled-bytes")

	p := New(Response)
	p.SetPrevMethod(MConnect)
	r := &recorder{}
	s := r.settings()
	n := p.Execute(s, raw)
	require.Equal(t, ErrOk, p.Errno())
	require.True(t, p.HasUpgrade())
	headerEnd := len(raw) - len("GARBAGE-not-http-tunneled-bytes")
	assert.Equal(t, headerEnd, n)
	assert.Empty(t, r.body)
}

func TestIdentityBodyRunsToEOF(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\n" +
		"\r\n" +
		"this body has no Content-Length and ends at connection close")

	p := New(Response)
	r := &recorder{}
	s := r.settings()
	n := p.Execute(s, raw)
	require.Equal(t, ErrOk, p.Errno())
	assert.Equal(t, len(raw), n)
	assert.Equal(t, 0, r.msgComplete, "identity-to-EOF body must not complete until EOF is signaled")

	p.Execute(s, nil) // signal EOF
	require.Equal(t, ErrOk, p.Errno())
	assert.Equal(t, 1, r.msgComplete)
	assert.Equal(t, "this body has no Content-Length and ends at connection close", string(r.body))
}

func TestHeaderOverflow(t *testing.T) {
	big := make([]byte, HeaderMaxSize+100)
	for i := range big {
		big[i] = 'a'
	}
	raw := append([]byte("GET / HTTP/1.1\r\nX-Big: "), big...)
	raw = append(raw, "\r\n\r\n"...)

	p := New(Request)
	r := &recorder{}
	s := r.settings()
	p.Execute(s, raw)
	assert.Equal(t, ErrHeaderOverflow, p.Errno())
	assert.Equal(t, StatusError, p.Status())
}

// TestChunkedBodyBiggerThanHeaderCapDoesNotOverflow guards against the cap
// counting chunk *data* bytes: a chunk body well over HeaderMaxSize, fed
// one byte at a time, must parse cleanly since only header/chunk-size/
// trailer framing counts against the cap, never chunk payload.
func TestChunkedBodyBiggerThanHeaderCapDoesNotOverflow(t *testing.T) {
	bodySize := HeaderMaxSize + 1000
	body := make([]byte, bodySize)
	for i := range body {
		body[i] = 'a'
	}
	raw := []byte("POST /up HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n")
	raw = append(raw, []byte(fmt.Sprintf("%x\r\n", bodySize))...)
	raw = append(raw, body...)
	raw = append(raw, []byte("\r\n0\r\n\r\n")...)

	p := New(Request)
	r := &recorder{}
	s := r.settings()
	total := 0
	for total < len(raw) {
		end := total + 1
		n := p.Execute(s, raw[total:end])
		require.Equal(t, ErrOk, p.Errno(), "unexpected parse error at offset %d", total)
		total += n
	}
	assert.Equal(t, bodySize, len(r.body))
	assert.Equal(t, 1, r.msgComplete)
}

func TestPauseResume(t *testing.T) {
	raw := []byte("POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello")
	p := New(Request)
	r := &recorder{}
	s := r.settings()
	s.OnHeadersComplete = func(pp *Parser) int {
		r.headersDone++
		pp.Pause(true)
		return 0
	}
	n := p.Execute(s, raw)
	assert.Equal(t, StatusPaused, p.Status())
	assert.Less(t, n, len(raw))

	p.Pause(false)
	n2 := p.Execute(s, raw[n:])
	assert.Equal(t, ErrOk, p.Errno())
	assert.Equal(t, len(raw)-n, n2)
}

func TestDuplicateContentLengthMismatch(t *testing.T) {
	raw := []byte("POST / HTTP/1.1\r\n" +
		"Content-Length: 5\r\n" +
		"Content-Length: 6\r\n" +
		"\r\nhello")
	p := New(Request)
	r := &recorder{}
	p.Execute(r.settings(), raw)
	assert.Equal(t, ErrInvalidContentLength, p.Errno())
}

func TestDuplicateContentLengthIdentical(t *testing.T) {
	raw := []byte("POST / HTTP/1.1\r\n" +
		"Content-Length: 5\r\n" +
		"Content-Length: 5\r\n" +
		"\r\nhello")
	p := New(Request)
	r := &recorder{}
	p.Execute(r.settings(), raw)
	assert.Equal(t, ErrOk, p.Errno())
	assert.Equal(t, "hello", string(r.body))
}

func TestHeadResponseSkipsBody(t *testing.T) {
	raw := []byte("HTTP/1.1 200 OK\r\n" +
		"Content-Length: 12\r\n" +
		"\r\n")
	p := New(Response)
	p.SetPrevMethod(MHead)
	r := &recorder{}
	n := feedWhole(t, p, r.settings(), raw)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, 1, r.msgComplete)
	assert.Empty(t, r.body)
}

func TestClosedConnectionRejectsFurtherBytes(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\nConnection: close\r\n\r\n")
	p := New(Request)
	r := &recorder{}
	s := r.settings()
	n := feedWhole(t, p, s, raw)
	assert.Equal(t, len(raw), n)

	n2 := p.Execute(s, []byte("GET /again HTTP/1.1\r\n\r\n"))
	assert.Equal(t, 0, n2)
	assert.Equal(t, ErrClosedConnection, p.Errno())
}
