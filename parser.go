// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// Kind selects whether a Parser expects requests, responses or should
// autodetect on the first message (BOTH).
type Kind uint8

const (
	Request Kind = iota
	Response
	Both
)

// Flag bits, numeric values pinned by the external interface.
const (
	FlagChunked  uint8 = 1
	FlagTrailing uint8 = 8
	FlagUpgrade  uint8 = 16
	FlagSkipBody uint8 = 32
)

// HeaderMaxSize is the default cap on total header bytes (nread), see
// spec invariant 2. The collaborator that owns transport policy may want
// a smaller cap; this package only enforces the ceiling, it never grows
// it on its own.
const HeaderMaxSize = 81920

// VersionMajor/VersionMinor are this package's own version, unrelated to
// the HTTP version being parsed.
const (
	VersionMajor = 1
	VersionMinor = 0
)

// unsetContentLength marks "no Content-Length seen" / "body runs to EOF".
const unsetContentLength = -1

// DataCB is a callback receiving a byte range inside the buffer passed to
// the triggering Execute call. Returning non-zero aborts parsing.
type DataCB func(p *Parser, data []byte) int

// NotifyCB is a point callback carrying no data.
type NotifyCB func(p *Parser) int

// HeadersCompleteCB is on_headers_complete's special 3-way return:
// 0 - normal; 1 - no body expected; 2 - no body expected and treat the
// connection as upgraded (see spec section 4.1 stage 5).
type HeadersCompleteCB func(p *Parser) int

// Settings is the set of optional callbacks driving one Execute call.
// A nil field means "no-op" -- exactly like the source's callback set.
type Settings struct {
	OnMessageBegin    NotifyCB
	OnURL             DataCB
	OnHeaderField     DataCB
	OnHeaderValue     DataCB
	OnHeadersComplete HeadersCompleteCB
	OnBody            DataCB
	OnMessageComplete NotifyCB
	OnReason          DataCB
	OnChunkHeader     NotifyCB
	OnChunkComplete   NotifyCB
}

// msgState is the top-level message state machine (spec section 4.1).
type msgState uint8

const (
	sDead msgState = iota // reached once any error is set (see fail)

	sStartReq
	sStartRes
	sStartReqOrRes

	sReqMethod
	sReqSpacesBeforeURL
	sReqURL
	sReqHTTPStart
	sReqHTTPMajor
	sReqHTTPDot
	sReqHTTPMinor
	sReqLineCR
	sReqLineLF

	sResHTTPStart
	sResHTTPMajor
	sResHTTPDot
	sResHTTPMinor
	sResSPBeforeStatus
	sResStatus
	sResSPBeforeReason
	sResReason
	sResLineCR
	sResLineLF

	sHeaderFieldStart
	sHeaderField
	sHeaderFieldEnd
	sHeaderValuePreOWS
	sHeaderValue
	sHeaderValueCR
	sHeaderValueLF

	sHeadersAlmostDone // blank-line CR seen, expect final LF

	sChunkSizeStart
	sChunkSize
	sChunkExtension
	sChunkSizeCR
	sChunkSizeLF
	sChunkData
	sChunkDataCR
	sChunkDataLF

	sBodyIdentity
	sBodyIdentityEOF

	sMessageDone

	// trailer header states reuse sHeaderField*/sHeaderValue*; the trailer
	// field on the Parser distinguishes "blank line ends trailers" from
	// "blank line ends headers".
)

// Parser is a single HTTP/1.x message state machine. Zero-allocation: all
// output is delivered by reference into the buffer passed to Execute. Not
// safe for concurrent use by multiple goroutines; independent Parser
// values are fully independent (see spec section 5).
type Parser struct {
	kind  Kind
	state msgState

	flags   uint8
	strict  bool
	trailer bool // true while parsing trailer headers, not message headers

	nread uint32

	contentLength int64 // -1 == unset/EOF-terminated

	httpMajor uint16
	httpMinor uint16

	statusCode uint16
	method     HTTPMethod

	errno  Errno
	paused bool

	upgrade  bool
	skipBody bool // set by on_headers_complete returning 1 or 2

	connClose     bool
	connKeepAlive bool

	// first-line sub-state
	idx        int // generic literal-match position (HTTP/, status-code digits)
	methodBuf  [16]byte
	methodLen  int

	// header sub-state
	hdr        hdrMatcher
	hdrType    HeaderType
	clenDigits int
	clenVal    uint64
	clenSet    bool // a Content-Length value has already been committed
	teScan     teTokenScan
	connScan   connTokenScan

	// chunk sub-state
	chunkSize int64

	prevMethod HTTPMethod // method of the request this response answers, if known

	settings *Settings
}

// New creates a Parser configured for the given message kind.
func New(kind Kind) *Parser {
	p := &Parser{}
	p.Init(kind)
	return p
}

// Init (re)initializes p to a fresh state for kind, discarding any
// in-progress parse. Strict mode defaults to off (lenient), matching the
// source's HTTP_PARSER_STRICT=0 default.
func (p *Parser) Init(kind Kind) {
	*p = Parser{kind: kind, contentLength: unsetContentLength}
	switch kind {
	case Request:
		p.state = sStartReq
	case Response:
		p.state = sStartRes
	default:
		p.state = sStartReqOrRes
	}
}

// SetStrict toggles strict-RFC tokenization (see spec "Strictness").
func (p *Parser) SetStrict(strict bool) { p.strict = strict }

// SetPrevMethod tells a RESPONSE parser which request method it is
// replying to, needed to apply the HEAD/CONNECT body-presence rules of
// spec section 4.1 stage 5 when the caller does not want to rely solely
// on SkipBody via OnHeadersComplete's return value.
func (p *Parser) SetPrevMethod(m HTTPMethod) { p.prevMethod = m }

// Kind/HTTPMajor/HTTPMinor/StatusCode/Method/ContentLength/HasUpgrade/Errno
// are the external getter accessors (spec section 6).
func (p *Parser) Kind() Kind               { return p.kind }
func (p *Parser) HTTPMajor() uint16        { return p.httpMajor }
func (p *Parser) HTTPMinor() uint16        { return p.httpMinor }
func (p *Parser) StatusCode() uint16       { return p.statusCode }
func (p *Parser) SetStatusCode(c uint16)   { p.statusCode = c }
func (p *Parser) Method() HTTPMethod       { return p.method }
func (p *Parser) ContentLength() int64     { return p.contentLength }
func (p *Parser) HasUpgrade() bool         { return p.upgrade }
func (p *Parser) Errno() Errno             { return p.errno }
func (p *Parser) ConnectionClose() bool    { return p.connClose }
func (p *Parser) ConnectionKeepAlive() bool { return p.connKeepAlive }

// Status returns the coarse OK/Paused/Error classification (see §9
// sticky-pause redesign note).
func (p *Parser) Status() Status {
	switch {
	case p.paused:
		return StatusPaused
	case p.errno != ErrOk:
		return StatusError
	default:
		return StatusOK
	}
}

// Pause sets or clears the sticky pause flag. See spec "Pause semantics".
func (p *Parser) Pause(paused bool) {
	if paused {
		p.paused = true
		return
	}
	p.paused = false
	if p.errno == ErrPaused {
		p.errno = ErrOk
	}
}

// messageBodyType resolves which framing rule governs the body, per spec
// section 4.1 stage 5 / 6 and the HEAD/CONNECT/1xx/204/304 table.
func (p *Parser) messageBodyType() msgState {
	if p.kind != Request { // i.e. we're parsing a reply
		// a 2xx reply to CONNECT never reaches here: finishHeaders arms
		// the upgrade handoff for it before calling messageBodyType.
		if (p.statusCode > 99 && p.statusCode < 200) ||
			p.statusCode == 204 || p.statusCode == 304 ||
			p.prevMethod == MHead || p.skipBody {
			return sMessageDone
		}
	} else if p.skipBody {
		return sMessageDone
	}

	if p.flags&FlagChunked != 0 {
		return sChunkSizeStart
	}
	if p.clenSet {
		if p.contentLength == 0 {
			return sMessageDone
		}
		return sBodyIdentity
	}
	if p.kind == Request {
		return sMessageDone
	}
	return sBodyIdentityEOF
}

// Execute feeds data to p, advancing the state machine and invoking
// settings' callbacks as events are recognized. It returns the number of
// bytes consumed. A return value less than len(data) means: an error was
// set (Errno() != ErrOk), the parser paused, or headers completed with an
// upgrade handoff (HasUpgrade() == true) -- in the last two cases the
// remaining bytes were never looked at and belong to the caller.
//
// Execute(settings, nil), or any zero-length data, signals EOF: it is
// used to terminate an identity body that runs until connection close
// (sBodyIdentityEOF).
func (p *Parser) Execute(settings *Settings, data []byte) int {
	p.settings = settings
	if p.paused {
		p.errno = ErrPaused
		return 0
	}
	if p.errno != ErrOk {
		return 0
	}
	if len(data) == 0 {
		return p.executeEOF(settings)
	}
	return p.executeBuf(settings, data)
}

func (p *Parser) executeEOF(settings *Settings) int {
	switch p.state {
	case sBodyIdentityEOF:
		if p.cb(settings.OnMessageComplete) != 0 {
			p.fail(ErrCBMessageComplete)
			return 0
		}
		p.state = sMessageDone
		return 0
	case sStartReq, sStartRes, sStartReqOrRes, sMessageDone:
		return 0
	default:
		p.fail(ErrInvalidEOFState)
		return 0
	}
}

// cb invokes a NotifyCB if non-nil, else returns 0.
func (p *Parser) cb(f NotifyCB) int {
	if f == nil {
		return 0
	}
	return f(p)
}

// dcb invokes a DataCB if non-nil and data is non-empty, else returns 0.
func (p *Parser) dcb(f DataCB, data []byte) int {
	if f == nil || len(data) == 0 {
		return 0
	}
	return f(p, data)
}

func (p *Parser) fail(e Errno) {
	p.errno = e
	p.state = sDead
}

// executeBuf runs the byte-at-a-time state machine over data, which is
// owned by the caller for the duration of this call only.
func (p *Parser) executeBuf(settings *Settings, data []byte) int {
	i := 0
	n := len(data)

	// mark tracks the start of a contiguous data-callback span that may
	// need to be flushed either at a delimiter or at end-of-buffer; -1
	// means "no span open".
	mark := -1
	openURL := false
	openField := false
	openValue := false
	openReason := false

	// If we're resuming mid-span from a previous call, the span restarts
	// at the beginning of this buffer.
	switch p.state {
	case sReqURL:
		mark, openURL = 0, true
	case sHeaderField:
		mark, openField = 0, true
	case sHeaderValue:
		mark, openValue = 0, true
	case sResReason:
		mark, openReason = 0, true
	}

	flush := func(end int) int {
		if mark < 0 {
			return 0
		}
		span := data[mark:end]
		mark = -1
		switch {
		case openURL:
			openURL = false
			return p.dcb(settings.OnURL, span)
		case openField:
			openField = false
			return p.dcb(settings.OnHeaderField, span)
		case openValue:
			openValue = false
			return p.dcb(settings.OnHeaderValue, span)
		case openReason:
			openReason = false
			return p.dcb(settings.OnReason, span)
		}
		return 0
	}

	for i < n {
		// a callback paused the parser: stop right after its boundary.
		if p.paused {
			p.errno = ErrPaused
			return i
		}

		c := data[i]

		// the cap covers header lines and chunk-size/trailer framing, never
		// chunk body bytes -- sChunkData/sChunkDataCR/sChunkDataLF fall
		// outside both ranges so a large chunked body never trips it.
		if p.state >= sHeaderFieldStart && p.state <= sHeadersAlmostDone ||
			(p.state >= sChunkSizeStart && p.state <= sChunkSizeLF) {
			p.nread++
			if p.nread > HeaderMaxSize {
				p.fail(ErrHeaderOverflow)
				return i
			}
		}

		switch p.state {

		// ---- start -----------------------------------------------------
		case sStartReq, sStartRes, sStartReqOrRes:
			if c == '\r' || c == '\n' {
				i++ // tolerate leading CRLFs between messages
				continue
			}
			if p.cb(settings.OnMessageBegin) != 0 {
				p.fail(ErrCBMessageBegin)
				return i
			}
			switch p.state {
			case sStartReq:
				p.state = sReqMethod
				p.idx, p.methodLen = 0, 0
			case sStartRes:
				p.state = sResHTTPStart
				p.idx = 0
			default: // sStartReqOrRes: BOTH autodetect
				if c == 'H' {
					p.state = sResHTTPStart
				} else {
					p.state = sReqMethod
				}
				p.idx, p.methodLen = 0, 0
			}
			continue // re-examine c in the new state

		// ---- request line -----------------------------------------------
		case sReqMethod:
			if c == ' ' {
				if p.methodLen == 0 {
					p.fail(ErrInvalidMethod)
					return i
				}
				p.method = GetMethodNo(p.methodBuf[:p.methodLen])
				p.state = sReqSpacesBeforeURL
				i++
				continue
			}
			if !isTokenChar(c, true) || p.methodLen >= len(p.methodBuf) {
				p.fail(ErrInvalidMethod)
				return i
			}
			p.methodBuf[p.methodLen] = c
			p.methodLen++
			i++
			continue

		case sReqSpacesBeforeURL:
			if c == ' ' {
				i++
				continue
			}
			p.state = sReqURL
			mark, openURL = i, true
			continue

		case sReqURL:
			if c == ' ' {
				if flush(i) != 0 {
					p.fail(ErrCBURL)
					return i
				}
				p.state = sReqHTTPStart
				p.idx = 0
				i++
				continue
			}
			i++
			continue

		case sReqHTTPStart:
			if !matchHTTPPrefixByte(c, p.idx) {
				p.fail(ErrInvalidVersion)
				return i
			}
			p.idx++
			i++
			if p.idx == len(httpVersionPrefix) {
				p.state = sReqHTTPMajor
				p.httpMajor, p.httpMinor = 0, 0
			}
			continue

		case sReqHTTPMajor:
			if c == '.' {
				p.state = sReqHTTPDot
				i++
				continue
			}
			if !isDigit(c) {
				p.fail(ErrInvalidVersion)
				return i
			}
			p.httpMajor = p.httpMajor*10 + uint16(c-'0')
			i++
			continue

		case sReqHTTPDot:
			p.state = sReqHTTPMinor
			continue

		case sReqHTTPMinor:
			if c == '\r' || c == '\n' {
				p.state = sReqLineCR
				continue
			}
			if !isDigit(c) {
				p.fail(ErrInvalidVersion)
				return i
			}
			p.httpMinor = p.httpMinor*10 + uint16(c-'0')
			i++
			continue

		case sReqLineCR:
			if c == '\r' {
				i++
				p.state = sReqLineLF
				continue
			}
			if !p.strict && c == '\n' {
				p.state = sHeaderFieldStart
				p.hdr.reset()
				i++
				continue
			}
			p.fail(ErrInvalidVersion)
			return i

		case sReqLineLF:
			if c != '\n' {
				p.fail(ErrLFExpected)
				return i
			}
			i++
			p.state = sHeaderFieldStart
			p.hdr.reset()

		// ---- status line --------------------------------------------------
		case sResHTTPStart:
			if !matchHTTPPrefixByte(c, p.idx) {
				if p.kind == Both {
					// not a status line after all: the bytes matched so
					// far start a request method (e.g. "HEAD").
					p.methodLen = copy(p.methodBuf[:], httpVersionPrefix[:p.idx])
					p.state = sReqMethod
					continue
				}
				p.fail(ErrInvalidVersion)
				return i
			}
			p.idx++
			i++
			if p.idx == len(httpVersionPrefix) {
				p.state = sResHTTPMajor
				p.httpMajor, p.httpMinor = 0, 0
			}
			continue

		case sResHTTPMajor:
			if c == '.' {
				p.state = sResHTTPDot
				i++
				continue
			}
			if !isDigit(c) {
				p.fail(ErrInvalidVersion)
				return i
			}
			p.httpMajor = p.httpMajor*10 + uint16(c-'0')
			i++
			continue

		case sResHTTPDot:
			p.state = sResHTTPMinor
			continue

		case sResHTTPMinor:
			if c == ' ' {
				p.state = sResSPBeforeStatus
				i++
				continue
			}
			if !isDigit(c) {
				p.fail(ErrInvalidVersion)
				return i
			}
			p.httpMinor = p.httpMinor*10 + uint16(c-'0')
			i++
			continue

		case sResSPBeforeStatus:
			if c == ' ' {
				i++
				continue
			}
			if !isDigit(c) {
				p.fail(ErrInvalidStatus)
				return i
			}
			p.statusCode = 0
			p.idx = 0
			p.state = sResStatus
			continue

		case sResStatus:
			if c == ' ' {
				p.state = sResSPBeforeReason
				i++
				continue
			}
			if c == '\r' || c == '\n' {
				// some servers omit the reason phrase entirely.
				p.state = sResLineCR
				continue
			}
			if !isDigit(c) || p.idx >= 3 {
				p.fail(ErrInvalidStatus)
				return i
			}
			p.statusCode = p.statusCode*10 + uint16(c-'0')
			p.idx++
			i++
			continue

		case sResSPBeforeReason:
			if c == ' ' {
				i++
				continue
			}
			p.state = sResReason
			mark, openReason = i, true
			continue

		case sResReason:
			if c == '\r' || c == '\n' {
				if flush(i) != 0 {
					p.fail(ErrCBReason)
					return i
				}
				p.state = sResLineCR
				continue
			}
			i++
			continue

		case sResLineCR:
			if c == '\r' {
				i++
				p.state = sResLineLF
				continue
			}
			if !p.strict && c == '\n' {
				p.state = sHeaderFieldStart
				p.hdr.reset()
				i++
				continue
			}
			p.fail(ErrInvalidVersion)
			return i

		case sResLineLF:
			if c != '\n' {
				p.fail(ErrLFExpected)
				return i
			}
			i++
			p.state = sHeaderFieldStart
			p.hdr.reset()
			continue

		// ---- headers -------------------------------------------------------
		case sHeaderFieldStart:
			if c == '\r' {
				p.state = sHeadersAlmostDone
				i++
				continue
			}
			if !p.strict && c == '\n' {
				p.state = sHeadersAlmostDone
				continue // re-process as if CR had been seen; sHeadersAlmostDone eats the LF itself below
			}
			if !isTokenChar(c, p.strict) {
				p.fail(ErrInvalidHeaderToken)
				return i
			}
			p.hdr.reset()
			p.hdrType = HdrOther
			p.state = sHeaderField
			mark, openField = i, true
			continue

		case sHeaderField:
			if c == ':' {
				if flush(i) != 0 {
					p.fail(ErrCBHeaderField)
					return i
				}
				p.hdrType = p.hdr.result()
				p.resetValueScanners()
				p.state = sHeaderValuePreOWS
				i++
				continue
			}
			if isTokenChar(c, p.strict) {
				p.hdr.feed(c)
				i++
				continue
			}
			if c == ' ' || c == '\t' {
				// lenient: allow OWS between name and colon.
				if flush(i) != 0 {
					p.fail(ErrCBHeaderField)
					return i
				}
				p.hdrType = p.hdr.result()
				p.state = sHeaderFieldEnd
				i++
				continue
			}
			p.fail(ErrInvalidHeaderToken)
			return i

		case sHeaderFieldEnd:
			if c == ' ' || c == '\t' {
				i++
				continue
			}
			if c == ':' {
				p.resetValueScanners()
				p.state = sHeaderValuePreOWS
				i++
				continue
			}
			p.fail(ErrInvalidHeaderToken)
			return i

		case sHeaderValuePreOWS:
			if c == ' ' || c == '\t' {
				i++
				continue
			}
			p.state = sHeaderValue
			mark, openValue = i, true
			continue

		case sHeaderValue:
			if c == '\r' {
				if flush(i) != 0 {
					p.fail(ErrCBHeaderValue)
					return i
				}
				if err := p.commitHeaderValue(); err != ErrOk {
					p.fail(err)
					return i
				}
				p.state = sHeaderValueCR
				i++
				continue
			}
			if c == '\n' && !p.strict {
				if flush(i) != 0 {
					p.fail(ErrCBHeaderValue)
					return i
				}
				if err := p.commitHeaderValue(); err != ErrOk {
					p.fail(err)
					return i
				}
				p.state = sHeaderValueLF
				i++
				continue
			}
			if !isHeaderValueChar(c, p.strict) {
				p.fail(ErrInvalidHeaderToken)
				return i
			}
			if p.hdrType == HdrContentLength {
				if err := p.feedContentLengthDigit(c); err != ErrOk {
					p.fail(err)
					return i
				}
			} else if p.hdrType == HdrTransferEncoding {
				p.teScan.feed(c)
			} else if p.hdrType == HdrConnection || p.hdrType == HdrProxyConnection {
				p.connScan.feed(c)
			}
			i++
			continue

		case sHeaderValueCR:
			if c != '\n' {
				p.fail(ErrLFExpected)
				return i
			}
			i++
			p.state = sHeaderValueLF
			continue

		case sHeaderValueLF:
			if obsFoldStart(data, i) {
				// obs-fold: continuation of the same header value,
				// collapse the fold into a single SP (delivered as a
				// synthetic one-byte span, since it is not present in
				// the input buffer).
				if p.dcb(settings.OnHeaderValue, []byte{' '}) != 0 {
					p.fail(ErrCBHeaderValue)
					return i
				}
				i++ // skip the fold's leading WS; skipWS below eats the rest
				i = skipWS(data, i)
				p.state = sHeaderValue
				mark, openValue = i, true
				continue
			}
			p.state = sHeaderFieldStart
			continue

		case sHeadersAlmostDone:
			if c != '\n' {
				p.fail(ErrLFExpected)
				return i
			}
			i++
			if p.trailer {
				if p.cb(settings.OnMessageComplete) != 0 {
					p.fail(ErrCBMessageComplete)
					return i
				}
				p.state = sMessageDone
				continue
			}
			if err := p.finishHeaders(); err != ErrOk {
				if err == errUpgradeHandoff {
					return i
				}
				p.fail(err)
				return i
			}
			if p.upgrade {
				return i
			}
			continue

		// ---- chunked transfer-encoding ----------------------------------
		case sChunkSizeStart:
			v, ok := hexVal(c)
			if !ok {
				p.fail(ErrInvalidChunkSize)
				return i
			}
			p.chunkSize = int64(v)
			p.state = sChunkSize
			i++
			continue

		case sChunkSize:
			if c == '\r' {
				p.state = sChunkSizeCR
				i++
				continue
			}
			if c == ';' || c == ' ' {
				p.state = sChunkExtension
				i++
				continue
			}
			v, ok := hexVal(c)
			if !ok {
				p.fail(ErrInvalidChunkSize)
				return i
			}
			if p.chunkSize > (maxChunkSize-int64(v))/16 {
				p.fail(ErrHugeChunkSize)
				return i
			}
			p.chunkSize = p.chunkSize*16 + int64(v)
			i++
			continue

		case sChunkExtension:
			if c == '\r' {
				p.state = sChunkSizeCR
			}
			i++
			continue

		case sChunkSizeCR:
			if c != '\n' {
				p.fail(ErrLFExpected)
				return i
			}
			i++
			p.contentLength = p.chunkSize
			if p.cb(settings.OnChunkHeader) != 0 {
				p.fail(ErrCBChunkHeader)
				return i
			}
			if p.chunkSize == 0 {
				p.trailer = true
				p.hdr.reset()
				p.hdrType = HdrOther
				p.state = sHeaderFieldStart
			} else {
				p.state = sChunkData
			}
			continue

		case sChunkData:
			avail := int64(n - i)
			remain := p.contentLength
			take := remain
			if avail < take {
				take = avail
			}
			if take > 0 {
				if p.dcb(settings.OnBody, data[i:i+int(take)]) != 0 {
					p.fail(ErrCBBody)
					return i
				}
			}
			i += int(take)
			p.contentLength -= take
			if p.contentLength == 0 {
				p.state = sChunkDataCR
			}
			continue

		case sChunkDataCR:
			if c != '\r' {
				p.fail(ErrInvalidConstant)
				return i
			}
			i++
			p.state = sChunkDataLF
			continue

		case sChunkDataLF:
			if c != '\n' {
				p.fail(ErrLFExpected)
				return i
			}
			i++
			if p.cb(settings.OnChunkComplete) != 0 {
				p.fail(ErrCBChunkComplete)
				return i
			}
			if p.chunkSize == 0 {
				// last-chunk: what follows is trailers.
				p.trailer = true
				p.hdr.reset()
				p.hdrType = HdrOther
				p.state = sHeaderFieldStart
			} else {
				p.state = sChunkSizeStart
				p.idx = 0
			}
			continue

		// ---- identity / eof body -----------------------------------------
		case sBodyIdentity:
			avail := int64(n - i)
			take := p.contentLength
			if avail < take {
				take = avail
			}
			if take > 0 {
				if p.dcb(settings.OnBody, data[i:i+int(take)]) != 0 {
					p.fail(ErrCBBody)
					return i
				}
			}
			i += int(take)
			p.contentLength -= take
			if p.contentLength == 0 {
				if err := p.finishMessage(); err != ErrOk {
					p.fail(err)
					return i
				}
			}
			continue

		case sBodyIdentityEOF:
			// consume everything; completion only happens on EOF signal.
			if n-i > 0 {
				if p.dcb(settings.OnBody, data[i:n]) != 0 {
					p.fail(ErrCBBody)
					return i
				}
			}
			i = n
			continue

		case sMessageDone:
			if p.connClose {
				p.fail(ErrClosedConnection)
				return i
			}
			// ready for the next message.
			switch p.kind {
			case Request:
				p.state = sStartReq
			case Response:
				p.state = sStartRes
			default:
				p.state = sStartReqOrRes
			}
			p.resetPerMessage()
			continue

		default:
			p.fail(ErrInvalidInternalState)
			return i
		}
	}

	// ran out of buffer: flush any still-open span before returning.
	spanErr := ErrCBHeaderValue
	switch {
	case openURL:
		spanErr = ErrCBURL
	case openField:
		spanErr = ErrCBHeaderField
	case openReason:
		spanErr = ErrCBReason
	}
	if flush(n) != 0 {
		p.fail(spanErr)
		return n
	}
	return n
}

// finishMessage fires OnMessageComplete and transitions to sMessageDone.
// Used by identity-length bodies once the last content byte is consumed;
// chunked bodies and the no-body cases reach sMessageDone through
// finishHeaders/the zero-size chunk trailer path instead.
func (p *Parser) finishMessage() Errno {
	if p.cb(p.settings.OnMessageComplete) != 0 {
		return ErrCBMessageComplete
	}
	p.state = sMessageDone
	return ErrOk
}

// errUpgradeHandoff is an internal sentinel (never exposed via Errno())
// used to unwind out of finishHeaders when the message is about to hand
// off to an upgraded protocol.
const errUpgradeHandoff = Errno(255)

// resetValueScanners clears the per-header-value incremental scanners,
// called once per header right after the field name ends.
func (p *Parser) resetValueScanners() {
	p.teScan = teTokenScan{tokOK: true}
	p.connScan = connTokenScan{}
	p.clenDigits, p.clenVal = 0, 0
}

// resetPerMessage clears the per-message (but not per-connection) state
// once a message has fully completed and another may follow on the same
// Parser, as required by spec invariant 3/4 independence between
// messages.
func (p *Parser) resetPerMessage() {
	p.flags = 0
	p.nread = 0
	p.contentLength = unsetContentLength
	p.httpMajor, p.httpMinor = 0, 0
	p.statusCode = 0
	p.method = 0
	p.upgrade = false
	p.skipBody = false
	p.clenSet = false
	p.clenDigits = 0
	p.clenVal = 0
	p.trailer = false
	p.idx = 0
	p.connClose = false
	p.connKeepAlive = false
}
