// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// Errno is the error enum returned throughout the parser. The zero value,
// ErrOk, means success. It implements the error interface so it can be
// wrapped by callers, but parsing functions always return it directly
// (never as a generic error) to keep the hot path allocation-free.
type Errno uint8

// Error enum values, in declaration order (numeric values are part of the
// external interface, see spec GLOSSARY / EXTERNAL INTERFACES).
const (
	ErrOk Errno = iota

	// callback errors: a user callback returned non-zero.
	ErrCBMessageBegin
	ErrCBPath
	ErrCBQueryString
	ErrCBURL
	ErrCBFragment
	ErrCBHeaderField
	ErrCBHeaderValue
	ErrCBHeadersComplete
	ErrCBBody
	ErrCBMessageComplete
	ErrCBReason
	ErrCBChunkHeader
	ErrCBChunkComplete

	// protocol errors.
	ErrInvalidEOFState
	ErrHeaderOverflow
	ErrClosedConnection
	ErrInvalidVersion
	ErrInvalidStatus
	ErrInvalidMethod
	ErrInvalidURL
	ErrInvalidHost
	ErrInvalidPort
	ErrInvalidPath
	ErrInvalidQueryString
	ErrInvalidFragment
	ErrLFExpected
	ErrInvalidHeaderToken
	ErrInvalidContentLength
	ErrHugeContentLength
	ErrInvalidChunkSize
	ErrHugeChunkSize
	ErrInvalidConstant

	// defensive / "must never happen" errors (ErrInvalidInternalState,
	// ErrUnknown), the strict-mode code, and ErrPaused, which Execute
	// reports while the parser is paused.
	ErrInvalidInternalState
	ErrStrict
	ErrPaused
	ErrUnknown

	errMax // sentinel, not a valid error value
)

// errInfo holds the short name and human description of one Errno value.
type errInfo struct {
	name string
	desc string
}

// errTable maps each Errno to its name/description, mirroring the static
// array-of-strings idiom the method table uses (Method2Name).
var errTable = [errMax]errInfo{
	ErrOk:                    {"OK", "success"},
	ErrCBMessageBegin:        {"CB_message_begin", "the on_message_begin callback failed"},
	ErrCBPath:                {"CB_path", "the on_path callback failed"},
	ErrCBQueryString:         {"CB_query_string", "the on_query_string callback failed"},
	ErrCBURL:                 {"CB_url", "the on_url callback failed"},
	ErrCBFragment:            {"CB_fragment", "the on_fragment callback failed"},
	ErrCBHeaderField:         {"CB_header_field", "the on_header_field callback failed"},
	ErrCBHeaderValue:         {"CB_header_value", "the on_header_value callback failed"},
	ErrCBHeadersComplete:     {"CB_headers_complete", "the on_headers_complete callback failed"},
	ErrCBBody:                {"CB_body", "the on_body callback failed"},
	ErrCBMessageComplete:     {"CB_message_complete", "the on_message_complete callback failed"},
	ErrCBReason:              {"CB_reason", "the on_reason callback failed"},
	ErrCBChunkHeader:         {"CB_chunk_header", "the on_chunk_header callback failed"},
	ErrCBChunkComplete:       {"CB_chunk_complete", "the on_chunk_complete callback failed"},
	ErrInvalidEOFState:       {"INVALID_EOF_STATE", "stream ended at an unexpected time"},
	ErrHeaderOverflow:        {"HEADER_OVERFLOW", "too many header bytes seen; overflow detected"},
	ErrClosedConnection:      {"CLOSED_CONNECTION", "data received after completed connection: close message"},
	ErrInvalidVersion:        {"INVALID_VERSION", "invalid HTTP version"},
	ErrInvalidStatus:         {"INVALID_STATUS", "invalid HTTP status code"},
	ErrInvalidMethod:         {"INVALID_METHOD", "invalid HTTP method"},
	ErrInvalidURL:            {"INVALID_URL", "invalid URL"},
	ErrInvalidHost:           {"INVALID_HOST", "invalid host"},
	ErrInvalidPort:           {"INVALID_PORT", "invalid port"},
	ErrInvalidPath:           {"INVALID_PATH", "invalid path"},
	ErrInvalidQueryString:    {"INVALID_QUERY_STRING", "invalid query string"},
	ErrInvalidFragment:       {"INVALID_FRAGMENT", "invalid fragment"},
	ErrLFExpected:            {"LF_EXPECTED", "LF character expected"},
	ErrInvalidHeaderToken:    {"INVALID_HEADER_TOKEN", "invalid character in header"},
	ErrInvalidContentLength:  {"INVALID_CONTENT_LENGTH", "invalid character in content-length header"},
	ErrHugeContentLength:     {"HUGE_CONTENT_LENGTH", "content-length header too large"},
	ErrInvalidChunkSize:      {"INVALID_CHUNK_SIZE", "invalid character in chunk size header"},
	ErrHugeChunkSize:         {"HUGE_CHUNK_SIZE", "chunk header size too large"},
	ErrInvalidConstant:       {"INVALID_CONSTANT", "invalid constant string"},
	ErrInvalidInternalState:  {"INVALID_INTERNAL_STATE", "encountered unexpected internal state"},
	ErrStrict:                {"STRICT", "strict mode assertion failed"},
	ErrPaused:                {"PAUSED", "parser is paused"},
	ErrUnknown:               {"UNKNOWN", "an unknown error occurred"},
}

// Name returns the short identifier for e (e.g. "HEADER_OVERFLOW").
func (e Errno) Name() string {
	if e >= errMax {
		return "UNKNOWN"
	}
	return errTable[e].name
}

// Description returns a short human-readable description of e.
func (e Errno) Description() string {
	if e >= errMax {
		return errTable[ErrUnknown].desc
	}
	return errTable[e].desc
}

// Error implements the error interface.
func (e Errno) Error() string {
	return e.Description()
}

// String implements the Stringer interface.
func (e Errno) String() string {
	return e.Name()
}

// Status is a coarse classification of a parser's condition, splitting
// the sticky-pause-via-error-code overload of the source into a clean
// tri-state (see SPEC_FULL.md design note on sticky pause).
type Status uint8

const (
	StatusOK Status = iota
	StatusPaused
	StatusError
)

// String implements the Stringer interface.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPaused:
		return "paused"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
