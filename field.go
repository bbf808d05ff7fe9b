// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// OffsT is the type used for offsets and lengths inside Field. uint16
// is enough since ParseURL rejects URLs longer than 65535 bytes
// (maxURLLen in url.go).
type OffsT uint16

// Field is a (offset, length) pair into the buffer supplied to ParseURL.
// It only designates bytes of that buffer -- nothing is copied or
// retained internally.
type Field struct {
	Offs OffsT
	Len  OffsT
}

// Set sets f to point to [start:end) inside some buffer.
func (f *Field) Set(start, end int) {
	if end < start {
		panic("httpparse: invalid field range")
	}
	f.Offs = OffsT(start)
	f.Len = OffsT(end - start)
}

// Extend grows f so that it ends at newEnd.
func (f *Field) Extend(newEnd int) {
	if newEnd < int(f.Offs) {
		panic("httpparse: invalid field end offset")
	}
	f.Len = OffsT(newEnd) - f.Offs
}

// Reset clears f back to its zero value.
func (f *Field) Reset() {
	*f = Field{}
}

// Empty returns true if f has zero length.
func (f Field) Empty() bool {
	return f.Len == 0
}

// EndOffs returns the offset one past the end of f.
func (f Field) EndOffs() int {
	return int(f.Offs) + int(f.Len)
}

// Get returns the byte slice f designates inside buf.
func (f Field) Get(buf []byte) []byte {
	return buf[f.Offs : f.Offs+f.Len]
}
