// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// maxChunkSize bounds the hex chunk-size accumulator to the signed 63-bit
// ceiling, matching the source implementation's overflow check (it never
// lets a chunk size reach a value that would be negative once stored in
// a signed 64-bit counter).
const maxChunkSize = int64((uint64(1) << 63) - 1)
