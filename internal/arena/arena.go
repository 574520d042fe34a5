// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package arena provides a bump allocator whose lifetime is the unit of
// memory reclamation, per spec.md C2.
//
// Unlike the teacher's unsafe.Pointer-based arena (which exists to defeat
// Go's GC write barriers for a hand-rolled bump allocator over raw memory),
// this arena bumps over plain []byte blocks. Objects (internal/tdp.Object)
// never store raw pointer bytes inside arena memory, so there is no need to
// play games with chunk headers to keep the GC honest — see
// internal/tdp/object.go for how message-typed and pointer-bearing fields
// are kept in an ordinary, GC-visible Go slice instead. What the arena
// still buys us, faithfully to spec.md, is: few, large, doubling
// allocations instead of one alloc per field/container, and O(1) bulk
// "free" by dropping block references instead of freeing one-by-one.
package arena

import (
	"fmt"

	"github.com/protocrap/protocrap/internal/debug"
	"github.com/protocrap/protocrap/internal/errs"
)

const (
	// BlockMin is the size of the first block an arena allocates.
	BlockMin = 8 * 1024
	// BlockMax is the largest block an arena will grow to in one step.
	BlockMax = 1 << 20
	// DedicatedThreshold is the minimum amount of space that must remain
	// in the current block before an oversized allocation is given its
	// own dedicated block (preserving the current block for future small
	// allocations) instead of abandoning the current block outright.
	DedicatedThreshold = 512
	// align is the alignment every allocation is rounded up to, matching
	// the object-model invariant that Objects are 8-byte aligned.
	align = 8
)

// Arena is a bump allocator tied to a single backing allocator (Go's
// runtime allocator, via make([]byte, n)), or to a single caller-owned
// buffer.
//
// A zero Arena is not ready to use; construct one with New or FromSlice.
type Arena struct {
	cur      []byte // remaining capacity of the current block
	blocks   [][]byte
	external bool // true if backed by a caller-owned buffer (FromSlice)
	lastSize int
}

// New returns an empty arena backed by the Go runtime allocator.
func New() *Arena {
	return &Arena{lastSize: BlockMin / 2}
}

// FromSlice constructs an arena that bump-allocates directly out of buf.
// No calls are made to the backing allocator, and Free never releases
// buf: the caller owns buf and its lifetime.
func FromSlice(buf []byte) *Arena {
	return &Arena{cur: buf, external: true}
}

// AllocRaw allocates size bytes of zeroed, 8-byte-aligned memory.
//
// Returns an *errs.Error of kind ArenaAllocationFailed if size cannot be
// satisfied (only possible for an external arena, or on pathological sizes
// that would overflow block-size arithmetic).
func (a *Arena) AllocRaw(size int) ([]byte, error) {
	if size < 0 {
		return nil, errs.New(errs.ArenaAllocationFailed, fmt.Sprintf("negative allocation size %d", size))
	}
	rounded := (size + align - 1) &^ (align - 1)

	if size <= len(a.cur) {
		p := a.cur[:size:size]
		clear(p)
		a.cur = a.cur[min(rounded, len(a.cur)):]
		debug.Logf(fmt.Sprintf("%p", a), "alloc", "%d bytes (fast path)", size)
		return p, nil
	}

	if a.external {
		return nil, errs.New(errs.ArenaAllocationFailed,
			fmt.Sprintf("external arena exhausted: need %d bytes, have %d", rounded, len(a.cur)))
	}

	// Oversized allocation: if what remains in the current block is
	// still worth keeping around, give this allocation its own block and
	// leave the current block untouched for future small allocations.
	if len(a.cur) >= DedicatedThreshold && rounded > len(a.cur) {
		block := make([]byte, rounded)
		a.blocks = append(a.blocks, block)
		debug.Logf(fmt.Sprintf("%p", a), "alloc", "%d bytes (dedicated block)", size)
		return block[:size:size], nil
	}

	a.grow(rounded)
	p := a.cur[:size:size]
	a.cur = a.cur[rounded:]
	debug.Logf(fmt.Sprintf("%p", a), "alloc", "%d bytes (after grow)", size)
	return p, nil
}

// grow allocates a fresh current block of at least size bytes, doubling
// from the previous block size (clamped to [BlockMin, BlockMax]).
func (a *Arena) grow(size int) {
	next := a.lastSize * 2
	next = max(next, BlockMin, size)
	next = min(next, max(BlockMax, size))

	block := make([]byte, next)
	a.blocks = append(a.blocks, block)
	a.cur = block
	a.lastSize = next
	debug.Logf(fmt.Sprintf("%p", a), "grow", "new block of %d bytes", next)
}

// Free resets the arena to an empty state. Memory allocated from a
// non-external arena becomes eligible for garbage collection once nothing
// else references it; an external arena's buffer is left untouched (the
// caller owns it).
func (a *Arena) Free() {
	a.cur = nil
	a.blocks = nil
	a.lastSize = BlockMin / 2
}

// Stats reports the number of blocks currently held by this arena, for
// tests and debugging.
func (a *Arena) Stats() (blocks int, currentFree int) {
	return len(a.blocks), len(a.cur)
}
