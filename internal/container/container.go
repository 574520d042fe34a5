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

// Package container implements the growable, arena-tied value containers
// described by spec.md C3: RepeatedField[T], Bytes and String. There is no
// separate RawVec type; RepeatedField's backing slice carries both the
// pointer/capacity pair and the length.
//
// The teacher's equivalent (internal/arena.Slice[T]) bump-allocates the
// backing array directly out of arena memory using unsafe.Pointer, which is
// only sound because the teacher's arena chunks are specially shaped so the
// GC can still trace through them (see internal/arena/arena.go's doc
// comment in the teacher). Since T here can be a pointer type (repeated
// message fields store []*tdp.Object), and this port deliberately does not
// reproduce that unsafe chunk-header trick (see internal/arena/arena.go),
// RepeatedField backs its storage with an ordinary Go slice instead. The
// arena parameter threaded through Reserve/Append/etc. is kept because it is
// part of the spec'd contract (containers are conceptually arena-owned:
// they are never individually freed, only dropped in bulk with their
// owning arena) even though, in this Go rendition, the arena itself does
// not perform the underlying make([]T, n) call.
package container

import (
	"unicode/utf8"

	"github.com/protocrap/protocrap/internal/arena"
	"github.com/protocrap/protocrap/internal/errs"
)

// RepeatedField is a growable, arena-tied sequence. Elements are never
// individually destructed; the whole backing array becomes collectible
// only when nothing references it, typically when the owning arena is
// dropped.
type RepeatedField[T any] struct {
	data   []T
	static bool // true if backed by a non-owning FromStatic array
}

// FromStatic constructs a RepeatedField that stashes a non-owning view of
// a static array, per spec.md's "from_static" constructor: static
// initializers (e.g. a generated type's zero-value field tables) must not
// allocate.
func FromStatic[T any](values []T) RepeatedField[T] {
	return RepeatedField[T]{data: values, static: true}
}

// Len returns the number of elements.
func (r *RepeatedField[T]) Len() int { return len(r.data) }

// Raw returns the live elements. Callers must not retain the slice past
// the next mutating call, since Reserve may reallocate.
func (r *RepeatedField[T]) Raw() []T { return r.data }

// At returns the element at index i.
func (r *RepeatedField[T]) At(i int) T { return r.data[i] }

// Set overwrites the element at index i.
func (r *RepeatedField[T]) Set(i int, v T) { r.data[i] = v }

func (r *RepeatedField[T]) assertMutable() {
	if r.static {
		panic("protocrap: attempted to mutate a static (from_static) RepeatedField")
	}
}

// Reserve ensures the backing array can hold at least n more elements
// without reallocating, growing geometrically (first allocation sized to
// the request, subsequent growth doubles).
func (r *RepeatedField[T]) Reserve(_ *arena.Arena, n int) {
	r.assertMutable()
	need := len(r.data) + n
	if cap(r.data) >= need {
		return
	}
	newCap := cap(r.data)
	if newCap == 0 {
		newCap = n
	} else {
		for newCap < need {
			newCap *= 2
		}
	}
	fresh := make([]T, len(r.data), newCap)
	copy(fresh, r.data)
	r.data = fresh
}

// Push appends a single element, growing if necessary.
func (r *RepeatedField[T]) Push(a *arena.Arena, v T) {
	r.assertMutable()
	r.Reserve(a, 1)
	r.data = append(r.data, v)
}

// Append appends every element of vs.
func (r *RepeatedField[T]) Append(a *arena.Arena, vs []T) {
	r.assertMutable()
	r.Reserve(a, len(vs))
	r.data = append(r.data, vs...)
}

// Assign replaces the contents wholesale.
func (r *RepeatedField[T]) Assign(a *arena.Arena, vs []T) {
	r.assertMutable()
	r.data = r.data[:0]
	r.Append(a, vs)
}

// Pop removes and returns the last element.
func (r *RepeatedField[T]) Pop() (v T, ok bool) {
	r.assertMutable()
	if len(r.data) == 0 {
		return v, false
	}
	v = r.data[len(r.data)-1]
	r.data = r.data[:len(r.data)-1]
	return v, true
}

// Insert inserts v at index i, shifting subsequent elements right.
func (r *RepeatedField[T]) Insert(a *arena.Arena, i int, v T) {
	r.assertMutable()
	r.Reserve(a, 1)
	r.data = append(r.data, v)
	copy(r.data[i+1:], r.data[i:len(r.data)-1])
	r.data[i] = v
}

// Remove removes the element at index i, shifting subsequent elements left.
func (r *RepeatedField[T]) Remove(i int) {
	r.assertMutable()
	copy(r.data[i:], r.data[i+1:])
	r.data = r.data[:len(r.data)-1]
}

// Clear sets the length to zero. It does not shrink the backing array and
// does not destruct elements (there is nothing to destruct: elements are
// never individually freed).
func (r *RepeatedField[T]) Clear() {
	r.assertMutable()
	r.data = r.data[:0]
}

// Bytes is a RepeatedField of bytes, used for the `bytes` wire type and as
// String's backing storage.
type Bytes = RepeatedField[byte]

// NewBytes builds a Bytes container from a byte slice view (no copy).
func NewBytes(b []byte) Bytes {
	return RepeatedField[byte]{data: b}
}

// String wraps a Bytes buffer with a UTF-8 invariant: by the time a decoded
// value is exposed as a String, its bytes have already been validated (see
// spec.md §4.3/§4.5 — validation happens at decode time, not at read time).
type String struct {
	Bytes
}

// NewString builds a String from an already-validated byte slice.
func NewString(b []byte) String {
	return String{Bytes: NewBytes(b)}
}

// Value returns the string's contents. This does not re-validate UTF-8:
// by construction, every String this codec produces was validated at
// decode time.
func (s *String) Value() string {
	return string(s.Raw())
}

// ValidateUTF8 checks the not-yet-trusted byte slice produced by a
// streaming append and reports whether it is well-formed UTF-8. Called by
// the decoder once a string value is complete (its last byte has been
// read), never on a partial value at the end of a chunk.
func ValidateUTF8(b []byte) error {
	if !utf8.Valid(b) {
		return errs.New(errs.InvalidData, "invalid UTF-8 in string field")
	}
	return nil
}
