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

package tdp

import (
	"github.com/protocrap/protocrap/internal/arena"
	"github.com/protocrap/protocrap/internal/container"
)

// Object is an untyped, table-addressed message value, per spec.md §3.
//
// The teacher and the Rust original represent an Object as a single
// contiguous, zero-initialized memory block, with every field living at a
// byte offset computed at table-build time, and message/bytes/repeated
// fields storing raw pointers *inside* that block. This port splits that
// single block into four parallel, independently-addressed regions:
//
//   - HasBits / OneofDisc: the spec's "metadata block" (presence bits and
//     oneof discriminants), kept as plain []uint32 instead of packed into
//     the same contiguous block as scalar storage.
//   - Scalar: byte storage for non-oneof scalar fields (varint/fixed/bool),
//     addressed by EncodeEntry/DecodeEntry.Offset exactly as spec.md
//     describes.
//   - Slots: one entry per bytes/string/message/repeated/oneof-member
//     field, holding the actual Go value (*container.Bytes,
//     *container.String, *Object, container.RepeatedField[T], ...).
//
// This split exists because Go's garbage collector must be able to trace
// pointers; the teacher's single-block design only works because its
// arena chunks are deliberately shaped so the GC can trace through them
// (see internal/arena/arena.go's doc comment on both sides). Slots is an
// ordinary Go slice of `any`, which the GC already knows how to trace, so
// pointer-bearing field storage is never smuggled through raw bytes. See
// DESIGN.md for the full rationale.
type Object struct {
	Tab       *Table
	HasBits   []uint32 // len = ceil(Tab.NumHasBits/32)
	OneofDisc []uint32 // len = Tab.NumOneofs; element = active field number, 0 = none
	Scalar    []byte   // len = Tab.ScalarSize
	Slots     []any    // len = Tab.NumSlots
	static    bool     // true if built by StaticObject; mutators panic
}

// StaticObject builds a read-only Object directly from caller-supplied
// storage, without going through an Arena, per the original implementation's
// `TypedMessage::from_static` (base.rs): a message default embedded in a
// generated binary's rodata is never arena-allocated, and must never be
// mutated in place. Every mutating method on the returned Object panics.
func StaticObject(tab *Table, hasBits []uint32, oneofDisc []uint32, scalar []byte, slots []any) *Object {
	return &Object{
		Tab:       tab,
		HasBits:   hasBits,
		OneofDisc: oneofDisc,
		Scalar:    scalar,
		Slots:     slots,
		static:    true,
	}
}

func (o *Object) assertMutable() {
	if o.static {
		panic("protocrap: attempted to mutate a static (from_static) Object")
	}
}

// Create allocates and zero-initializes an Object for the given table,
// per spec.md §4.8's create_message and §3's Lifecycle section: an Object
// is never individually destroyed, only reclaimed in bulk when its arena
// is freed.
//
// The arena parameter is accepted (and, for the Scalar region, used) for
// API parity with spec.md's arena-owned object model; HasBits and
// OneofDisc are plain make([]uint32, n) slices, and Slots is backed by a
// plain make([]any, n) for the reasons described in Object's doc
// comment.
func Create(tab *Table, a *arena.Arena) (*Object, error) {
	hasBitWords := (tab.NumHasBits + 31) / 32

	scalar, err := a.AllocRaw(int(tab.ScalarSize))
	if err != nil {
		return nil, err
	}

	return &Object{
		Tab:       tab,
		HasBits:   make([]uint32, hasBitWords),
		OneofDisc: make([]uint32, tab.NumOneofs),
		Scalar:    scalar,
		Slots:     make([]any, tab.NumSlots),
	}, nil
}

// Clear zeroes every field of o in place, per spec.md §4.7's
// DynamicMessage.clear().
func (o *Object) Clear() {
	o.assertMutable()
	for i := range o.HasBits {
		o.HasBits[i] = 0
	}
	for i := range o.OneofDisc {
		o.OneofDisc[i] = 0
	}
	for i := range o.Scalar {
		o.Scalar[i] = 0
	}
	for i := range o.Slots {
		o.Slots[i] = nil
	}
}

// HasBit reports whether presence bit i is set.
func (o *Object) HasBit(i int) bool {
	return o.HasBits[i/32]&(1<<uint(i%32)) != 0
}

// SetHasBit sets presence bit i.
func (o *Object) SetHasBit(i int) {
	o.assertMutable()
	o.HasBits[i/32] |= 1 << uint(i%32)
}

// ClearHasBit clears presence bit i.
func (o *Object) ClearHasBit(i int) {
	o.assertMutable()
	o.HasBits[i/32] &^= 1 << uint(i%32)
}

// OneofCase returns the field number of the active arm of oneof i, or 0 if
// none is set.
func (o *Object) OneofCase(i int) uint32 {
	return o.OneofDisc[i]
}

// SetOneofCase marks field number as the active arm of oneof i. Per
// spec.md §5's ordering guarantees, the last write wins: any
// previously-active arm's storage is left in Slots (the arena reclaims it
// in bulk; see spec.md §9 "Oneof arm resource reclaim").
func (o *Object) SetOneofCase(i int, fieldNumber uint32) {
	o.assertMutable()
	o.OneofDisc[i] = fieldNumber
}

// ClearOneof clears oneof i, leaving no arm active.
func (o *Object) ClearOneof(i int) {
	o.assertMutable()
	o.OneofDisc[i] = 0
}

// Scalar accessors. These operate on raw little-endian bytes at a byte
// offset into o.Scalar; the caller (the VM, or generated-style accessors)
// is responsible for knowing the field's width from its FieldKind.

func (o *Object) GetU32(offset uint16) uint32 {
	b := o.Scalar[offset : offset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (o *Object) SetU32(offset uint16, v uint32) {
	o.assertMutable()
	b := o.Scalar[offset : offset+4]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func (o *Object) GetU64(offset uint16) uint64 {
	b := o.Scalar[offset : offset+8]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func (o *Object) SetU64(offset uint16, v uint64) {
	o.assertMutable()
	b := o.Scalar[offset : offset+8]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

func (o *Object) GetBool(offset uint16) bool {
	return o.Scalar[offset] != 0
}

func (o *Object) SetBool(offset uint16, v bool) {
	o.assertMutable()
	if v {
		o.Scalar[offset] = 1
	} else {
		o.Scalar[offset] = 0
	}
}

// ScalarWidth returns the byte width a scalar kind occupies in Object.Scalar.
func ScalarWidth(k FieldKind) uint16 {
	switch k {
	case KindBool:
		return 1
	case KindFixed32, KindVarint32, KindInt32, KindVarint32Zigzag:
		return 4
	case KindFixed64, KindVarint64, KindVarint64Zigzag:
		return 8
	default:
		return 0
	}
}

// ScalarAlign returns the alignment a scalar kind requires, matching its
// width (spec.md §3: "Scalars occupy their natural size and alignment").
func ScalarAlign(k FieldKind) uint16 {
	w := ScalarWidth(k)
	if w == 0 {
		return 1
	}
	return w
}

// Slot accessors. Every bytes/string/message/repeated/oneof-member field
// lives in Object.Slots; these helpers lazily materialize the concrete
// container the first time a slot is touched, and hand back a pointer so
// the VM can mutate it in place across multiple Resume calls without
// re-storing into Slots each time.

func repeatedSlot[T any](o *Object, idx uint16) *container.RepeatedField[T] {
	if o.Slots[idx] == nil {
		o.assertMutable()
		o.Slots[idx] = &container.RepeatedField[T]{}
	}
	return o.Slots[idx].(*container.RepeatedField[T])
}

func (o *Object) RepeatedU64(idx uint16) *container.RepeatedField[uint64] {
	return repeatedSlot[uint64](o, idx)
}

func (o *Object) RepeatedU32(idx uint16) *container.RepeatedField[uint32] {
	return repeatedSlot[uint32](o, idx)
}

func (o *Object) RepeatedBool(idx uint16) *container.RepeatedField[bool] {
	return repeatedSlot[bool](o, idx)
}

func (o *Object) RepeatedBytes(idx uint16) *container.RepeatedField[container.Bytes] {
	return repeatedSlot[container.Bytes](o, idx)
}

func (o *Object) RepeatedStrings(idx uint16) *container.RepeatedField[container.String] {
	return repeatedSlot[container.String](o, idx)
}

func (o *Object) RepeatedMessages(idx uint16) *container.RepeatedField[*Object] {
	return repeatedSlot[*Object](o, idx)
}

// RepeatedLen reports the length of whatever repeated container lives at
// idx, without materializing one if the slot is still nil (unlike the
// Repeated* accessors above, which are meant for callers about to read or
// write elements). Used by the encoder's presence checks, which must not
// mutate an Object it is only reading.
func (o *Object) RepeatedLen(idx uint16) int {
	switch v := o.Slots[idx].(type) {
	case *container.RepeatedField[uint64]:
		return v.Len()
	case *container.RepeatedField[uint32]:
		return v.Len()
	case *container.RepeatedField[bool]:
		return v.Len()
	case *container.RepeatedField[container.Bytes]:
		return v.Len()
	case *container.RepeatedField[container.String]:
		return v.Len()
	case *container.RepeatedField[*Object]:
		return v.Len()
	default:
		return 0
	}
}

// BytesSlot returns the Bytes container at idx, materializing an empty one
// on first touch.
func (o *Object) BytesSlot(idx uint16) *container.Bytes {
	if o.Slots[idx] == nil {
		o.assertMutable()
		o.Slots[idx] = &container.Bytes{}
	}
	return o.Slots[idx].(*container.Bytes)
}

// StringSlot returns the String container at idx, materializing an empty
// one on first touch.
func (o *Object) StringSlot(idx uint16) *container.String {
	if o.Slots[idx] == nil {
		o.assertMutable()
		o.Slots[idx] = &container.String{}
	}
	return o.Slots[idx].(*container.String)
}

// GetMessage returns the sub-message stored at idx, or nil if unset.
func (o *Object) GetMessage(idx uint16) *Object {
	if o.Slots[idx] == nil {
		return nil
	}
	return o.Slots[idx].(*Object)
}

// SetMessage stores a sub-message pointer at idx.
func (o *Object) SetMessage(idx uint16, m *Object) {
	o.assertMutable()
	o.Slots[idx] = m
}

// Oneof scalar arms are boxed directly into Slots (there is no scalar
// region shared across arms, unlike the teacher's union-sized storage; see
// DESIGN.md).

func (o *Object) SetOneofScalarU64(idx uint16, v uint64) { o.assertMutable(); o.Slots[idx] = v }
func (o *Object) GetOneofScalarU64(idx uint16) uint64 {
	v, _ := o.Slots[idx].(uint64)
	return v
}

func (o *Object) SetOneofScalarU32(idx uint16, v uint32) { o.assertMutable(); o.Slots[idx] = v }
func (o *Object) GetOneofScalarU32(idx uint16) uint32 {
	v, _ := o.Slots[idx].(uint32)
	return v
}

func (o *Object) SetOneofScalarBool(idx uint16, v bool) { o.assertMutable(); o.Slots[idx] = v }
func (o *Object) GetOneofScalarBool(idx uint16) bool {
	v, _ := o.Slots[idx].(bool)
	return v
}
