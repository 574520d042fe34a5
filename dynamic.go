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

package protocrap

import (
	"math"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protocrap/protocrap/internal/container"
	"github.com/protocrap/protocrap/internal/errs"
	"github.com/protocrap/protocrap/internal/tdp"
)

// DynamicMessageRef is a read-only field view over a Message's
// (Object, Table) pair, per spec.md C7's "Reflection" responsibility and
// §9's "Lifetimes as documentation" design note: in a language without a
// borrow checker, an Object is only ever exposed through a handle (this
// type, or DynamicMessage) that keeps its owning arena reachable, never
// as a bare pointer a caller could retain past the arena's lifetime.
type DynamicMessageRef struct {
	msg *Message
}

// Reflect returns a read-only field view over m.
func (m *Message) Reflect() DynamicMessageRef { return DynamicMessageRef{msg: m} }

// FindFieldDescriptor looks up a field's descriptor by number, per
// spec.md §6's `Reflection.find_field_descriptor`.
func (r DynamicMessageRef) FindFieldDescriptor(number int32) (*descriptorpb.FieldDescriptorProto, bool) {
	for _, fd := range r.msg.tab.Descriptor.GetField() {
		if fd.GetNumber() == number {
			return fd, true
		}
	}
	return nil, false
}

// Has reports whether field number is present, per standard protobuf
// presence semantics: explicit for scalars/bytes/strings, non-nullness
// for messages, non-emptiness for repeated fields, and discriminant
// equality for oneof members.
func (r DynamicMessageRef) Has(number uint32) bool {
	entry, ok := r.msg.tab.Lookup(number)
	if !ok {
		return false
	}
	kind, hasBit, offset := entry.Fields()

	switch {
	case hasBit.IsOneof():
		return r.msg.obj.OneofCase(hasBit.OneofIndex()) == number
	case kind.IsRepeated():
		return r.msg.obj.RepeatedLen(offset) > 0
	case kind.IsMessage():
		return r.msg.obj.GetMessage(offset) != nil
	case hasBit == tdp.NoHasBit:
		return false
	default:
		return r.msg.obj.HasBit(hasBit.PresenceBit())
	}
}

// GetField returns field number's value, per spec.md §6's
// `Reflection.get_field`. The second result is false if the field is
// unknown to this message's Table; an unset-but-known field returns its
// zero Value with a true second result, matching proto3's "always
// readable, defaults to zero value" semantics.
func (r DynamicMessageRef) GetField(number uint32) (Value, bool) {
	entry, ok := r.msg.tab.Lookup(number)
	if !ok {
		return Value{}, false
	}
	kind, _, offset := entry.Fields()
	obj := r.msg.obj

	if kind.IsRepeated() {
		return repeatedValue(obj, kind, offset), true
	}
	if kind.IsMessage() {
		child, ok := obj.Field(offset).Get()
		if !ok {
			return Value{kind: kind}, true
		}
		return Value{kind: kind, message: &Message{obj: child, tab: child.Tab, arena: r.msg.arena}}, true
	}
	if kind == tdp.KindBytes {
		return Value{kind: kind, bytes: obj.BytesSlot(offset).Raw()}, true
	}
	if kind == tdp.KindString {
		s := obj.StringSlot(offset)
		return Value{kind: kind, bytes: s.Raw()}, true
	}

	// Scalar: either plain Object.Scalar storage, or a boxed oneof arm.
	if entry.InSlot() {
		return Value{kind: kind, scalar: scalarSlotBits(obj, kind, offset)}, true
	}
	return Value{kind: kind, scalar: scalarBits(obj, kind, offset)}, true
}

func scalarBits(obj *tdp.Object, kind tdp.FieldKind, offset uint16) uint64 {
	switch tdp.ScalarWidth(kind) {
	case 1:
		if obj.GetBool(offset) {
			return 1
		}
		return 0
	case 4:
		return uint64(obj.GetU32(offset))
	case 8:
		return obj.GetU64(offset)
	default:
		return 0
	}
}

func scalarSlotBits(obj *tdp.Object, kind tdp.FieldKind, offset uint16) uint64 {
	switch tdp.ScalarWidth(kind) {
	case 1:
		if obj.GetOneofScalarBool(offset) {
			return 1
		}
		return 0
	case 4:
		return uint64(obj.GetOneofScalarU32(offset))
	default:
		return obj.GetOneofScalarU64(offset)
	}
}

// repeatedValue builds a Value for a repeated field, per-kind, using each
// container's own Len/At rather than materializing a copy up front.
func repeatedValue(obj *tdp.Object, kind tdp.FieldKind, offset uint16) Value {
	n := obj.RepeatedLen(offset)
	v := Value{kind: kind, repeatedLen: n}

	switch kind {
	case tdp.KindRepeatedBool:
		r := obj.RepeatedBool(offset)
		v.repeatedAt = func(i int) Value {
			b := uint64(0)
			if r.At(i) {
				b = 1
			}
			return Value{kind: tdp.KindBool, scalar: b}
		}
	case tdp.KindRepeatedVarint32, tdp.KindRepeatedInt32, tdp.KindRepeatedVarint32Zigzag:
		r := obj.RepeatedU32(offset)
		v.repeatedAt = func(i int) Value { return Value{kind: kind.Singular(), scalar: uint64(r.At(i))} }
	case tdp.KindRepeatedFixed32:
		r := obj.RepeatedU32(offset)
		v.repeatedAt = func(i int) Value { return Value{kind: tdp.KindFixed32, scalar: uint64(r.At(i))} }
	case tdp.KindRepeatedVarint64, tdp.KindRepeatedVarint64Zigzag, tdp.KindRepeatedFixed64:
		r := obj.RepeatedU64(offset)
		v.repeatedAt = func(i int) Value { return Value{kind: kind.Singular(), scalar: r.At(i)} }
	case tdp.KindRepeatedBytes:
		r := obj.RepeatedBytes(offset)
		v.repeatedAt = func(i int) Value {
			b := r.At(i)
			return Value{kind: tdp.KindBytes, bytes: b.Raw()}
		}
	case tdp.KindRepeatedString:
		r := obj.RepeatedStrings(offset)
		v.repeatedAt = func(i int) Value {
			s := r.At(i)
			return Value{kind: tdp.KindString, bytes: s.Raw()}
		}
	case tdp.KindRepeatedMessage, tdp.KindRepeatedGroup:
		r := obj.RepeatedField(offset)
		v.repeatedAt = func(i int) Value {
			m := r.At(i)
			return Value{kind: kind.Singular(), message: &Message{obj: m, tab: m.Tab}}
		}
	default:
		v.repeatedAt = func(int) Value { return Value{} }
	}
	return v
}

// DynamicMessage is a mutable reflection handle: DynamicMessageRef plus
// the ability to clear the underlying message, per spec.md §4.7's
// DynamicMessage.clear(), and the Set*/Append* field setters below.
type DynamicMessage struct {
	DynamicMessageRef
}

// Dynamic returns a mutable reflection handle over m.
func (m *Message) Dynamic() DynamicMessage {
	return DynamicMessage{DynamicMessageRef: m.Reflect()}
}

// Clear zeroes every field of the underlying message.
func (d DynamicMessage) Clear() { d.msg.Clear() }

// field looks up number's decode entry, returning an InvalidData error if
// number is not a field of this message's Table. Oneof arms are accepted
// like any other field; the setters mark them active via presence.
func (d DynamicMessage) field(number uint32) (tdp.FieldKind, tdp.HasBit, uint16, error) {
	entry, ok := d.msg.tab.Lookup(number)
	if !ok {
		return 0, 0, 0, errs.New(errs.InvalidData, "unknown field number")
	}
	kind, hasBit, offset := entry.Fields()
	return kind, hasBit, offset, nil
}

func (d DynamicMessage) presence(hasBit tdp.HasBit, fieldNum uint32) {
	if hasBit.IsOneof() {
		d.msg.obj.SetOneofCase(hasBit.OneofIndex(), fieldNum)
		return
	}
	if hasBit != tdp.NoHasBit {
		d.msg.obj.SetHasBit(hasBit.PresenceBit())
	}
}

// SetBool sets a KindBool field, singular or a oneof arm.
func (d DynamicMessage) SetBool(number uint32, v bool) error {
	kind, hasBit, offset, err := d.field(number)
	if err != nil {
		return err
	}
	if kind != tdp.KindBool {
		return errs.New(errs.InvalidData, "field is not bool")
	}
	if hasBit.IsOneof() {
		d.msg.obj.SetOneofScalarBool(offset, v)
	} else {
		d.msg.obj.SetBool(offset, v)
	}
	d.presence(hasBit, number)
	return nil
}

// SetInt64 sets any singular integer or float-bit-pattern scalar field
// (KindVarint64/32, KindInt32, the zigzag kinds, and the fixed kinds), or
// one of their oneof arms. Zigzag kinds store their plain decoded value,
// exactly like internal/tdp/vm's decoder does (see reflect.go's Int64):
// zigzag only affects the wire encoding, never Object's in-memory storage.
func (d DynamicMessage) SetInt64(number uint32, v int64) error {
	kind, hasBit, offset, err := d.field(number)
	if err != nil {
		return err
	}
	switch tdp.ScalarWidth(kind) {
	case 4:
		if hasBit.IsOneof() {
			d.msg.obj.SetOneofScalarU32(offset, uint32(v))
		} else {
			d.msg.obj.SetU32(offset, uint32(v))
		}
	case 8:
		if hasBit.IsOneof() {
			d.msg.obj.SetOneofScalarU64(offset, uint64(v))
		} else {
			d.msg.obj.SetU64(offset, uint64(v))
		}
	default:
		return errs.New(errs.InvalidData, "field is not an integer or fixed-width scalar")
	}
	d.presence(hasBit, number)
	return nil
}

// SetFloat32 sets a KindFixed32 field carrying a float32's bit pattern.
func (d DynamicMessage) SetFloat32(number uint32, v float32) error {
	return d.SetInt64(number, int64(int32(math.Float32bits(v))))
}

// SetFloat64 sets a KindFixed64 field carrying a float64's bit pattern.
func (d DynamicMessage) SetFloat64(number uint32, v float64) error {
	return d.SetInt64(number, int64(math.Float64bits(v)))
}

// SetBytes sets a KindBytes field's payload.
func (d DynamicMessage) SetBytes(number uint32, v []byte) error {
	kind, hasBit, offset, err := d.field(number)
	if err != nil {
		return err
	}
	if kind != tdp.KindBytes {
		return errs.New(errs.InvalidData, "field is not bytes")
	}
	*d.msg.obj.BytesSlot(offset) = container.NewBytes(v)
	d.presence(hasBit, number)
	return nil
}

// SetString sets a KindString field's payload, rejecting invalid UTF-8 the
// same way internal/tdp/vm's decoder does.
func (d DynamicMessage) SetString(number uint32, v string) error {
	kind, hasBit, offset, err := d.field(number)
	if err != nil {
		return err
	}
	if kind != tdp.KindString {
		return errs.New(errs.InvalidData, "field is not string")
	}
	if err := container.ValidateUTF8([]byte(v)); err != nil {
		return err
	}
	*d.msg.obj.StringSlot(offset) = container.NewString([]byte(v))
	d.presence(hasBit, number)
	return nil
}

// SetMessage attaches sub as number's singular sub-message value. sub must
// already be allocated on the same arena as d's message.
func (d DynamicMessage) SetMessage(number uint32, sub *Message) error {
	kind, _, offset, err := d.field(number)
	if err != nil {
		return err
	}
	if !kind.IsMessage() || kind.IsRepeated() {
		return errs.New(errs.InvalidData, "field is not a singular message")
	}
	d.msg.obj.Field(offset).Set(sub.obj)
	return nil
}

// AppendBool appends an element to a KindRepeatedBool field.
func (d DynamicMessage) AppendBool(number uint32, v bool) error {
	kind, _, offset, err := d.field(number)
	if err != nil {
		return err
	}
	if kind != tdp.KindRepeatedBool {
		return errs.New(errs.InvalidData, "field is not repeated bool")
	}
	d.msg.obj.RepeatedBool(offset).Push(d.msg.arena, v)
	return nil
}

// AppendInt64 appends an element to any repeated integer or fixed-width
// scalar field, by the same plain-storage convention as SetInt64.
func (d DynamicMessage) AppendInt64(number uint32, v int64) error {
	kind, _, offset, err := d.field(number)
	if err != nil {
		return err
	}
	switch kind {
	case tdp.KindRepeatedVarint32, tdp.KindRepeatedInt32, tdp.KindRepeatedVarint32Zigzag, tdp.KindRepeatedFixed32:
		d.msg.obj.RepeatedU32(offset).Push(d.msg.arena, uint32(v))
	case tdp.KindRepeatedVarint64, tdp.KindRepeatedVarint64Zigzag, tdp.KindRepeatedFixed64:
		d.msg.obj.RepeatedU64(offset).Push(d.msg.arena, uint64(v))
	default:
		return errs.New(errs.InvalidData, "field is not a repeated integer or fixed-width scalar")
	}
	return nil
}

// AppendBytes appends an element to a KindRepeatedBytes field.
func (d DynamicMessage) AppendBytes(number uint32, v []byte) error {
	kind, _, offset, err := d.field(number)
	if err != nil {
		return err
	}
	if kind != tdp.KindRepeatedBytes {
		return errs.New(errs.InvalidData, "field is not repeated bytes")
	}
	d.msg.obj.RepeatedBytes(offset).Push(d.msg.arena, container.NewBytes(v))
	return nil
}

// AppendString appends an element to a KindRepeatedString field, rejecting
// invalid UTF-8.
func (d DynamicMessage) AppendString(number uint32, v string) error {
	kind, _, offset, err := d.field(number)
	if err != nil {
		return err
	}
	if kind != tdp.KindRepeatedString {
		return errs.New(errs.InvalidData, "field is not repeated string")
	}
	if err := container.ValidateUTF8([]byte(v)); err != nil {
		return err
	}
	d.msg.obj.RepeatedStrings(offset).Push(d.msg.arena, container.NewString([]byte(v)))
	return nil
}

// AppendMessage appends sub as the next element of a repeated message
// field. sub must already be allocated on the same arena as d's message.
func (d DynamicMessage) AppendMessage(number uint32, sub *Message) error {
	kind, _, offset, err := d.field(number)
	if err != nil {
		return err
	}
	if !kind.IsMessage() || !kind.IsRepeated() {
		return errs.New(errs.InvalidData, "field is not a repeated message")
	}
	d.msg.obj.RepeatedField(offset).Append(d.msg.arena, sub.obj)
	return nil
}
