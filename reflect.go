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

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protocrap/protocrap/internal/tdp"
)

// Value is C7's dynamic field view, per spec.md §9's "tagged-sum decode
// states" design note generalized to reflection: a closed set of concrete
// shapes (scalar, bytes/string, message, repeated) carried as one Go
// struct with a FieldKind discriminant, the same pattern internal/tdp/vm
// uses for decode continuations. Unlike the teacher's reflect.go, which
// returns bare protoreflect.Value directly off unsafe-addressed storage,
// this Value is our own small wrapper that *converts to* protoreflect.Value
// (ToProtoreflect) so callers get ecosystem interop (pretty-printers, CEL,
// etc., per SPEC_FULL.md's domain-stack section) without this package
// depending on protoreflect for its own internal field storage.
type Value struct {
	kind tdp.FieldKind

	scalar  uint64 // raw bits: bool 0/1, varint/zigzag already decoded, float bits
	bytes   []byte // for Bytes/String kinds
	message *Message

	repeatedLen int
	repeatedAt  func(i int) Value
}

// Kind reports the field kind this value was read from.
func (v Value) Kind() tdp.FieldKind { return v.kind }

// IsRepeated reports whether this value is a repeated field's view.
func (v Value) IsRepeated() bool { return v.kind.IsRepeated() }

// Len returns the number of elements of a repeated value (0 for a
// singular one).
func (v Value) Len() int { return v.repeatedLen }

// At returns the i'th element of a repeated value.
func (v Value) At(i int) Value { return v.repeatedAt(i) }

// Bool returns a KindBool value.
func (v Value) Bool() bool { return v.scalar != 0 }

// Int64 returns a signed integer value, sign-extending KindInt32's and
// KindVarint32Zigzag's 32-bit range. Zigzag kinds are stored already
// zigzag-decoded (internal/tdp/vm's decoder applies ZigZagDecode32/64 once,
// at store time, the same way it stores every other scalar pre-decoded), so
// no further zigzag decoding happens here.
func (v Value) Int64() int64 {
	switch v.kind.Singular() {
	case tdp.KindInt32, tdp.KindVarint32Zigzag:
		return int64(int32(v.scalar))
	default:
		return int64(v.scalar)
	}
}

// Uint64 returns the raw unsigned payload of a varint/fixed value.
func (v Value) Uint64() uint64 { return v.scalar }

// Float32 reinterprets a KindFixed32 value's bits as a float32.
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.scalar)) }

// Float64 reinterprets a KindFixed64 value's bits as a float64.
func (v Value) Float64() float64 { return math.Float64frombits(v.scalar) }

// Bytes returns a KindBytes value's payload.
func (v Value) Bytes() []byte { return v.bytes }

// String returns a KindString value's payload.
func (v Value) String() string { return string(v.bytes) }

// Message returns a KindMessage or KindGroup value's sub-message.
func (v Value) Message() *Message { return v.message }

// ToProtoreflect converts this Value to a protoreflect.Value, per
// SPEC_FULL.md's domain-stack section: dynamic messages produced by this
// codec should compose with other protoreflect-based tooling even though
// this package does not implement JSON/text serialization itself.
//
// protoKind identifies the precise protobuf field kind (distinguishing,
// e.g., int32 from sint32, or float from fixed32, which this package's own
// FieldKind collapses together) so the right protoreflect constructor is
// used; callers with a protoreflect.FieldDescriptor in hand should pass
// fd.Kind().
func (v Value) ToProtoreflect(protoKind protoreflect.Kind) protoreflect.Value {
	if v.IsRepeated() {
		list := make([]protoreflect.Value, v.Len())
		for i := range list {
			list[i] = v.At(i).ToProtoreflect(protoKind)
		}
		return protoreflect.ValueOf(protoreflectList(list))
	}

	switch protoKind {
	case protoreflect.BoolKind:
		return protoreflect.ValueOfBool(v.Bool())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return protoreflect.ValueOfInt32(int32(v.Int64()))
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return protoreflect.ValueOfInt64(v.Int64())
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return protoreflect.ValueOfUint32(uint32(v.Uint64()))
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return protoreflect.ValueOfUint64(v.Uint64())
	case protoreflect.FloatKind:
		return protoreflect.ValueOfFloat32(v.Float32())
	case protoreflect.DoubleKind:
		return protoreflect.ValueOfFloat64(v.Float64())
	case protoreflect.EnumKind:
		return protoreflect.ValueOfEnum(protoreflect.EnumNumber(v.Int64()))
	case protoreflect.BytesKind:
		return protoreflect.ValueOfBytes(v.Bytes())
	case protoreflect.StringKind:
		return protoreflect.ValueOfString(v.String())
	default:
		return protoreflect.Value{}
	}
}

// protoreflectList is a minimal, read-only protoreflect.List over a
// pre-materialized slice of protoreflect.Values, sufficient for exposing
// a repeated Value to protoreflect-consuming tooling.
type protoreflectList []protoreflect.Value

func (l protoreflectList) Len() int                          { return len(l) }
func (l protoreflectList) Get(i int) protoreflect.Value       { return l[i] }
func (l protoreflectList) Set(int, protoreflect.Value)        { panic("protocrap: list is read-only") }
func (l protoreflectList) Append(protoreflect.Value)          { panic("protocrap: list is read-only") }
func (l protoreflectList) AppendMutable() protoreflect.Value  { panic("protocrap: list is read-only") }
func (l protoreflectList) Truncate(int)                       { panic("protocrap: list is read-only") }
func (l protoreflectList) NewElement() protoreflect.Value {
	return protoreflect.Value{}
}
func (l protoreflectList) IsValid() bool { return true }
