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

// Package tdp ("table-driven protocol") implements the data-driven object
// model and table layout described by spec.md §3 and §4.4: Table, Object,
// FieldKind, and the encode/decode/aux entry arrays a single universal
// codec (internal/tdp/vm) interprets at runtime.
//
// This is the Go analogue of the teacher's internal/tdp package, but
// dispatches on a closed FieldKind enumeration with an ordinary switch
// (internal/tdp/vm) instead of the teacher's function-pointer "thunk" JIT
// (internal/tdp/thunks, internal/tdp/compiler/linker): spec.md §4.5
// describes the decoder as consulting "the current message's table" and
// dispatching "on FieldKind", which is a closed-enum interpreter, not a
// per-schema code generator. See DESIGN.md for why the thunk/linker
// machinery was not carried forward.
package tdp

import "fmt"

// FieldKind is the closed enumeration of wire+storage categories a field
// can belong to, per spec.md's glossary entry for FieldKind.
type FieldKind uint8

const (
	KindInvalid FieldKind = iota

	// Scalar kinds.
	KindVarint64       // uint64/int64, stored as-is
	KindVarint32       // uint32, stored as-is (wire is still a 64-bit varint)
	KindInt32          // int32 with sign-extension semantics on the wire
	KindVarint64Zigzag // sint64
	KindVarint32Zigzag // sint32
	KindBool
	KindFixed64
	KindFixed32
	KindBytes
	KindString
	KindMessage
	KindGroup
	KindUnknown // placeholder kind for unrecognized/unknown fields

	// Repeated primitive kinds: packable, i.e. the decoder accepts both a
	// single length-delimited packed block and repeated unpacked elements
	// for these, per spec.md §4.5 "packed-vs-unpacked compatibility".
	KindRepeatedVarint64
	KindRepeatedVarint32
	KindRepeatedInt32
	KindRepeatedVarint64Zigzag
	KindRepeatedVarint32Zigzag
	KindRepeatedBool
	KindRepeatedFixed64
	KindRepeatedFixed32

	// Repeated length-delimited kinds: never packed.
	KindRepeatedMessage
	KindRepeatedGroup
	KindRepeatedBytes
	KindRepeatedString
)

func (k FieldKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVarint64:
		return "varint64"
	case KindVarint32:
		return "varint32"
	case KindInt32:
		return "int32"
	case KindVarint64Zigzag:
		return "sint64"
	case KindVarint32Zigzag:
		return "sint32"
	case KindBool:
		return "bool"
	case KindFixed64:
		return "fixed64"
	case KindFixed32:
		return "fixed32"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindMessage:
		return "message"
	case KindGroup:
		return "group"
	case KindUnknown:
		return "unknown"
	case KindRepeatedVarint64:
		return "repeated varint64"
	case KindRepeatedVarint32:
		return "repeated varint32"
	case KindRepeatedInt32:
		return "repeated int32"
	case KindRepeatedVarint64Zigzag:
		return "repeated sint64"
	case KindRepeatedVarint32Zigzag:
		return "repeated sint32"
	case KindRepeatedBool:
		return "repeated bool"
	case KindRepeatedFixed64:
		return "repeated fixed64"
	case KindRepeatedFixed32:
		return "repeated fixed32"
	case KindRepeatedMessage:
		return "repeated message"
	case KindRepeatedGroup:
		return "repeated group"
	case KindRepeatedBytes:
		return "repeated bytes"
	case KindRepeatedString:
		return "repeated string"
	default:
		return fmt.Sprintf("FieldKind(%d)", uint8(k))
	}
}

// IsRepeated reports whether k is one of the Repeated* variants.
func (k FieldKind) IsRepeated() bool {
	return k >= KindRepeatedVarint64
}

// IsPackable reports whether k is a repeated primitive kind that may be
// encoded either packed (a single length-delimited block) or unpacked (one
// tag per element), per spec.md's packed/unpacked compatibility rule.
func (k FieldKind) IsPackable() bool {
	return k >= KindRepeatedVarint64 && k <= KindRepeatedFixed32
}

// IsLengthDelimited reports whether the *unpacked, singular* wire
// representation of k uses wire type 2 (length-delimited).
func (k FieldKind) IsLengthDelimited() bool {
	switch k {
	case KindBytes, KindString, KindMessage,
		KindRepeatedBytes, KindRepeatedString, KindRepeatedMessage:
		return true
	default:
		return false
	}
}

// IsMessage reports whether k stores Object pointers (singular or repeated
// sub-messages). Group kinds are handled separately by the VM since their
// end is marked by an end-group tag, not a length prefix, but they too
// store Object pointers.
func (k FieldKind) IsMessage() bool {
	switch k {
	case KindMessage, KindGroup, KindRepeatedMessage, KindRepeatedGroup:
		return true
	default:
		return false
	}
}

// Singular returns the non-repeated kind corresponding to a repeated
// primitive kind, used when the decoder appends one unpacked element at a
// time.
func (k FieldKind) Singular() FieldKind {
	switch k {
	case KindRepeatedVarint64:
		return KindVarint64
	case KindRepeatedVarint32:
		return KindVarint32
	case KindRepeatedInt32:
		return KindInt32
	case KindRepeatedVarint64Zigzag:
		return KindVarint64Zigzag
	case KindRepeatedVarint32Zigzag:
		return KindVarint32Zigzag
	case KindRepeatedBool:
		return KindBool
	case KindRepeatedFixed64:
		return KindFixed64
	case KindRepeatedFixed32:
		return KindFixed32
	case KindRepeatedMessage:
		return KindMessage
	case KindRepeatedGroup:
		return KindGroup
	case KindRepeatedBytes:
		return KindBytes
	case KindRepeatedString:
		return KindString
	default:
		return k
	}
}

// WireType returns the wire type used for a single, unpacked instance of
// this kind on the wire.
func (k FieldKind) WireType() WireType {
	switch k.Singular() {
	case KindVarint64, KindVarint32, KindInt32, KindVarint64Zigzag, KindVarint32Zigzag, KindBool:
		return WireVarint
	case KindFixed64:
		return WireFixed64
	case KindFixed32:
		return WireFixed32
	case KindBytes, KindString, KindMessage:
		return WireLengthDelimited
	case KindGroup:
		return WireStartGroup
	default:
		return WireVarint
	}
}

// WireType mirrors wire.WireType; duplicated here (as a defined type, not
// an alias) so that this package does not need to import internal/wire
// just for six constants used purely for table metadata, avoiding a
// dependency edge the VM package does not otherwise need from this file.
type WireType uint8

const (
	WireVarint          WireType = 0
	WireFixed64         WireType = 1
	WireLengthDelimited WireType = 2
	WireStartGroup      WireType = 3
	WireEndGroup        WireType = 4
	WireFixed32         WireType = 5
)
