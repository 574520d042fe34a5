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

package gen

import (
	"github.com/protocrap/protocrap"
	"github.com/protocrap/protocrap/internal/tdp"
	"github.com/protocrap/protocrap/internal/wire"
)

// Person mirrors:
//
//	message Person {
//	  int32 id = 1;
//	  string name = 2;
//	  bool active = 3;
//	  repeated string tags = 4;
//	  repeated int32 scores = 5;
//	  Address address = 6;
//	  repeated Address known_addresses = 7;
//	  oneof contact_method {
//	    string phone = 8;
//	    string fax = 9;
//	  }
//	}
//
// Field layout (Object.Scalar holds only the non-oneof singular scalars,
// id and active; everything else lives in Object.Slots):
//
//	scalar offset 0: id      (4 bytes, KindInt32)
//	scalar offset 4: active  (1 byte,  KindBool)
//	slot 0: name             (string, has-bit 1)
//	slot 1: tags             (repeated string)
//	slot 2: scores           (repeated int32)
//	slot 3: address          (message, aux 0)
//	slot 4: known_addresses  (repeated message, aux 1)
//	slot 5: phone            (oneof #0 arm)
//	slot 6: fax              (oneof #0 arm)
var personTable = &tdp.Table{
	FullName:   "gen.example.Person",
	ScalarSize: 5, // 4 bytes id + 1 byte active, no padding needed between them
	NumHasBits: 3, // active, plus a presence bit each for id and name
	NumOneofs:  1,
	NumSlots:   7,
	Encode: []tdp.EncodeEntry{
		{Kind: tdp.KindInt32, HasBit: 0, InSlot: false, Offset: 0, AuxIndex: -1, FieldNumber: 1, EncodedTag: wire.EncodeTag(1, wire.Varint)},
		{Kind: tdp.KindString, HasBit: 1, InSlot: true, Offset: 0, AuxIndex: -1, FieldNumber: 2, EncodedTag: wire.EncodeTag(2, wire.LengthDelimited)},
		{Kind: tdp.KindBool, HasBit: 2, InSlot: false, Offset: 4, AuxIndex: -1, FieldNumber: 3, EncodedTag: wire.EncodeTag(3, wire.Varint)},
		{Kind: tdp.KindRepeatedString, HasBit: tdp.NoHasBit, InSlot: true, Offset: 1, AuxIndex: -1, FieldNumber: 4, EncodedTag: wire.EncodeTag(4, wire.LengthDelimited)},
		{Kind: tdp.KindRepeatedInt32, HasBit: tdp.NoHasBit, InSlot: true, Offset: 2, AuxIndex: -1, FieldNumber: 5, EncodedTag: wire.EncodeTag(5, wire.LengthDelimited)},
		{Kind: tdp.KindMessage, HasBit: tdp.NoHasBit, InSlot: true, Offset: 3, AuxIndex: 0, FieldNumber: 6, EncodedTag: wire.EncodeTag(6, wire.LengthDelimited)},
		{Kind: tdp.KindRepeatedMessage, HasBit: tdp.NoHasBit, InSlot: true, Offset: 4, AuxIndex: 1, FieldNumber: 7, EncodedTag: wire.EncodeTag(7, wire.LengthDelimited)},
		{Kind: tdp.KindString, HasBit: tdp.OneofFlag | 0, InSlot: true, Offset: 5, AuxIndex: -1, FieldNumber: 8, EncodedTag: wire.EncodeTag(8, wire.LengthDelimited)},
		{Kind: tdp.KindString, HasBit: tdp.OneofFlag | 0, InSlot: true, Offset: 6, AuxIndex: -1, FieldNumber: 9, EncodedTag: wire.EncodeTag(9, wire.LengthDelimited)},
	},
	Decode: decodeTable(10, []decodeField{
		{num: 1, kind: tdp.KindInt32, hasBit: 0, offset: 0},
		{num: 2, kind: tdp.KindString, hasBit: 1, offset: 0},
		{num: 3, kind: tdp.KindBool, hasBit: 2, offset: 4},
		{num: 4, kind: tdp.KindRepeatedString, hasBit: tdp.NoHasBit, offset: 1},
		{num: 5, kind: tdp.KindRepeatedInt32, hasBit: tdp.NoHasBit, offset: 2},
		{num: 6, kind: tdp.KindMessage, hasBit: tdp.NoHasBit, offset: 3},
		{num: 7, kind: tdp.KindRepeatedMessage, hasBit: tdp.NoHasBit, offset: 4},
		{num: 8, kind: tdp.KindString, hasBit: tdp.OneofFlag | 0, offset: 5},
		{num: 9, kind: tdp.KindString, hasBit: tdp.OneofFlag | 0, offset: 6},
	}),
	Aux: []tdp.AuxEntry{
		{SlotIndex: 3, Child: addressTable},
		{SlotIndex: 4, Child: addressTable},
	},
}

// PersonType is the MessageType for gen.example.Person.
var PersonType = protocrap.NewStaticMessageType(personTable)

// PersonTable exposes the raw compiled Table backing PersonType, for
// conformance checks that compare this static table's shape against one
// internal/descpool builds at runtime from an equivalent descriptor
// (spec.md testable property #7).
func PersonTable() *tdp.Table { return personTable }
