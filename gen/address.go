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

// Package gen is a hand-written stand-in for what an external code
// generator would emit: one *tdp.Table per message type, laid out exactly
// the way internal/descpool lays out a dynamic one, but fixed at compile
// time instead of built from a FileDescriptorSet at runtime. It exists to
// exercise the static-table path of the codec (spec.md testable property
// #7: a statically built table and a descpool-built table for the same
// message shape must behave identically), since this module carries no
// actual protoc plugin.
package gen

import (
	"github.com/protocrap/protocrap"
	"github.com/protocrap/protocrap/internal/tdp"
	"github.com/protocrap/protocrap/internal/wire"
)

// Address mirrors a tiny proto message:
//
//	message Address {
//	  string city = 1;
//	  string zip_code = 2;
//	}
var addressTable = &tdp.Table{
	FullName:   "gen.example.Address",
	ScalarSize: 0,
	NumHasBits: 2,
	NumSlots:   2,
	Encode: []tdp.EncodeEntry{
		{Kind: tdp.KindString, HasBit: 0, InSlot: true, Offset: 0, AuxIndex: -1, FieldNumber: 1, EncodedTag: wire.EncodeTag(1, wire.LengthDelimited)},
		{Kind: tdp.KindString, HasBit: 1, InSlot: true, Offset: 1, AuxIndex: -1, FieldNumber: 2, EncodedTag: wire.EncodeTag(2, wire.LengthDelimited)},
	},
	Decode: decodeTable(3, []decodeField{
		{num: 1, kind: tdp.KindString, hasBit: 0, offset: 0},
		{num: 2, kind: tdp.KindString, hasBit: 1, offset: 1},
	}),
}

// AddressType is the MessageType for gen.example.Address.
var AddressType = protocrap.NewStaticMessageType(addressTable)

// AddressTable exposes the raw compiled Table backing AddressType, for
// conformance checks that compare this static table's shape against one
// internal/descpool builds at runtime from an equivalent descriptor
// (spec.md testable property #7).
func AddressTable() *tdp.Table { return addressTable }

// decodeField is the hand-authoring-time description of one decode entry;
// decodeTable packs a list of them into the sparse, field-number-indexed
// array internal/tdp/vm expects, the same shape internal/descpool builds
// at runtime from a descriptor instead of from this literal list.
type decodeField struct {
	num    uint32
	kind   tdp.FieldKind
	hasBit tdp.HasBit
	offset uint16
}

func decodeTable(size uint32, fields []decodeField) []tdp.DecodeEntry {
	d := make([]tdp.DecodeEntry, size)
	for _, f := range fields {
		d[f.num] = tdp.PackDecodeEntry(f.kind, f.hasBit, f.offset)
	}
	return d
}
