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

// HasBit encodes either a presence-bit index or a oneof membership, per
// spec.md §3: "has_bit's top bit distinguishes two encodings: 0x80 | k
// means the field participates in oneof #k ... otherwise the value is a
// presence-bit index".
type HasBit uint8

// OneofFlag is the bit that marks a HasBit value as naming a oneof index
// rather than a presence-bit index.
const OneofFlag HasBit = 0x80

// MaxHasBits is the largest number of non-oneof, non-repeated,
// non-message presence bits a single message may have (spec.md §6).
const MaxHasBits = 128

// NoHasBit marks a field that has no presence bit at all (repeated and
// message-typed fields track presence by length/nullness instead).
const NoHasBit HasBit = 0xff

// IsOneof reports whether h names a oneof arm.
func (h HasBit) IsOneof() bool { return h&OneofFlag != 0 && h != NoHasBit }

// OneofIndex returns the oneof index named by h. Only valid if IsOneof().
func (h HasBit) OneofIndex() int { return int(h &^ OneofFlag) }

// PresenceBit returns the presence-bit index named by h. Only valid if
// !IsOneof() && h != NoHasBit.
func (h HasBit) PresenceBit() int { return int(h) }

// MaxFieldNumber is the largest field number this codec supports; it is
// chosen so that every tag fits in two bytes, per spec.md §3/§6.
const MaxFieldNumber = 2047

// MaxObjectSize is the largest an Object's scalar storage region may be,
// so that every encode-entry offset fits in 16 bits, per spec.md §3/§6.
const MaxObjectSize = 65535

// EncodeEntry describes how to emit one field, in proto declaration order.
// One EncodeEntry exists per field of a message type; the encoder walks
// Table.Encode in reverse, per spec.md §4.6.
type EncodeEntry struct {
	Kind FieldKind

	// HasBit selects how presence is determined: a presence-bit index, a
	// oneof membership, or NoHasBit for repeated/message-always-present
	// kinds (whose presence is determined by length/nullness instead).
	HasBit HasBit

	// InSlot reports whether this field's storage lives in Object.Slots
	// (true: bytes, string, message, repeated-anything, and every oneof
	// arm regardless of underlying kind) or in Object.Scalar (false: a
	// non-oneof scalar field).
	InSlot bool

	// Offset is a byte offset into Object.Scalar when !InSlot, or an
	// index into Object.Slots when InSlot.
	Offset uint16

	// AuxIndex indexes into Table.Aux for message/group-typed fields
	// (singular or repeated); -1 otherwise.
	AuxIndex int32

	// FieldNumber and EncodedTag are precomputed so the encoder never has
	// to re-derive them from the descriptor at encode time.
	FieldNumber uint32
	EncodedTag  uint64
}

// DecodeEntry packs {kind:8, has_bit:8, offset:16} into a single 32-bit
// word, per spec.md §3's exact bit layout. DecodeEntries is a sparse array
// indexed directly by field number (index 0 is always the zero word,
// since field number 0 is reserved).
type DecodeEntry uint32

// PackDecodeEntry builds a DecodeEntry word from its three logical fields.
func PackDecodeEntry(kind FieldKind, hasBit HasBit, offset uint16) DecodeEntry {
	return DecodeEntry(uint32(kind)<<24 | uint32(hasBit)<<16 | uint32(offset))
}

// Fields unpacks the three fields (kind, has-bit, offset) of a DecodeEntry
// word.
func (d DecodeEntry) Fields() (kind FieldKind, hasBit HasBit, offset uint16) {
	return FieldKind(d >> 24), HasBit((d >> 16) & 0xff), uint16(d & 0xffff)
}

// InSlot reports whether this decode entry's offset addresses
// Object.Slots (true) or Object.Scalar (false): every length-delimited,
// message/group, repeated, or oneof-member field lives in Slots.
func (d DecodeEntry) InSlot() bool {
	kind, hasBit, _ := d.Fields()
	return hasBit.IsOneof() || kind.IsRepeated() || kind.IsMessage() ||
		kind == KindBytes || kind == KindString
}

// AuxEntry links a message/group-typed field's storage to its child
// Table, per spec.md §3's aux_entries description.
type AuxEntry struct {
	// SlotIndex duplicates the owning field's Slots index, so reflection
	// code can walk Table.Aux without cross-referencing Encode/Decode.
	SlotIndex uint16
	Child     *Table
}
