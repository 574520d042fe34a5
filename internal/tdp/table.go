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

import "google.golang.org/protobuf/types/descriptorpb"

// Table is the per-message-type codec descriptor described by spec.md §3:
// a fixed size, a pointer to the message's descriptor metadata, the
// encode-entry array (declaration order), the sparse decode-entry array
// (field-number indexed), and the aux-entry array for message-typed
// fields.
//
// Unlike the teacher (internal/table.Table) and the Rust original, which
// place Encode immediately before the Table value and Decode/Aux
// immediately after it in one contiguous allocation so that aux entries
// can be addressed by a signed offset from the Table's own address (see
// spec.md §9 "Table placement"), a Go Table is an ordinary struct holding
// three slices. Go has no use for the C-style adjacency trick: a slice
// index is already O(1) and type-safe, and nothing in spec.md's testable
// properties (§8) depends on the physical memory layout of the Table
// itself, only on the *logical* contents of Encode/Decode/Aux and on
// Object's own layout invariants (§3's "Layout invariants"). See
// DESIGN.md.
type Table struct {
	// FullName is the message's fully-qualified proto name.
	FullName string
	// Descriptor is the proto metadata this table was built from.
	Descriptor *descriptorpb.DescriptorProto

	// ScalarSize is the size in bytes of Object.Scalar for messages of
	// this type.
	ScalarSize uint16
	// NumHasBits is the number of non-oneof, non-repeated, non-message
	// presence bits this message declares (<= MaxHasBits).
	NumHasBits int
	// NumOneofs is the number of oneof groups this message declares.
	NumOneofs int
	// NumSlots is the length of Object.Slots for messages of this type.
	NumSlots int

	// Encode holds one entry per field, in proto declaration order.
	Encode []EncodeEntry
	// Decode is a sparse array indexed by field number; Decode[0] is
	// always the zero word (field number 0 is reserved), and
	// len(Decode) == maxFieldNumber+1.
	Decode []DecodeEntry
	// Aux holds one entry per message/group-typed field (whether
	// singular or repeated).
	Aux []AuxEntry
}

// NumEncodeEntries and NumDecodeEntries mirror spec.md's named table
// fields for use by the conformance check (testable property §8 item 7).
func (t *Table) NumEncodeEntries() int { return len(t.Encode) }
func (t *Table) NumDecodeEntries() int { return len(t.Decode) }

// Lookup returns the decode entry for the given field number, or
// (0, false) if the number is out of range or unset (field number 0, or
// a field number the table has never seen, both read as the zero word —
// callers distinguish "reserved field number 0" by checking num != 0
// before calling Lookup, per spec.md §4.5).
func (t *Table) Lookup(num uint32) (DecodeEntry, bool) {
	if num == 0 || int(num) >= len(t.Decode) {
		return 0, false
	}
	e := t.Decode[num]
	if e == 0 {
		return 0, false
	}
	return e, true
}

// EncodeEntryAux returns the child table for a message/group-typed encode
// entry.
func (t *Table) EncodeEntryAux(e *EncodeEntry) *Table {
	if e.AuxIndex < 0 || int(e.AuxIndex) >= len(t.Aux) {
		return nil
	}
	return t.Aux[e.AuxIndex].Child
}

// AuxBySlot finds the child table for a message/group-typed field by its
// Slots index, for use on the decode path (DecodeEntry carries a Slots
// offset but no aux index; AuxEntry.SlotIndex is the join key back to
// Table.Aux). Aux arrays are small (one entry per message/group field), so
// a linear scan is the simplest correct approach.
func (t *Table) AuxBySlot(slot uint16) *Table {
	for i := range t.Aux {
		if t.Aux[i].SlotIndex == slot {
			return t.Aux[i].Child
		}
	}
	return nil
}
