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

// Package descpool implements C8: building Tables at runtime from a
// google.protobuf.FileDescriptorSet, per spec.md §6's DescriptorPool
// surface (new/add_file/create_message/get_table) and §3's Table layout.
//
// Unlike the teacher's internal/tdp/compiler, which lowers a descriptor
// into a linked machine-code-like byte buffer via a symbol table and
// relocation list (because its Table/Type values are placed in one
// contiguous unsafe-addressed allocation, see internal/tdp/table.go's
// doc comment), this pool builds ordinary *tdp.Table values directly:
// Go pointers are already stable addresses, so a cyclic message
// reference (a message that (transitively) contains itself) is handled
// by inserting a pointer into the memo map before recursing into a
// message's fields, exactly as the teacher's compiler.recurse does for
// its own map[protoreflect.MessageDescriptor]*ir, but without any
// symbol/relocation machinery, since nothing here needs to reference a
// child table from the middle of another table's raw byte buffer.
package descpool

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protocrap/protocrap/internal/arena"
	"github.com/protocrap/protocrap/internal/errs"
	"github.com/protocrap/protocrap/internal/tdp"
	"github.com/protocrap/protocrap/internal/wire"
)

// ErrObjectTooLarge reports that a message's scalar storage region would
// exceed tdp.MaxObjectSize, per spec.md §9 item 2's inferred "detect the
// offset ceiling before allocating" design note.
var ErrObjectTooLarge = errs.New(errs.InvalidData, "message scalar storage exceeds 65535 bytes")

// Pool is a DescriptorPool, per spec.md §6: it accumulates
// FileDescriptorProtos and lazily builds (and memoizes) Tables for the
// message types they declare.
type Pool struct {
	files  *protoregistry.Files
	tables map[protoreflect.FullName]*tdp.Table
}

// New returns an empty Pool, per spec.md's DescriptorPool.new.
func New() *Pool {
	return &Pool{
		files:  new(protoregistry.Files),
		tables: make(map[protoreflect.FullName]*tdp.Table),
	}
}

// AddFile registers a FileDescriptorProto with the pool, per spec.md's
// DescriptorPool.add_file. Files must be added in dependency order (a
// file's imports must already be registered), matching
// google.golang.org/protobuf/reflect/protodesc's own requirement.
func (p *Pool) AddFile(fd *descriptorpb.FileDescriptorProto) error {
	file, err := protodesc.NewFile(fd, p.files)
	if err != nil {
		return errs.Wrap(errs.InvalidData, "invalid file descriptor", err)
	}
	if err := p.files.RegisterFile(file); err != nil {
		return errs.Wrap(errs.InvalidData, "duplicate file descriptor", err)
	}
	return nil
}

// AddFileSet registers every file in a FileDescriptorSet, in the order
// given (callers are responsible for supplying a dependency-respecting
// order, as for AddFile).
func (p *Pool) AddFileSet(set *descriptorpb.FileDescriptorSet) error {
	for _, fd := range set.GetFile() {
		if err := p.AddFile(fd); err != nil {
			return err
		}
	}
	return nil
}

// AddFileSetBytes unmarshals and registers a serialized FileDescriptorSet,
// per spec.md §6's "Descriptor input" clause.
func (p *Pool) AddFileSetBytes(b []byte) error {
	set := new(descriptorpb.FileDescriptorSet)
	if err := proto.Unmarshal(b, set); err != nil {
		return errs.Wrap(errs.InvalidData, "malformed FileDescriptorSet", err)
	}
	return p.AddFileSet(set)
}

// GetTable returns the Table for a message type, building it (and every
// table it transitively references) on first request, per spec.md's
// DescriptorPool.get_table.
func (p *Pool) GetTable(fullName protoreflect.FullName) (*tdp.Table, error) {
	if tab, ok := p.tables[fullName]; ok {
		return tab, nil
	}

	desc, err := p.files.FindDescriptorByName(fullName)
	if err != nil {
		return nil, errs.Wrap(errs.MessageNotFound, string(fullName), err)
	}
	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, errs.New(errs.MessageNotFound, fmt.Sprintf("%s is not a message type", fullName))
	}
	return p.getTableFor(md)
}

// getTableFor is the recursive worker behind GetTable: it inserts a table
// stub into p.tables before laying it out, so that a message type
// referencing itself (directly or through a cycle of other messages)
// finds a stable pointer instead of recursing forever.
func (p *Pool) getTableFor(md protoreflect.MessageDescriptor) (*tdp.Table, error) {
	fullName := md.FullName()
	if tab, ok := p.tables[fullName]; ok {
		return tab, nil
	}

	tab := &tdp.Table{
		FullName:   string(fullName),
		Descriptor: protodesc.ToDescriptorProto(md),
	}
	p.tables[fullName] = tab

	if err := p.layout(tab, md); err != nil {
		return nil, err
	}
	return tab, nil
}

// CreateMessage allocates a zero-initialized Object for fullName, per
// spec.md's DescriptorPool.create_message.
func (p *Pool) CreateMessage(fullName protoreflect.FullName, a *arena.Arena) (*tdp.Object, error) {
	tab, err := p.GetTable(fullName)
	if err != nil {
		return nil, err
	}
	return tdp.Create(tab, a)
}

// fieldPlan is the per-field bookkeeping accumulated during layout,
// before the final Encode/Decode/Aux arrays are assembled.
type fieldPlan struct {
	fd       protoreflect.FieldDescriptor
	kind     tdp.FieldKind
	hasBit   tdp.HasBit
	inSlot   bool
	offset   uint16
	auxIndex int32
}

// layout fills in tab's Encode/Decode/Aux arrays and size fields from md,
// per spec.md §3's Table/Object layout description. This is the two-pass
// table builder: pass one walks md's fields once, classifying each one's
// FieldKind and assigning it a presence bit, a Scalar byte offset, or a
// Slots index; pass two (interleaved per-field, since each field's own
// storage assignment does not depend on any other field's) resolves
// message/group-typed fields' child tables via getTableFor, which is
// where cross-message recursion (and cycles) happen.
func (p *Pool) layout(tab *tdp.Table, md protoreflect.MessageDescriptor) error {
	oneofIndex := make(map[protoreflect.Name]int)
	numOneofs := 0
	for i := 0; i < md.Oneofs().Len(); i++ {
		od := md.Oneofs().Get(i)
		if od.IsSynthetic() {
			continue
		}
		oneofIndex[od.Name()] = numOneofs
		numOneofs++
	}

	fields := md.Fields()
	plans := make([]fieldPlan, fields.Len())

	var scalarOffset uint16
	var nextHasBit int
	var nextSlot uint16
	var maxFieldNumber int
	var aux []tdp.AuxEntry

	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if int(fd.Number()) > maxFieldNumber {
			maxFieldNumber = int(fd.Number())
		}
		if fd.Number() > tdp.MaxFieldNumber {
			return errs.New(errs.InvalidData, fmt.Sprintf(
				"%s: field number %d exceeds maximum of %d", md.FullName(), fd.Number(), tdp.MaxFieldNumber))
		}

		kind := fieldKind(fd)
		plan := fieldPlan{fd: fd, kind: kind, auxIndex: -1}

		realOneof := fd.ContainingOneof() != nil && !fd.ContainingOneof().IsSynthetic()
		switch {
		case realOneof:
			idx := oneofIndex[fd.ContainingOneof().Name()]
			plan.hasBit = tdp.OneofFlag | tdp.HasBit(idx)
			plan.inSlot = true
			plan.offset = nextSlot
			nextSlot++
		case kind.IsRepeated() || kind.IsMessage():
			plan.hasBit = tdp.NoHasBit
			plan.inSlot = true
			plan.offset = nextSlot
			nextSlot++
		case kind == tdp.KindBytes || kind == tdp.KindString:
			if nextHasBit >= tdp.MaxHasBits {
				return errs.New(errs.InvalidData, fmt.Sprintf("%s: too many presence bits", md.FullName()))
			}
			plan.hasBit = tdp.HasBit(nextHasBit)
			nextHasBit++
			plan.inSlot = true
			plan.offset = nextSlot
			nextSlot++
		default: // non-oneof singular scalar
			if nextHasBit >= tdp.MaxHasBits {
				return errs.New(errs.InvalidData, fmt.Sprintf("%s: too many presence bits", md.FullName()))
			}
			plan.hasBit = tdp.HasBit(nextHasBit)
			nextHasBit++
			plan.inSlot = false

			width := tdp.ScalarWidth(kind)
			align := tdp.ScalarAlign(kind)
			scalarOffset = alignUp(scalarOffset, align)
			plan.offset = scalarOffset
			scalarOffset += width
		}

		if kind.IsMessage() {
			childMD := fd.Message()
			child, err := p.getTableFor(childMD)
			if err != nil {
				return err
			}
			plan.auxIndex = int32(len(aux))
			aux = append(aux, tdp.AuxEntry{SlotIndex: plan.offset, Child: child})
		}

		plans[i] = plan
	}

	if int(scalarOffset) > tdp.MaxObjectSize {
		return ErrObjectTooLarge
	}

	decode := make([]tdp.DecodeEntry, maxFieldNumber+1)
	encode := make([]tdp.EncodeEntry, fields.Len())
	for i, plan := range plans {
		decode[plan.fd.Number()] = tdp.PackDecodeEntry(plan.kind, plan.hasBit, plan.offset)
		encode[i] = tdp.EncodeEntry{
			Kind:        plan.kind,
			HasBit:      plan.hasBit,
			InSlot:      plan.inSlot,
			Offset:      plan.offset,
			AuxIndex:    plan.auxIndex,
			FieldNumber: uint32(plan.fd.Number()),
			EncodedTag:  encodedTag(plan.fd, plan.kind),
		}
	}

	tab.ScalarSize = scalarOffset
	tab.NumHasBits = nextHasBit
	tab.NumOneofs = numOneofs
	tab.NumSlots = int(nextSlot)
	tab.Encode = encode
	tab.Decode = decode
	tab.Aux = aux
	return nil
}

func alignUp(off uint16, align uint16) uint16 {
	if align <= 1 {
		return off
	}
	rem := off % align
	if rem == 0 {
		return off
	}
	return off + (align - rem)
}

// fieldKind classifies a field descriptor into this codec's closed
// FieldKind enum, per spec.md's glossary entry for FieldKind. Map fields
// have no dedicated kind: spec.md §9's open question #2 keeps the source
// behavior of decoding them as repeated synthetic MapEntry messages (no
// dictionary sugar), and protoreflect already models a map field's value
// type as fd.Message() pointing at that synthetic entry type, so treating
// it as an ordinary repeated message field is sufficient.
func fieldKind(fd protoreflect.FieldDescriptor) tdp.FieldKind {
	repeated := fd.Cardinality() == protoreflect.Repeated

	var singular tdp.FieldKind
	switch fd.Kind() {
	case protoreflect.BoolKind:
		singular = tdp.KindBool
	case protoreflect.Int32Kind, protoreflect.EnumKind:
		singular = tdp.KindInt32
	case protoreflect.Uint32Kind:
		singular = tdp.KindVarint32
	case protoreflect.Int64Kind, protoreflect.Uint64Kind:
		singular = tdp.KindVarint64
	case protoreflect.Sint32Kind:
		singular = tdp.KindVarint32Zigzag
	case protoreflect.Sint64Kind:
		singular = tdp.KindVarint64Zigzag
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		singular = tdp.KindFixed32
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		singular = tdp.KindFixed64
	case protoreflect.BytesKind:
		singular = tdp.KindBytes
	case protoreflect.StringKind:
		singular = tdp.KindString
	case protoreflect.MessageKind:
		singular = tdp.KindMessage
	case protoreflect.GroupKind:
		singular = tdp.KindGroup
	default:
		singular = tdp.KindUnknown
	}

	if !repeated {
		return singular
	}
	switch singular {
	case tdp.KindVarint64:
		return tdp.KindRepeatedVarint64
	case tdp.KindVarint32:
		return tdp.KindRepeatedVarint32
	case tdp.KindInt32:
		return tdp.KindRepeatedInt32
	case tdp.KindVarint64Zigzag:
		return tdp.KindRepeatedVarint64Zigzag
	case tdp.KindVarint32Zigzag:
		return tdp.KindRepeatedVarint32Zigzag
	case tdp.KindBool:
		return tdp.KindRepeatedBool
	case tdp.KindFixed64:
		return tdp.KindRepeatedFixed64
	case tdp.KindFixed32:
		return tdp.KindRepeatedFixed32
	case tdp.KindMessage:
		return tdp.KindRepeatedMessage
	case tdp.KindGroup:
		return tdp.KindRepeatedGroup
	case tdp.KindBytes:
		return tdp.KindRepeatedBytes
	case tdp.KindString:
		return tdp.KindRepeatedString
	default:
		return tdp.KindUnknown
	}
}

// encodedTag precomputes the wire tag the encoder will emit for a field,
// per spec.md §3's "encoded_tag is the precomputed 1-2 byte varint wire
// tag". Packable repeated fields get the length-delimited tag for their
// packed form, since internal/tdp/vm's encoder always emits repeated
// primitive fields packed (see DESIGN.md's Open Question on proto2
// unpacked-by-default).
func encodedTag(fd protoreflect.FieldDescriptor, kind tdp.FieldKind) uint64 {
	num := uint32(fd.Number())
	switch {
	case kind.IsPackable():
		return wire.EncodeTag(num, wire.LengthDelimited)
	case kind == tdp.KindGroup || kind == tdp.KindRepeatedGroup:
		return wire.EncodeTag(num, wire.StartGroup)
	case kind.IsLengthDelimited():
		return wire.EncodeTag(num, wire.LengthDelimited)
	default:
		return wire.EncodeTag(num, wire.WireType(kind.WireType()))
	}
}
