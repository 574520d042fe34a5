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

package gen_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protocrap/protocrap"
	"github.com/protocrap/protocrap/gen"
	"github.com/protocrap/protocrap/internal/descpool"
	"github.com/protocrap/protocrap/internal/tdp"
)

func strp(s string) *string { return &s }
func i32p(n int32) *int32   { return &n }

func label(l descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto_Label { return &l }
func kind(k descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type     { return &k }

// genExampleFileDescriptor builds, by hand, the descriptor for the exact
// message shapes gen/address.go and gen/person.go hand-compile statically:
// the same field numbers, kinds, and oneof grouping, so that
// internal/descpool's layout algorithm can be run against it and its
// output compared directly against the static tables.
func genExampleFileDescriptor() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    strp("gen_example.proto"),
		Package: strp("gen.example"),
		Syntax:  strp("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strp("Address"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strp("city"), Number: i32p(1), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_STRING)},
					{Name: strp("zip_code"), Number: i32p(2), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_STRING)},
				},
			},
			{
				Name: strp("Person"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strp("id"), Number: i32p(1), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_INT32)},
					{Name: strp("name"), Number: i32p(2), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_STRING)},
					{Name: strp("active"), Number: i32p(3), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_BOOL)},
					{Name: strp("tags"), Number: i32p(4), Label: label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_STRING)},
					{Name: strp("scores"), Number: i32p(5), Label: label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_INT32)},
					{Name: strp("address"), Number: i32p(6), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), TypeName: strp(".gen.example.Address")},
					{Name: strp("known_addresses"), Number: i32p(7), Label: label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), TypeName: strp(".gen.example.Address")},
					{Name: strp("phone"), Number: i32p(8), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_STRING), OneofIndex: i32p(0)},
					{Name: strp("fax"), Number: i32p(9), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_STRING), OneofIndex: i32p(0)},
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{
					{Name: strp("contact_method")},
				},
			},
		},
	}
}

// tablesEquivalent asserts that a (pool-built) and b (statically compiled)
// describe the same message shape: same size fields, same entry-by-entry
// Encode/Decode arrays, and recursively equivalent aux child tables. This
// is spec.md testable property #7 — a static table and a descpool-built
// table for the same message must be interchangeable. visited guards
// against revisiting a table already compared, for message graphs with
// cycles.
func tablesEquivalent(t *testing.T, a, b *tdp.Table, visited map[string]bool) {
	t.Helper()
	if visited[a.FullName] {
		return
	}
	visited[a.FullName] = true

	require.Equal(t, a.FullName, b.FullName)
	require.Equal(t, a.ScalarSize, b.ScalarSize, "%s: ScalarSize", a.FullName)
	require.Equal(t, a.NumHasBits, b.NumHasBits, "%s: NumHasBits", a.FullName)
	require.Equal(t, a.NumOneofs, b.NumOneofs, "%s: NumOneofs", a.FullName)
	require.Equal(t, a.NumSlots, b.NumSlots, "%s: NumSlots", a.FullName)
	require.Equal(t, a.NumEncodeEntries(), b.NumEncodeEntries(), "%s: NumEncodeEntries", a.FullName)
	require.Equal(t, a.NumDecodeEntries(), b.NumDecodeEntries(), "%s: NumDecodeEntries", a.FullName)

	for i := range a.Decode {
		require.Equal(t, a.Decode[i], b.Decode[i], "%s: decode entry %d", a.FullName, i)
	}

	for i := range a.Encode {
		ea, eb := &a.Encode[i], &b.Encode[i]
		require.Equal(t, ea.Kind, eb.Kind, "%s: encode[%d].Kind", a.FullName, i)
		require.Equal(t, ea.HasBit, eb.HasBit, "%s: encode[%d].HasBit", a.FullName, i)
		require.Equal(t, ea.InSlot, eb.InSlot, "%s: encode[%d].InSlot", a.FullName, i)
		require.Equal(t, ea.Offset, eb.Offset, "%s: encode[%d].Offset", a.FullName, i)
		require.Equal(t, ea.FieldNumber, eb.FieldNumber, "%s: encode[%d].FieldNumber", a.FullName, i)
		require.Equal(t, ea.EncodedTag, eb.EncodedTag, "%s: encode[%d].EncodedTag", a.FullName, i)

		childA, childB := a.EncodeEntryAux(ea), b.EncodeEntryAux(eb)
		require.Equal(t, childA == nil, childB == nil, "%s: encode[%d] aux presence", a.FullName, i)
		if childA != nil {
			tablesEquivalent(t, childA, childB, visited)
		}
	}
}

func newPerson(t *testing.T, a *protocrap.Arena) (*protocrap.Message, protocrap.DynamicMessage) {
	t.Helper()
	msg, err := gen.PersonType.New(a)
	require.NoError(t, err)
	return msg, msg.Dynamic()
}

func newAddress(t *testing.T, a *protocrap.Arena) (*protocrap.Message, protocrap.DynamicMessage) {
	t.Helper()
	msg, err := gen.AddressType.New(a)
	require.NoError(t, err)
	return msg, msg.Dynamic()
}

func TestStaticTableRoundTrip(t *testing.T) {
	t.Parallel()
	a := protocrap.NewArena()

	homeMsg, home := newAddress(t, a)
	require.NoError(t, home.SetString(1, "Springfield"))
	require.NoError(t, home.SetString(2, "00000"))

	officeMsg, office := newAddress(t, a)
	require.NoError(t, office.SetString(1, "Shelbyville"))
	require.NoError(t, office.SetString(2, "11111"))

	personMsg, person := newPerson(t, a)
	require.NoError(t, person.SetInt64(1, 42))
	require.NoError(t, person.SetString(2, "Homer"))
	require.NoError(t, person.SetBool(3, true))
	require.NoError(t, person.AppendString(4, "tag-a"))
	require.NoError(t, person.AppendString(4, "tag-b"))
	require.NoError(t, person.AppendInt64(5, 10))
	require.NoError(t, person.AppendInt64(5, -10))
	require.NoError(t, person.SetMessage(6, homeMsg))
	require.NoError(t, person.AppendMessage(7, homeMsg))
	require.NoError(t, person.AppendMessage(7, officeMsg))
	require.NoError(t, person.SetString(8, "555-1234")) // phone, oneof arm

	encoded, err := personMsg.EncodeGrowable()
	require.NoError(t, err)

	b := protocrap.NewArena()
	decoded, err := protocrap.Decode(b, gen.PersonType, encoded)
	require.NoError(t, err)

	view := decoded.Reflect()
	require.True(t, view.Has(1))
	idVal, ok := view.GetField(1)
	require.True(t, ok)
	require.Equal(t, int64(42), idVal.Int64())

	nameVal, ok := view.GetField(2)
	require.True(t, ok)
	require.Equal(t, "Homer", nameVal.String())

	activeVal, ok := view.GetField(3)
	require.True(t, ok)
	require.True(t, activeVal.Bool())

	tagsVal, ok := view.GetField(4)
	require.True(t, ok)
	require.Equal(t, 2, tagsVal.Len())
	require.Equal(t, "tag-a", tagsVal.At(0).String())
	require.Equal(t, "tag-b", tagsVal.At(1).String())

	scoresVal, ok := view.GetField(5)
	require.True(t, ok)
	require.Equal(t, 2, scoresVal.Len())
	require.Equal(t, int64(10), scoresVal.At(0).Int64())
	require.Equal(t, int64(-10), scoresVal.At(1).Int64())

	addrVal, ok := view.GetField(6)
	require.True(t, ok)
	require.NotNil(t, addrVal.Message())
	addrView := addrVal.Message().Reflect()
	cityVal, ok := addrView.GetField(1)
	require.True(t, ok)
	require.Equal(t, "Springfield", cityVal.String())

	knownVal, ok := view.GetField(7)
	require.True(t, ok)
	require.Equal(t, 2, knownVal.Len())
	officeCity, ok := knownVal.At(1).Message().Reflect().GetField(1)
	require.True(t, ok)
	require.Equal(t, "Shelbyville", officeCity.String())

	phoneVal, ok := view.GetField(8)
	require.True(t, ok)
	require.Equal(t, "555-1234", phoneVal.String())

	_, ok = view.GetField(9)
	require.True(t, ok, "fax is known to the table even though it was never set")
	require.False(t, view.Has(9), "fax was never the active oneof arm")
}

func TestStaticTableClear(t *testing.T) {
	t.Parallel()
	a := protocrap.NewArena()
	personMsg, person := newPerson(t, a)
	require.NoError(t, person.SetInt64(1, 1))
	require.True(t, personMsg.Reflect().Has(1))

	person.Clear()
	require.False(t, personMsg.Reflect().Has(1))
}

func TestStaticTableFullNames(t *testing.T) {
	t.Parallel()
	require.Equal(t, "gen.example.Address", gen.AddressType.FullName())
	require.Equal(t, "gen.example.Person", gen.PersonType.FullName())
}

// TestStaticAndDynamicTablesAgree builds gen.example.Address and
// gen.example.Person through internal/descpool from a hand-built
// descriptor describing the exact same message shapes gen/address.go and
// gen/person.go hand-compile statically, then compares the resulting
// Tables entry by entry: this is spec.md testable property #7, a static
// table and a pool-built table for the same message must be
// interchangeable.
func TestStaticAndDynamicTablesAgree(t *testing.T) {
	t.Parallel()
	p := descpool.New()
	require.NoError(t, p.AddFile(genExampleFileDescriptor()))

	personTab, err := p.GetTable("gen.example.Person")
	require.NoError(t, err)
	addressTab, err := p.GetTable("gen.example.Address")
	require.NoError(t, err)

	tablesEquivalent(t, personTab, gen.PersonTable(), map[string]bool{})
	tablesEquivalent(t, addressTab, gen.AddressTable(), map[string]bool{})
}
