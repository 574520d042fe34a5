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

package tdp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protocrap/protocrap/internal/tdp"
)

func TestPackDecodeEntryRoundTrip(t *testing.T) {
	t.Parallel()
	e := tdp.PackDecodeEntry(tdp.KindRepeatedMessage, tdp.NoHasBit, 1234)
	kind, hasBit, offset := e.Fields()
	require.Equal(t, tdp.KindRepeatedMessage, kind)
	require.Equal(t, tdp.NoHasBit, hasBit)
	require.Equal(t, uint16(1234), offset)
}

func TestHasBitOneofEncoding(t *testing.T) {
	t.Parallel()
	h := tdp.OneofFlag | 3
	require.True(t, h.IsOneof())
	require.Equal(t, 3, h.OneofIndex())

	plain := tdp.HasBit(5)
	require.False(t, plain.IsOneof())
	require.Equal(t, 5, plain.PresenceBit())

	require.False(t, tdp.NoHasBit.IsOneof())
}

func TestDecodeEntryInSlot(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct {
		name   string
		entry  tdp.DecodeEntry
		inSlot bool
	}{
		{"scalar", tdp.PackDecodeEntry(tdp.KindVarint32, 0, 0), false},
		{"bytes", tdp.PackDecodeEntry(tdp.KindBytes, 0, 0), true},
		{"string", tdp.PackDecodeEntry(tdp.KindString, 0, 0), true},
		{"message", tdp.PackDecodeEntry(tdp.KindMessage, tdp.NoHasBit, 0), true},
		{"repeated scalar", tdp.PackDecodeEntry(tdp.KindRepeatedVarint32, tdp.NoHasBit, 0), true},
		{"oneof scalar", tdp.PackDecodeEntry(tdp.KindVarint32, tdp.OneofFlag|0, 0), true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.inSlot, tt.entry.InSlot())
		})
	}
}

func TestTableLookup(t *testing.T) {
	t.Parallel()
	tab := &tdp.Table{
		Decode: []tdp.DecodeEntry{
			0, // field 0 is reserved
			tdp.PackDecodeEntry(tdp.KindVarint32, 0, 0),
		},
	}

	_, ok := tab.Lookup(0)
	require.False(t, ok, "field number 0 is reserved")

	e, ok := tab.Lookup(1)
	require.True(t, ok)
	kind, _, _ := e.Fields()
	require.Equal(t, tdp.KindVarint32, kind)

	_, ok = tab.Lookup(2)
	require.False(t, ok, "field number past the table's range")
}

func TestFieldKindClassification(t *testing.T) {
	t.Parallel()
	require.True(t, tdp.KindRepeatedVarint32.IsRepeated())
	require.True(t, tdp.KindRepeatedVarint32.IsPackable())
	require.False(t, tdp.KindRepeatedMessage.IsPackable())
	require.True(t, tdp.KindMessage.IsMessage())
	require.True(t, tdp.KindRepeatedGroup.IsMessage())
	require.Equal(t, tdp.KindVarint32, tdp.KindRepeatedVarint32.Singular())
	require.Equal(t, tdp.WireVarint, tdp.KindVarint32Zigzag.WireType())
	require.Equal(t, tdp.WireLengthDelimited, tdp.KindRepeatedMessage.WireType())
}
