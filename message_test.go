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

package protocrap_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protocrap/protocrap"
	"github.com/protocrap/protocrap/gen"
)

func strp(s string) *string { return &s }
func i32p(n int32) *int32   { return &n }

func label(l descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto_Label { return &l }
func kind(k descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type     { return &k }

// TestStreamDecodeChunkIndependence is testable property #3: splitting the
// same encoded message at any byte boundary must decode to the same result,
// since StreamDecoder.Resume may be handed any partition of the input.
func TestStreamDecodeChunkIndependence(t *testing.T) {
	t.Parallel()
	a := protocrap.NewArena()
	src, err := gen.PersonType.New(a)
	require.NoError(t, err)
	d := src.Dynamic()
	require.NoError(t, d.SetInt64(1, 7))
	require.NoError(t, d.SetString(2, "chunked"))
	require.NoError(t, d.AppendInt64(5, 1))
	require.NoError(t, d.AppendInt64(5, 2))
	require.NoError(t, d.AppendInt64(5, 3))

	encoded, err := src.EncodeGrowable()
	require.NoError(t, err)

	for split := 0; split <= len(encoded); split++ {
		split := split
		t.Run("", func(t *testing.T) {
			t.Parallel()
			b := protocrap.NewArena()
			sd, err := protocrap.NewStreamDecoder(b, gen.PersonType)
			require.NoError(t, err)

			if split > 0 {
				require.NoError(t, sd.Resume(encoded[:split]))
			}
			if split < len(encoded) {
				require.NoError(t, sd.Resume(encoded[split:]))
			}

			msg, err := sd.Finish()
			require.NoError(t, err)

			view := msg.Reflect()
			idVal, ok := view.GetField(1)
			require.True(t, ok)
			require.Equal(t, int64(7), idVal.Int64())

			nameVal, ok := view.GetField(2)
			require.True(t, ok)
			require.Equal(t, "chunked", nameVal.String())

			scoresVal, ok := view.GetField(5)
			require.True(t, ok)
			require.Equal(t, 3, scoresVal.Len())
		})
	}
}

// TestDecodeStreamProvider exercises the ChunkProvider/DecodeStream
// convenience path over a small Address message, one byte at a time.
func TestDecodeStreamProvider(t *testing.T) {
	t.Parallel()
	a := protocrap.NewArena()
	src, err := gen.AddressType.New(a)
	require.NoError(t, err)
	d := src.Dynamic()
	require.NoError(t, d.SetString(1, "Capital City"))
	require.NoError(t, d.SetString(2, "99999"))

	encoded, err := src.EncodeGrowable()
	require.NoError(t, err)

	pos := 0
	provider := protocrap.ChunkProvider(func() ([]byte, bool) {
		if pos >= len(encoded) {
			return nil, false
		}
		b := encoded[pos : pos+1]
		pos++
		return b, true
	})

	b := protocrap.NewArena()
	msg, err := protocrap.DecodeStream(b, gen.AddressType, provider)
	require.NoError(t, err)

	view := msg.Reflect()
	cityVal, ok := view.GetField(1)
	require.True(t, ok)
	require.Equal(t, "Capital City", cityVal.String())
}

// TestStackDepthOption is testable property #5: message nesting beyond the
// configured stack depth must fail cleanly (ErrTreeTooDeep) rather than
// overflowing the decoder's own call stack. Reading a length-delimited
// field (a string, here) pushes its own frame just like a nested message
// does, so a Person with a nested Address holding a non-empty city string
// is already two frames deep below the root — enough to trip a stack
// depth of 1.
func TestStackDepthOption(t *testing.T) {
	t.Parallel()
	a := protocrap.NewArena()
	addr, err := gen.AddressType.New(a)
	require.NoError(t, err)
	require.NoError(t, addr.Dynamic().SetString(1, "Springfield"))

	root, err := gen.PersonType.New(a)
	require.NoError(t, err)
	d := root.Dynamic()
	require.NoError(t, d.SetInt64(1, 1))
	require.NoError(t, d.SetMessage(6, addr))

	encoded, err := root.EncodeGrowable()
	require.NoError(t, err)

	b := protocrap.NewArena()
	_, err = protocrap.Decode(b, gen.PersonType, encoded, protocrap.WithStackDepth(1))
	require.Error(t, err, "a nested message's string field exceeds a stack depth of 1")

	b2 := protocrap.NewArena()
	_, err = protocrap.Decode(b2, gen.PersonType, encoded)
	require.NoError(t, err, "the default stack depth comfortably fits this message")
}

// TestPoolBuildsTypeFromDescriptorSet exercises the root Pool end to end: a
// hand-built FileDescriptorSet goes in, a MessageType capable of encoding and
// decoding a real message comes out, without ever touching gen/'s static
// tables.
func TestPoolBuildsTypeFromDescriptorSet(t *testing.T) {
	t.Parallel()
	set := &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			{
				Name:    strp("greeting.proto"),
				Package: strp("pooltest"),
				Syntax:  strp("proto3"),
				MessageType: []*descriptorpb.DescriptorProto{
					{
						Name: strp("Greeting"),
						Field: []*descriptorpb.FieldDescriptorProto{
							{Name: strp("text"), Number: i32p(1), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_STRING)},
							{Name: strp("count"), Number: i32p(2), Label: label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL), Type: kind(descriptorpb.FieldDescriptorProto_TYPE_INT32)},
						},
					},
				},
			},
		},
	}
	setBytes, err := proto.Marshal(set)
	require.NoError(t, err)

	pool := protocrap.NewPool()
	require.NoError(t, pool.AddFileSetBytes(setBytes))

	typ, err := pool.GetType("pooltest.Greeting")
	require.NoError(t, err)

	a := protocrap.NewArena()
	msg, err := pool.NewMessage("pooltest.Greeting", a)
	require.NoError(t, err)
	d := msg.Dynamic()
	require.NoError(t, d.SetString(1, "hello"))
	require.NoError(t, d.SetInt64(2, 3))

	encoded, err := msg.EncodeGrowable()
	require.NoError(t, err)

	b := protocrap.NewArena()
	decoded, err := protocrap.Decode(b, typ, encoded)
	require.NoError(t, err)

	view := decoded.Reflect()
	textVal, ok := view.GetField(1)
	require.True(t, ok)
	require.Equal(t, "hello", textVal.String())

	countVal, ok := view.GetField(2)
	require.True(t, ok)
	require.Equal(t, int64(3), countVal.Int64())
}
