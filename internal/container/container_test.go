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

package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protocrap/protocrap/internal/arena"
	"github.com/protocrap/protocrap/internal/container"
)

func TestRepeatedFieldPushPop(t *testing.T) {
	t.Parallel()
	a := arena.New()
	var r container.RepeatedField[int32]

	for i := int32(0); i < 10; i++ {
		r.Push(a, i)
	}
	require.Equal(t, 10, r.Len())
	require.Equal(t, int32(4), r.At(4))

	v, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, int32(9), v)
	require.Equal(t, 9, r.Len())
}

func TestRepeatedFieldInsertRemove(t *testing.T) {
	t.Parallel()
	a := arena.New()
	var r container.RepeatedField[string]
	r.Append(a, []string{"a", "c"})
	r.Insert(a, 1, "b")
	require.Equal(t, []string{"a", "b", "c"}, r.Raw())

	r.Remove(0)
	require.Equal(t, []string{"b", "c"}, r.Raw())
}

func TestRepeatedFieldClear(t *testing.T) {
	t.Parallel()
	a := arena.New()
	var r container.RepeatedField[int32]
	r.Append(a, []int32{1, 2, 3})
	r.Clear()
	require.Equal(t, 0, r.Len())
}

func TestFromStaticIsImmutable(t *testing.T) {
	t.Parallel()
	r := container.FromStatic([]int32{1, 2, 3})
	require.Equal(t, 3, r.Len())
	require.Panics(t, func() {
		r.Push(arena.New(), 4)
	})
}

func TestStringValue(t *testing.T) {
	t.Parallel()
	s := container.NewString([]byte("hello"))
	require.Equal(t, "hello", s.Value())
}

func TestValidateUTF8(t *testing.T) {
	t.Parallel()
	require.NoError(t, container.ValidateUTF8([]byte("valid utf-8 é")))
	require.Error(t, container.ValidateUTF8([]byte{0xff, 0xfe}))
}
