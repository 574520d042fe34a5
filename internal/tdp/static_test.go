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

	"github.com/protocrap/protocrap/internal/arena"
	"github.com/protocrap/protocrap/internal/tdp"
)

func TestStaticObjectIsImmutable(t *testing.T) {
	t.Parallel()
	tab := &tdp.Table{FullName: "static.Example", ScalarSize: 4, NumHasBits: 1}
	obj := tdp.StaticObject(tab, []uint32{1}, nil, make([]byte, 4), nil)

	require.Panics(t, func() { obj.Clear() })
	require.Panics(t, func() { obj.SetU32(0, 7) })
	require.Panics(t, func() { obj.SetHasBit(0) })
}

func TestOptionalMessageField(t *testing.T) {
	t.Parallel()
	tab := &tdp.Table{FullName: "test.Outer", NumSlots: 1}
	a := arena.New()
	outer, err := tdp.Create(tab, a)
	require.NoError(t, err)

	subTab := &tdp.Table{FullName: "test.Inner"}
	sub, err := tdp.Create(subTab, a)
	require.NoError(t, err)

	f := outer.Field(0)
	_, ok := f.Get()
	require.False(t, ok)

	f.Set(sub)
	got, ok := f.Get()
	require.True(t, ok)
	require.Same(t, sub, got)
}

func TestRepeatedMessageField(t *testing.T) {
	t.Parallel()
	tab := &tdp.Table{FullName: "test.Outer", NumSlots: 1}
	a := arena.New()
	outer, err := tdp.Create(tab, a)
	require.NoError(t, err)

	subTab := &tdp.Table{FullName: "test.Inner"}
	first, err := tdp.Create(subTab, a)
	require.NoError(t, err)
	second, err := tdp.Create(subTab, a)
	require.NoError(t, err)

	f := outer.RepeatedField(0)
	require.Equal(t, 0, f.Len())

	f.Append(a, first)
	f.Append(a, second)
	require.Equal(t, 2, f.Len())
	require.Same(t, first, f.At(0))
	require.Same(t, second, f.At(1))
}
