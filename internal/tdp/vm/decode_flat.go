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

package vm

import (
	"github.com/protocrap/protocrap/internal/arena"
	"github.com/protocrap/protocrap/internal/tdp"
)

// DecodeFlat decodes a single, already-fully-buffered message in one shot,
// allocating a fresh arena to back it. It is the non-streaming convenience
// path spec.md calls decode_flat: a thin wrapper around
// NewDecoder/Resume/Finish for callers who already have the whole input.
func DecodeFlat(buf []byte, tab *tdp.Table, opts Options) (*tdp.Object, *arena.Arena, error) {
	a := arena.New()
	d, err := NewDecoder(a, tab, opts)
	if err != nil {
		a.Free()
		return nil, nil, err
	}
	if err := d.Resume(buf); err != nil {
		a.Free()
		return nil, nil, err
	}
	obj, err := d.Finish()
	if err != nil {
		a.Free()
		return nil, nil, err
	}
	return obj, a, nil
}
