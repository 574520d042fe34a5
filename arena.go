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

package protocrap

import "github.com/protocrap/protocrap/internal/arena"

// Arena is a bump allocator: the unit of ownership and bulk reclamation
// for every Message this package produces, per spec.md §6's
// Arena.new/.from_slice/.alloc_raw surface.
type Arena = arena.Arena

// NewArena returns an empty arena backed by the Go runtime allocator.
func NewArena() *Arena { return arena.New() }

// ArenaFromSlice constructs an arena that bump-allocates directly out of
// buf, never calling back into the Go allocator; Free on such an arena
// never releases buf, since the caller owns buf's lifetime.
func ArenaFromSlice(buf []byte) *Arena { return arena.FromSlice(buf) }
