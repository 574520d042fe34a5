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

import "github.com/protocrap/protocrap/internal/arena"

// OptionalMessageField and RepeatedMessageField give the root package's
// reflection layer two distinct typed shapes over the same *Object.Slots
// storage, matching the original implementation's split between a
// nullable singular message wrapper and a non-nullable repeated-element
// wrapper (base.rs's `OptionalMessage[T]` vs `TypedMessage[T]`). The VM
// itself only ever needs Object.GetMessage/SetMessage/RepeatedMessages;
// these wrappers exist for callers (generated-style accessors, C7
// reflection) that want a field-shaped handle instead of a raw slot index.

// OptionalMessageField is a handle onto a singular, nullable sub-message
// slot.
type OptionalMessageField struct {
	obj *Object
	idx uint16
}

// Field returns a handle onto the singular message field at slot idx.
func (o *Object) Field(idx uint16) OptionalMessageField {
	return OptionalMessageField{obj: o, idx: idx}
}

// Get returns the sub-message and whether it is present.
func (f OptionalMessageField) Get() (*Object, bool) {
	m := f.obj.GetMessage(f.idx)
	return m, m != nil
}

// Set stores sub, replacing whatever was previously there.
func (f OptionalMessageField) Set(sub *Object) {
	f.obj.SetMessage(f.idx, sub)
}

// RepeatedMessageField is a handle onto a repeated sub-message slot; every
// element, once appended, is itself a fully-formed, non-nullable *Object.
type RepeatedMessageField struct {
	obj *Object
	idx uint16
}

// RepeatedField returns a handle onto the repeated message field at slot idx.
func (o *Object) RepeatedField(idx uint16) RepeatedMessageField {
	return RepeatedMessageField{obj: o, idx: idx}
}

// Len reports the number of elements without materializing the container.
func (f RepeatedMessageField) Len() int {
	return f.obj.RepeatedLen(f.idx)
}

// At returns the element at index i.
func (f RepeatedMessageField) At(i int) *Object {
	return f.obj.RepeatedMessages(f.idx).At(i)
}

// Append adds sub as the new last element.
func (f RepeatedMessageField) Append(a *arena.Arena, sub *Object) {
	f.obj.RepeatedMessages(f.idx).Push(a, sub)
}
