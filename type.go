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

import "github.com/protocrap/protocrap/internal/tdp"

// MessageType is a compiled-or-pooled per-message-type codec descriptor:
// a thin, read-only handle over a *tdp.Table, per spec.md's "compile-time
// known pointer to its Table" design note (§9, replacing the source's
// `Protobuf` trait dispatch with data). Both a static, generated-style
// type (gen/) and a dynamic, pool-built type (internal/descpool) produce
// the same MessageType shape, which is exactly testable property #7
// (static-vs-dynamic table equivalence).
type MessageType struct {
	tab *tdp.Table
}

// newMessageType wraps a Table as a MessageType. Unexported: callers get
// a MessageType either from a generated static table (gen/) or from a
// Pool, never by constructing a Table themselves.
func newMessageType(tab *tdp.Table) MessageType {
	return MessageType{tab: tab}
}

// FullName returns the message type's fully-qualified proto name.
func (t MessageType) FullName() string { return t.tab.FullName }

// New allocates a new, zero-valued Message of this type on a.
func (t MessageType) New(a *Arena) (*Message, error) {
	obj, err := tdp.Create(t.tab, a)
	if err != nil {
		return nil, err
	}
	return &Message{obj: obj, tab: t.tab, arena: a}, nil
}

// table exposes the underlying Table to other files in this package
// (decode/encode/reflection) without making it part of the public API.
func (t MessageType) table() *tdp.Table { return t.tab }

// NewStaticMessageType wraps a hand-built or generated *tdp.Table as a
// MessageType. This is the entry point gen/ (and any future generated-code
// package) uses to register a static, compile-time-known table, as opposed
// to the dynamic tables internal/descpool builds from a FileDescriptorSet
// at runtime — both produce the same MessageType shape, which is exactly
// testable property #7 (static-vs-dynamic table equivalence).
func NewStaticMessageType(tab *tdp.Table) MessageType {
	return newMessageType(tab)
}
