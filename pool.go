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

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protocrap/protocrap/internal/descpool"
)

// Pool is a DescriptorPool: it builds MessageTypes at runtime from
// FileDescriptorProtos, per spec.md §6's
// `DescriptorPool.new/.add_file/.create_message/.get_table`.
type Pool struct {
	inner *descpool.Pool
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{inner: descpool.New()}
}

// AddFile registers a FileDescriptorProto. Files must be added in
// dependency order: a file's imports must already be registered.
func (p *Pool) AddFile(fd *descriptorpb.FileDescriptorProto) error {
	return p.inner.AddFile(fd)
}

// AddFileSet registers every file in a FileDescriptorSet, in order.
func (p *Pool) AddFileSet(set *descriptorpb.FileDescriptorSet) error {
	return p.inner.AddFileSet(set)
}

// AddFileSetBytes unmarshals and registers a serialized FileDescriptorSet,
// per spec.md §6's "Descriptor input" clause.
func (p *Pool) AddFileSetBytes(b []byte) error {
	return p.inner.AddFileSetBytes(b)
}

// GetType returns the MessageType for a registered message, building
// (and memoizing) its Table and the Tables of every message type it
// references on first request.
func (p *Pool) GetType(fullName protoreflect.FullName) (MessageType, error) {
	tab, err := p.inner.GetTable(fullName)
	if err != nil {
		return MessageType{}, err
	}
	return newMessageType(tab), nil
}

// NewMessage allocates a new message of a registered type directly, per
// spec.md's `DescriptorPool.create_message(full_name, arena)`.
func (p *Pool) NewMessage(fullName protoreflect.FullName, a *Arena) (*Message, error) {
	mt, err := p.GetType(fullName)
	if err != nil {
		return nil, err
	}
	return mt.New(a)
}
