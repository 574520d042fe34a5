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
	"github.com/protocrap/protocrap/internal/tdp"
	"github.com/protocrap/protocrap/internal/tdp/vm"
)

// Message is a decoded or freshly-allocated value of some MessageType,
// living on an Arena, per spec.md §3's Object/Lifecycle model: a Message
// is never individually destroyed, only reclaimed in bulk when its Arena
// is freed.
type Message struct {
	obj   *tdp.Object
	tab   *tdp.Table
	arena *Arena
}

// Type returns the message's type.
func (m *Message) Type() MessageType { return newMessageType(m.tab) }

// Arena returns the arena this message (and every sub-message reachable
// from it) is allocated on.
func (m *Message) Arena() *Arena { return m.arena }

// Clear zeroes every field, per spec.md §4.7's DynamicMessage.clear().
func (m *Message) Clear() { m.obj.Clear() }

// Encode writes this message's wire encoding into the tail of buf, per
// spec.md §4.6 and §6's `Message.encode(buffer, stack_depth)`: the
// encoder works back-to-front, so the written bytes are the suffix of
// buf, not its prefix. Returns ErrBufferTooSmall if buf is too small.
func (m *Message) Encode(buf []byte, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	return vm.Encode(buf, m.obj, o.toVM())
}

// EncodeGrowable encodes this message into a freshly allocated,
// right-sized buffer, per spec.md §6's `Message.encode_growable(stack_depth)`.
func (m *Message) EncodeGrowable(opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	return vm.EncodeGrowable(m.obj, o.toVM())
}

// Decode decodes a single, already-fully-buffered message of type mt,
// allocating it on a, per spec.md §6's `Message.decode(arena, bytes, stack_depth)`.
func Decode(a *Arena, mt MessageType, data []byte, opts ...Option) (*Message, error) {
	o := buildOptions(opts)
	obj, err := decodeFlatOnto(a, mt.table(), data, o.toVM())
	if err != nil {
		return nil, err
	}
	return &Message{obj: obj, tab: mt.table(), arena: a}, nil
}

// decodeFlatOnto is DecodeFlat, but allocating onto a caller-supplied
// arena instead of a fresh one (Decode's a is caller-owned, unlike
// vm.DecodeFlat's convenience path, which always creates its own).
func decodeFlatOnto(a *Arena, tab *tdp.Table, data []byte, opts vm.Options) (*tdp.Object, error) {
	d, err := vm.NewDecoder(a, tab, opts)
	if err != nil {
		return nil, err
	}
	if err := d.Resume(data); err != nil {
		return nil, err
	}
	return d.Finish()
}

// StreamDecoder is a resumable decode session, per spec.md §6's
// `Message.decode_stream(arena, provider, stack_depth)`: the caller feeds
// it chunks in any partition (testable property #3, chunk independence)
// via Resume, and calls Finish once the input is exhausted.
type StreamDecoder struct {
	inner *vm.Decoder
	tab   *tdp.Table
	arena *Arena
}

// NewStreamDecoder begins a streaming decode of a message of type mt onto
// arena a.
func NewStreamDecoder(a *Arena, mt MessageType, opts ...Option) (*StreamDecoder, error) {
	o := buildOptions(opts)
	d, err := vm.NewDecoder(a, mt.table(), o.toVM())
	if err != nil {
		return nil, err
	}
	return &StreamDecoder{inner: d, tab: mt.table(), arena: a}, nil
}

// Resume feeds the next chunk of input to the decoder. Chunks may split
// any value (a varint, a length-delimited payload, a tag) across calls.
func (d *StreamDecoder) Resume(chunk []byte) error {
	return d.inner.Resume(chunk)
}

// Finish signals end of input and returns the fully decoded Message, or
// an error if the input ended mid-value.
func (d *StreamDecoder) Finish() (*Message, error) {
	obj, err := d.inner.Finish()
	if err != nil {
		return nil, err
	}
	return &Message{obj: obj, tab: d.tab, arena: d.arena}, nil
}

// ChunkProvider synchronously yields the next chunk of a streaming input,
// reporting ok=false once exhausted, per spec.md §6's `provider` parameter
// (the spec allows a provider to yield synchronously or asynchronously;
// Go's natural rendition of the synchronous case is a plain function
// value, and of the asynchronous case a channel — callers wanting
// asynchronous delivery can adapt one to the other with a goroutine).
type ChunkProvider func() (chunk []byte, ok bool)

// DecodeStream drives a StreamDecoder to completion using a ChunkProvider,
// per spec.md §6's `Message.decode_stream`.
func DecodeStream(a *Arena, mt MessageType, provider ChunkProvider, opts ...Option) (*Message, error) {
	d, err := NewStreamDecoder(a, mt, opts...)
	if err != nil {
		return nil, err
	}
	for {
		chunk, ok := provider()
		if !ok {
			break
		}
		if err := d.Resume(chunk); err != nil {
			return nil, err
		}
	}
	return d.Finish()
}
