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
	"github.com/protocrap/protocrap/internal/errs"
	"github.com/protocrap/protocrap/internal/tdp"
	"github.com/protocrap/protocrap/internal/wire"
)

// Encode serializes obj into the tail of buf, walking Table.Encode in
// reverse and advancing backward, per spec.md §4.6: each field's value is
// written before its length and tag, so a sub-message's encoded length is
// always known without a separate buffering pass. It returns the written
// suffix of buf, or a BufferTooSmall error if buf cannot hold the result
// (the caller's state is otherwise untouched: obj is read-only to Encode).
//
// Unlike the teacher/spec's resumable encoder, which keeps a continuation
// stack across buffer-growth retries so a partially-written tail is never
// redone, this Encode call is all-or-nothing: on BufferTooSmall it does no
// partial work the caller must account for. EncodeGrowable below simply
// retries the whole (pure, side-effect-free) walk against a bigger buffer.
// That is cheap here because, unlike decoding, the source (obj) is already
// fully materialized in memory — there is no streaming input to avoid
// re-reading. See DESIGN.md.
func Encode(buf []byte, obj *tdp.Object, opts Options) ([]byte, error) {
	pos, err := encodeMessage(buf, len(buf), obj, opts.stackDepth())
	if err != nil {
		return nil, err
	}
	return buf[pos:], nil
}

// EncodeGrowable encodes obj into a freshly allocated, automatically
// resized buffer, per spec.md's encode_growable.
func EncodeGrowable(obj *tdp.Object, opts Options) ([]byte, error) {
	size := 256
	for {
		buf := make([]byte, size)
		out, err := Encode(buf, obj, opts)
		if err == nil {
			return out, nil
		}
		if ee, ok := err.(*errs.Error); ok && ee.Kind == errs.BufferTooSmall {
			size *= 2
			continue
		}
		return nil, err
	}
}

func encodeMessage(buf []byte, pos int, obj *tdp.Object, depth int) (int, error) {
	if depth < 0 {
		return 0, errs.New(errs.TreeTooDeep, "message nesting exceeds configured stack depth during encode")
	}
	entries := obj.Tab.Encode
	for i := len(entries) - 1; i >= 0; i-- {
		e := &entries[i]
		newPos, wrote, err := encodeField(buf, pos, obj, e, depth)
		if err != nil {
			return 0, err
		}
		if wrote {
			pos = newPos
		}
	}
	return pos, nil
}

func encodeField(buf []byte, pos int, obj *tdp.Object, e *tdp.EncodeEntry, depth int) (int, bool, error) {
	switch {
	case e.Kind == tdp.KindMessage || e.Kind == tdp.KindGroup:
		child := obj.GetMessage(e.Offset)
		if child == nil {
			return pos, false, nil
		}
		return encodeOneMessage(buf, pos, child, e, depth)

	case e.Kind == tdp.KindRepeatedMessage || e.Kind == tdp.KindRepeatedGroup:
		n := obj.RepeatedLen(e.Offset)
		if n == 0 {
			return pos, false, nil
		}
		rep := obj.RepeatedMessages(e.Offset)
		wrote := false
		for i := n - 1; i >= 0; i-- {
			newPos, did, err := encodeOneMessage(buf, pos, rep.At(i), e, depth)
			if err != nil {
				return 0, false, err
			}
			if did {
				pos, wrote = newPos, true
			}
		}
		return pos, wrote, nil

	case e.Kind == tdp.KindBytes || e.Kind == tdp.KindString:
		if !scalarPresent(obj, e.HasBit, e.FieldNumber) {
			return pos, false, nil
		}
		data := bytesValue(obj, e.Kind, e.Offset)
		newPos, err := writeTailLengthDelimited(buf, pos, e.EncodedTag, data)
		if err != nil {
			return 0, false, err
		}
		return newPos, true, nil

	case e.Kind == tdp.KindRepeatedBytes || e.Kind == tdp.KindRepeatedString:
		n := obj.RepeatedLen(e.Offset)
		if n == 0 {
			return pos, false, nil
		}
		wrote := false
		for i := n - 1; i >= 0; i-- {
			data := repeatedBytesAt(obj, e.Kind, e.Offset, i)
			newPos, err := writeTailLengthDelimited(buf, pos, e.EncodedTag, data)
			if err != nil {
				return 0, false, err
			}
			pos, wrote = newPos, true
		}
		return pos, wrote, nil

	case e.Kind.IsPackable():
		singular := e.Kind.Singular()
		n := obj.RepeatedLen(e.Offset)
		if n == 0 {
			return pos, false, nil
		}
		contentStart := pos
		for i := n - 1; i >= 0; i-- {
			v := repeatedScalarAt(obj, singular, e.Offset, i)
			newPos, err := writeScalarPayload(buf, pos, singular, v)
			if err != nil {
				return 0, false, err
			}
			pos = newPos
		}
		length := contentStart - pos
		newPos, err := writeTailVarint(buf, pos, uint64(length))
		if err != nil {
			return 0, false, err
		}
		newPos, err = writeTailVarint(buf, newPos, e.EncodedTag)
		if err != nil {
			return 0, false, err
		}
		return newPos, true, nil

	default: // singular scalar
		if !scalarPresent(obj, e.HasBit, e.FieldNumber) {
			return pos, false, nil
		}
		v := scalarValue(obj, e.Kind, e.HasBit, e.Offset)
		newPos, err := writeScalarPayload(buf, pos, e.Kind, v)
		if err != nil {
			return 0, false, err
		}
		newPos, err = writeTailVarint(buf, newPos, e.EncodedTag)
		if err != nil {
			return 0, false, err
		}
		return newPos, true, nil
	}
}

func encodeOneMessage(buf []byte, pos int, child *tdp.Object, e *tdp.EncodeEntry, depth int) (int, bool, error) {
	if e.Kind == tdp.KindGroup || e.Kind == tdp.KindRepeatedGroup {
		endTag := wire.EncodeTag(e.FieldNumber, wire.EndGroup)
		newPos, err := writeTailVarint(buf, pos, endTag)
		if err != nil {
			return 0, false, err
		}
		newPos, err = encodeMessage(buf, newPos, child, depth-1)
		if err != nil {
			return 0, false, err
		}
		newPos, err = writeTailVarint(buf, newPos, e.EncodedTag)
		if err != nil {
			return 0, false, err
		}
		return newPos, true, nil
	}

	bodyEnd := pos
	newPos, err := encodeMessage(buf, pos, child, depth-1)
	if err != nil {
		return 0, false, err
	}
	length := bodyEnd - newPos
	newPos, err = writeTailVarint(buf, newPos, uint64(length))
	if err != nil {
		return 0, false, err
	}
	newPos, err = writeTailVarint(buf, newPos, e.EncodedTag)
	if err != nil {
		return 0, false, err
	}
	return newPos, true, nil
}

// scalarPresent reports presence for a non-repeated, non-message field
// whose offset addresses either Object.Scalar or Object.Slots (bytes,
// string): a real has-bit for non-oneof fields, the discriminant for
// oneof members.
func scalarPresent(obj *tdp.Object, hasBit tdp.HasBit, fieldNumber uint32) bool {
	if hasBit == tdp.NoHasBit {
		return true
	}
	if hasBit.IsOneof() {
		return obj.OneofCase(hasBit.OneofIndex()) == fieldNumber
	}
	return obj.HasBit(hasBit.PresenceBit())
}

func bytesValue(obj *tdp.Object, kind tdp.FieldKind, offset uint16) []byte {
	if kind == tdp.KindString {
		return obj.StringSlot(offset).Raw()
	}
	return obj.BytesSlot(offset).Raw()
}

func repeatedBytesAt(obj *tdp.Object, kind tdp.FieldKind, offset uint16, i int) []byte {
	if kind == tdp.KindRepeatedString {
		s := obj.RepeatedStrings(offset).At(i)
		return s.Raw()
	}
	b := obj.RepeatedBytes(offset).At(i)
	return b.Raw()
}

func repeatedScalarAt(obj *tdp.Object, singular tdp.FieldKind, offset uint16, i int) uint64 {
	switch singular {
	case tdp.KindVarint64, tdp.KindFixed64:
		return obj.RepeatedU64(offset).At(i)
	case tdp.KindVarint64Zigzag:
		return uint64(wire.ZigZagEncode64(int64(obj.RepeatedU64(offset).At(i))))
	case tdp.KindVarint32, tdp.KindFixed32:
		return uint64(obj.RepeatedU32(offset).At(i))
	case tdp.KindInt32:
		return uint64(int64(int32(obj.RepeatedU32(offset).At(i))))
	case tdp.KindVarint32Zigzag:
		return uint64(wire.ZigZagEncode32(int32(obj.RepeatedU32(offset).At(i))))
	case tdp.KindBool:
		if obj.RepeatedBool(offset).At(i) {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// scalarValue reads and re-encodes a singular scalar field's stored value
// into its on-wire varint/fixed payload (zigzag/sign-extension applied).
func scalarValue(obj *tdp.Object, kind tdp.FieldKind, hasBit tdp.HasBit, offset uint16) uint64 {
	oneof := hasBit.IsOneof()
	switch kind {
	case tdp.KindVarint64, tdp.KindFixed64:
		if oneof {
			return obj.GetOneofScalarU64(offset)
		}
		return obj.GetU64(offset)
	case tdp.KindVarint64Zigzag:
		var v uint64
		if oneof {
			v = obj.GetOneofScalarU64(offset)
		} else {
			v = obj.GetU64(offset)
		}
		return uint64(wire.ZigZagEncode64(int64(v)))
	case tdp.KindFixed32, tdp.KindVarint32:
		var v uint32
		if oneof {
			v = obj.GetOneofScalarU32(offset)
		} else {
			v = obj.GetU32(offset)
		}
		return uint64(v)
	case tdp.KindInt32:
		var v uint32
		if oneof {
			v = obj.GetOneofScalarU32(offset)
		} else {
			v = obj.GetU32(offset)
		}
		return uint64(int64(int32(v)))
	case tdp.KindVarint32Zigzag:
		var v uint32
		if oneof {
			v = obj.GetOneofScalarU32(offset)
		} else {
			v = obj.GetU32(offset)
		}
		return uint64(wire.ZigZagEncode32(int32(v)))
	case tdp.KindBool:
		var v bool
		if oneof {
			v = obj.GetOneofScalarBool(offset)
		} else {
			v = obj.GetBool(offset)
		}
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func writeScalarPayload(buf []byte, pos int, kind tdp.FieldKind, v uint64) (int, error) {
	switch kind.WireType() {
	case tdp.WireFixed32:
		return writeTailFixed32(buf, pos, uint32(v))
	case tdp.WireFixed64:
		return writeTailFixed64(buf, pos, v)
	default:
		return writeTailVarint(buf, pos, v)
	}
}

func writeTailLengthDelimited(buf []byte, pos int, tag uint64, data []byte) (int, error) {
	newPos, err := writeTailBytes(buf, pos, data)
	if err != nil {
		return 0, err
	}
	newPos, err = writeTailVarint(buf, newPos, uint64(len(data)))
	if err != nil {
		return 0, err
	}
	return writeTailVarint(buf, newPos, tag)
}

func writeTailVarint(buf []byte, pos int, v uint64) (int, error) {
	n := wire.SizeVarint(v)
	if pos-n < 0 {
		return 0, errs.New(errs.BufferTooSmall, "encode buffer exhausted")
	}
	pos -= n
	i := 0
	for v >= 0x80 {
		buf[pos+i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[pos+i] = byte(v)
	return pos, nil
}

func writeTailFixed32(buf []byte, pos int, v uint32) (int, error) {
	if pos-4 < 0 {
		return 0, errs.New(errs.BufferTooSmall, "encode buffer exhausted")
	}
	pos -= 4
	buf[pos] = byte(v)
	buf[pos+1] = byte(v >> 8)
	buf[pos+2] = byte(v >> 16)
	buf[pos+3] = byte(v >> 24)
	return pos, nil
}

func writeTailFixed64(buf []byte, pos int, v uint64) (int, error) {
	if pos-8 < 0 {
		return 0, errs.New(errs.BufferTooSmall, "encode buffer exhausted")
	}
	pos -= 8
	buf[pos] = byte(v)
	buf[pos+1] = byte(v >> 8)
	buf[pos+2] = byte(v >> 16)
	buf[pos+3] = byte(v >> 24)
	buf[pos+4] = byte(v >> 32)
	buf[pos+5] = byte(v >> 40)
	buf[pos+6] = byte(v >> 48)
	buf[pos+7] = byte(v >> 56)
	return pos, nil
}

func writeTailBytes(buf []byte, pos int, data []byte) (int, error) {
	n := len(data)
	if pos-n < 0 {
		return 0, errs.New(errs.BufferTooSmall, "encode buffer exhausted")
	}
	pos -= n
	copy(buf[pos:pos+n], data)
	return pos, nil
}
