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

// Package errs defines the shared error taxonomy used across the arena,
// wire, container, tdp and descpool packages, so that a failure originating
// deep in the VM can be reported to callers of the root package without
// each internal package needing to import it (which would create an import
// cycle).
package errs

import "fmt"

// Kind classifies an error. See the root package's doc comment for the
// user-facing taxonomy; this is its internal, import-cycle-free home.
type Kind int

const (
	InvalidData Kind = iota + 1
	TreeTooDeep
	BufferTooSmall
	MessageNotFound
	ArenaAllocationFailed
	IO
)

func (k Kind) String() string {
	switch k {
	case InvalidData:
		return "invalid data"
	case TreeTooDeep:
		return "tree too deep"
	case BufferTooSmall:
		return "buffer too small"
	case MessageNotFound:
		return "message not found"
	case ArenaAllocationFailed:
		return "arena allocation failed"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the concrete error value threaded through every internal
// package. The root package's *protocrap.Error is a thin alias over this.
type Error struct {
	Kind   Kind
	Msg    string
	Err    error
	Offset int64 // -1 if not applicable
}

func (e *Error) Error() string {
	loc := ""
	if e.Offset >= 0 {
		loc = fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Err != nil {
		return fmt.Sprintf("protocrap: %s%s: %s: %v", e.Kind, loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("protocrap: %s%s: %s", e.Kind, loc, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New builds an *Error with no offset information and no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Offset: -1}
}

// Wrap builds an *Error that wraps an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err, Offset: -1}
}

// At builds an *Error carrying a byte offset into the input being decoded.
func At(kind Kind, msg string, offset int64) *Error {
	return &Error{Kind: kind, Msg: msg, Offset: offset}
}
