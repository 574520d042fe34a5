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

import "github.com/protocrap/protocrap/internal/errs"

// Kind classifies the errors this library can return, per the error
// taxonomy: TreeTooDeep, BufferTooSmall, InvalidData, MessageNotFound,
// ArenaAllocationFailed, and a passthrough Io kind.
type Kind = errs.Kind

const (
	KindInvalidData           = errs.InvalidData
	KindTreeTooDeep           = errs.TreeTooDeep
	KindBufferTooSmall        = errs.BufferTooSmall
	KindMessageNotFound       = errs.MessageNotFound
	KindArenaAllocationFailed = errs.ArenaAllocationFailed
	KindIO                    = errs.IO
)

// Error is the concrete error type returned by this package. It always
// carries a Kind so callers can dispatch programmatically (errors.As), and
// may wrap an underlying cause (e.g. the error returned by a chunk
// provider, or an arena's backing allocator).
type Error = errs.Error

// Sentinel errors for the common, argument-free cases. Internal packages
// construct their own richer *Error values (with offsets, wrapped causes);
// these are what a caller typically compares against with errors.Is.
var (
	ErrTreeTooDeep           = errs.New(errs.TreeTooDeep, "message nesting exceeds configured stack depth")
	ErrBufferTooSmall        = errs.New(errs.BufferTooSmall, "destination buffer too small")
	ErrNeedsMoreBuffer       = errs.New(errs.BufferTooSmall, "encoder needs a larger buffer to continue")
	ErrInvalidData           = errs.New(errs.InvalidData, "malformed wire data")
	ErrMessageNotFound       = errs.New(errs.MessageNotFound, "message type not present in descriptor pool")
	ErrArenaAllocationFailed = errs.New(errs.ArenaAllocationFailed, "arena allocation failed")
)
