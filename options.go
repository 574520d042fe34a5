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

import "github.com/protocrap/protocrap/internal/tdp/vm"

// DefaultStackDepth is the default maximum message nesting depth, per
// spec.md §6's STACK_DEPTH configuration parameter.
const DefaultStackDepth = vm.DefaultStackDepth

// Options configures a single encode or decode call. It has exactly one
// tunable (StackDepth) today. Callers never pass an Options value directly:
// every public entry point takes a variadic list of Option functions,
// mirroring the teacher's functional-options convention (options.go's
// Option func(*options)).
type Options struct {
	// StackDepth bounds message nesting; exceeding it fails with
	// ErrTreeTooDeep. Zero means DefaultStackDepth.
	StackDepth int
}

func (o Options) toVM() vm.Options {
	return vm.Options{StackDepth: o.StackDepth}
}

// Option mutates an Options in place; every public entry point builds its
// Options from a variadic list of these, matching the teacher's
// configuration idiom.
type Option func(*Options)

// WithStackDepth overrides the default stack depth for a single call.
func WithStackDepth(n int) Option {
	return func(o *Options) { o.StackDepth = n }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
