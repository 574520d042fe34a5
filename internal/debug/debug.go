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

// Package debug provides structural tracing that is off unless enabled.
// Only internal/arena calls Logf at present. When Enabled is false Logf
// returns at once, but arguments its callers build (such as the arena's
// fmt.Sprintf prefix) are still evaluated.
//
// This is not an application logging facility; it exists purely to make the
// bump allocator debuggable by eye when something misbehaves on adversarial
// input.
package debug

import (
	"fmt"
	"os"
)

// Enabled gates every call to Logf. It is read once from the environment so
// that hot paths never pay for a syscall or a map lookup.
var Enabled = os.Getenv("PROTOCRAP_DEBUG") != ""

// Logf writes a single trace line to stderr when Enabled is true.
//
// ctx is a short caller-supplied prefix (e.g. the address of an arena or a
// table), op names the operation being traced, and format/args describe it.
func Logf(ctx, op, format string, args ...any) {
	if !Enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "protocrap: %s %s: "+format+"\n",
		append([]any{ctx, op}, args...)...)
}
