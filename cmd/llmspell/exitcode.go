// Copyright 2026 The LLMSpell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import "github.com/llmspell/llmspell/internal/errs"

// exitCodeFor maps err to a process exit code via its errs.Kind,
// falling back to Internal's code for errors this module didn't
// originate (cobra usage errors, I/O errors from third-party code).
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return errs.KindOf(err).ExitCode()
}
