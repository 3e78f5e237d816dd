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

// Package errs defines the error taxonomy used across llmspell. Every
// user-facing error carries a Kind so callers at the CLI and kernel
// boundary can map it to an exit code or wire status without string
// matching.
package errs

import "fmt"

// Kind classifies an error for the purpose of exit-code and wire-status
// mapping. Internal code should construct errors with a Kind rather
// than returning bare fmt.Errorf values whenever the error can cross
// a process or protocol boundary.
type Kind string

const (
	Validation   Kind = "validation"
	NotFound     Kind = "not_found"
	Conflict     Kind = "conflict"
	Unauthorized Kind = "unauthorized"
	Timeout      Kind = "timeout"
	Cancelled    Kind = "cancelled"
	Resource     Kind = "resource"
	Transport    Kind = "transport"
	Internal     Kind = "internal"
)

// ExitCode maps a Kind to the process exit code the CLI should use.
func (k Kind) ExitCode() int {
	switch k {
	case "":
		return 0
	case Validation:
		return 1
	case NotFound, Conflict:
		return 2
	case Unauthorized, Timeout, Cancelled:
		return 3
	default:
		return 4
	}
}

// Error is the concrete error type returned by llmspell packages. It
// wraps an optional cause and always carries a Kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error,
// otherwise returns Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	for {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
		if err == nil {
			break
		}
	}
	if e == nil {
		return Internal
	}
	return e.Kind
}
