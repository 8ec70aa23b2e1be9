// pangraph: a pangenome variation graph core library.
// Copyright (c) 2026 the pangraph authors.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/exascience/pangraph/blob/master/LICENSE.txt>.

package internal

import "log"

// Kind classifies an Error the way §7 of the design distinguishes
// recoverable caller mistakes from fatal internal inconsistencies.
type Kind int

const (
	NotFound Kind = iota
	InvalidInput
	InvariantViolation
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case InvalidInput:
		return "invalid input"
	case InvariantViolation:
		return "invariant violation"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is the structured error every package in this module returns
// instead of a bare string, so callers can branch on Kind with errors.As.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "DivideNode"
	Err  error  // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error. Use Wrap when there's an underlying cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: errString(msg)}
}

// Wrap constructs an *Error around an existing error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

type errString string

func (e errString) Error() string { return string(e) }

// Fatal logs an invariant violation and returns it as an error, mirroring
// the teacher's log.Panicf calls for conditions that should never occur,
// translated into a returned error instead of a panic since this is a
// library.
func Fatal(op, msg string) *Error {
	log.Printf("%s: invariant violation: %s", op, msg)
	return New(InvariantViolation, op, msg)
}
