// Copyright 2022 GearnsC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mderr holds the error kinds shared by every stage of the
// master display pipeline.
package mderr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

type Kind int

const (
	Unknown Kind = iota
	Parse
	UnknownSwitch
	Arity
	NumericFormat
	ModeConflict
	IncompleteInput
	Range
	Extraction
	NotImplemented
	Output
	Internal
)

func (k Kind) String() string {
	switch k {
	case Parse:
		return "parse error"
	case UnknownSwitch:
		return "unknown switch"
	case Arity:
		return "arity error"
	case NumericFormat:
		return "numeric format error"
	case ModeConflict:
		return "mode conflict"
	case IncompleteInput:
		return "incomplete input"
	case Range:
		return "range error"
	case Extraction:
		return "extraction error"
	case NotImplemented:
		return "not implemented"
	case Output:
		return "output error"
	case Internal:
		return "internal invariant violation"
	}
	return "unknown error"
}

// Error is a user facing pipeline failure. Msg is printed verbatim.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of kind k with a formatted message.
func New(k Kind, format string, a ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches kind k and msg to err. A nil err yields nil.
func Wrap(k Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Msg: msg, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Bug records a broken precondition between internal components. The
// wrapped error carries a stack trace, print it with %+v.
func Bug(format string, a ...any) error {
	return &Error{
		Kind: Internal,
		Msg:  "internal error: " + fmt.Sprintf(format, a...),
		Err:  pkgerrors.Errorf(format, a...),
	}
}
