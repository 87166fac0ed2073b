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

package eval

import "github.com/gitgerby/convertmdinfo/internal/pkg/mdinfo"

// Mode is the metadata source an invocation asks for.
type Mode int

const (
	Undefined Mode = iota
	// Global switches are compatible with every other mode.
	Global
	// Manual metadata is given as numbers on the command line.
	Manual
	// Automatic metadata is read from a video file.
	Automatic
)

func (m Mode) String() string {
	switch m {
	case Global:
		return "global"
	case Manual:
		return "manual"
	case Automatic:
		return "automatic"
	}
	return "undefined"
}

// Result is everything bound from the command line.
type Result struct {
	Mode       Mode
	OutputPath string
	Primaries  mdinfo.DisplayPrimaries
	Luminance  mdinfo.LuminanceRange
	SourceFile string
	Dynamic    bool
}

// NewResult returns an empty Result with unset luminance.
func NewResult() *Result {
	return &Result{Luminance: mdinfo.NewLuminanceRange()}
}

// Actionable reports whether a metadata source was chosen. Otherwise the
// caller should print usage.
func (r *Result) Actionable() bool {
	return r.Mode == Manual || r.Mode == Automatic
}
