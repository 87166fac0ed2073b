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

// Package eval binds parsed command line switches to mastering display
// metadata and makes sure all switches ask for the same input mode.
package eval

import (
	"math"
	"regexp"
	"strconv"

	"github.com/gitgerby/convertmdinfo/internal/pkg/cmdline"
	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
	"github.com/gitgerby/convertmdinfo/internal/pkg/mdinfo"
)

// decimalRegex accepts plain decimal notation with an optional exponent.
// Hexadecimal floats, infinities and NaN are not decimals.
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

type binding struct {
	mode  Mode
	arity int
	bind  func(r *Result, args []string) error
}

var bindings = map[string]binding{
	"-r":       {Manual, 2, pointBinding(func(p *mdinfo.DisplayPrimaries) **mdinfo.Point { return &p.R })},
	"-g":       {Manual, 2, pointBinding(func(p *mdinfo.DisplayPrimaries) **mdinfo.Point { return &p.G })},
	"-b":       {Manual, 2, pointBinding(func(p *mdinfo.DisplayPrimaries) **mdinfo.Point { return &p.B })},
	"-wp":      {Manual, 2, pointBinding(func(p *mdinfo.DisplayPrimaries) **mdinfo.Point { return &p.WhitePoint })},
	"-lmin":    {Manual, 1, lumBinding(func(l *mdinfo.LuminanceRange) *float64 { return &l.Min })},
	"-lmax":    {Manual, 1, lumBinding(func(l *mdinfo.LuminanceRange) *float64 { return &l.Max })},
	"-i":       {Automatic, 1, func(r *Result, args []string) error { r.SourceFile = args[0]; return nil }},
	"-dynamic": {Automatic, 0, func(r *Result, _ []string) error { r.Dynamic = true; return nil }},
	"-o":       {Global, 1, func(r *Result, args []string) error { r.OutputPath = args[0]; return nil }},
}

func pointBinding(field func(*mdinfo.DisplayPrimaries) **mdinfo.Point) func(*Result, []string) error {
	return func(r *Result, args []string) error {
		x, err := parseDecimal(args[0])
		if err != nil {
			return err
		}
		y, err := parseDecimal(args[1])
		if err != nil {
			return err
		}
		*field(&r.Primaries) = &mdinfo.Point{X: x, Y: y}
		return nil
	}
}

func lumBinding(field func(*mdinfo.LuminanceRange) *float64) func(*Result, []string) error {
	return func(r *Result, args []string) error {
		v, err := parseDecimal(args[0])
		if err != nil {
			return err
		}
		*field(&r.Luminance) = v
		return nil
	}
}

func parseDecimal(token string) (float64, error) {
	if !decimalRegex.MatchString(token) {
		return 0, mderr.New(mderr.NumericFormat, "Invalid decimal: %s", token)
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, mderr.New(mderr.NumericFormat, "Invalid decimal: %s", token)
	}
	return v, nil
}

// classify folds the mode of sw into the mode seen so far. Global switches
// never change or conflict with the accumulated mode.
func classify(seen Mode, sw cmdline.Switch, m Mode) (Mode, error) {
	switch {
	case m == Global:
		return seen, nil
	case seen == Undefined:
		return m, nil
	case seen != m:
		return seen, mderr.New(mderr.ModeConflict, "Class mismatch for switch %q", sw.Name)
	}
	return seen, nil
}

// Evaluate binds every switch in order and returns the populated Result.
// It stops at the first unknown switch, mode conflict, wrong argument count
// or malformed number.
//
// A Result whose Mode is Undefined or Global carries no metadata source;
// see Result.Actionable.
func Evaluate(switches []cmdline.Switch) (*Result, error) {
	r := NewResult()
	mode := Undefined
	global := false

	for _, sw := range switches {
		b, ok := bindings[sw.Name]
		if !ok {
			return nil, mderr.New(mderr.UnknownSwitch, "Unknown command line switch %q", sw.Name)
		}
		var err error
		if mode, err = classify(mode, sw, b.mode); err != nil {
			return nil, err
		}
		if b.mode == Global {
			global = true
		}
		if len(sw.Args) != b.arity {
			return nil, mderr.New(mderr.Arity, "Invalid number of arguments for switch %q: got %d, want %d", sw.Name, len(sw.Args), b.arity)
		}
		if err := b.bind(r, sw.Args); err != nil {
			return nil, err
		}
	}

	r.Mode = mode
	if mode == Undefined && global {
		r.Mode = Global
	}
	return r, nil
}
