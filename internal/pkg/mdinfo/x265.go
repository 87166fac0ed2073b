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

package mdinfo

import (
	"fmt"
	"math"

	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
)

// quantize divides v by unit and rounds half away from zero. ok is false
// when the result does not lie in [0, max].
func quantize(v, unit, max float64) (q float64, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	q = math.Floor(v/unit + 0.5)
	if q < 0 || q > max {
		return q, false
	}
	return q, true
}

// evalColorCoordinate265 converts a single chromaticity value for x265.
func evalColorCoordinate265(v float64) (uint16, bool) {
	q, ok := quantize(v, chromaDivisor, math.MaxUint16)
	if !ok {
		return 0, false
	}
	return uint16(q), true
}

// evalLumCoordinate265 converts a luminance value in cd/m2 for x265.
func evalLumCoordinate265(v float64) (uint32, bool) {
	q, ok := quantize(v, lumaDivisor, math.MaxUint32)
	if !ok {
		return 0, false
	}
	return uint32(q), true
}

func convertPoint(channel string, p *Point) (QuantizedPoint, error) {
	if p == nil {
		return QuantizedPoint{}, mderr.Bug("%s passed to converter unset", channel)
	}
	x, ok := evalColorCoordinate265(p.X)
	if !ok {
		return QuantizedPoint{}, mderr.New(mderr.Range, "Number out of range: %s x coordinate %v", channel, p.X)
	}
	y, ok := evalColorCoordinate265(p.Y)
	if !ok {
		return QuantizedPoint{}, mderr.New(mderr.Range, "Number out of range: %s y coordinate %v", channel, p.Y)
	}
	return QuantizedPoint{X: x, Y: y}, nil
}

// Convert quantizes complete primaries and luminance for x265. Callers run
// Validate first; unset primaries are reported as internal errors.
// Conversion stops at the first value out of range.
func Convert(p DisplayPrimaries, l LuminanceRange) (QuantizedDisplay, error) {
	var (
		q   QuantizedDisplay
		err error
		ok  bool
	)
	if q.R, err = convertPoint("red channel", p.R); err != nil {
		return QuantizedDisplay{}, err
	}
	if q.G, err = convertPoint("green channel", p.G); err != nil {
		return QuantizedDisplay{}, err
	}
	if q.B, err = convertPoint("blue channel", p.B); err != nil {
		return QuantizedDisplay{}, err
	}
	if q.WhitePoint, err = convertPoint("white point", p.WhitePoint); err != nil {
		return QuantizedDisplay{}, err
	}
	if q.MinLuminance, ok = evalLumCoordinate265(l.Min); !ok {
		return QuantizedDisplay{}, mderr.New(mderr.Range, "Number out of range: minimum luminance %v", l.Min)
	}
	if q.MaxLuminance, ok = evalLumCoordinate265(l.Max); !ok {
		return QuantizedDisplay{}, mderr.New(mderr.Range, "Number out of range: maximum luminance %v", l.Max)
	}
	return q, nil
}

// String renders q as the value of x265's --master-display option. x265
// expects green, blue, red, white point and then maximum before minimum
// luminance.
func (q QuantizedDisplay) String() string {
	return fmt.Sprintf("G(%d,%d)B(%d,%d)R(%d,%d)WP(%d,%d)L(%d,%d)",
		q.G.X, q.G.Y,
		q.B.X, q.B.Y,
		q.R.X, q.R.Y,
		q.WhitePoint.X, q.WhitePoint.Y,
		q.MaxLuminance, q.MinLuminance)
}

// Primaries returns the chromaticities q encodes.
func (q QuantizedDisplay) Primaries() DisplayPrimaries {
	pt := func(p QuantizedPoint) *Point {
		return &Point{X: float64(p.X) * chromaDivisor, Y: float64(p.Y) * chromaDivisor}
	}
	return DisplayPrimaries{R: pt(q.R), G: pt(q.G), B: pt(q.B), WhitePoint: pt(q.WhitePoint)}
}

// Luminance returns the luminance range q encodes in cd/m2.
func (q QuantizedDisplay) Luminance() LuminanceRange {
	return LuminanceRange{
		Min: float64(q.MinLuminance) * lumaDivisor,
		Max: float64(q.MaxLuminance) * lumaDivisor,
	}
}
