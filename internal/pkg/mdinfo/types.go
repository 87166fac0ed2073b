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

// Package mdinfo models HDR mastering display metadata and converts it to
// the fixed point form used by x265's --master-display option.
package mdinfo

// UnsetLuminance marks a luminance bound that was never assigned. Real
// luminance values are never negative.
const UnsetLuminance = -666

const (
	// chromaticity unit of 0.00002 as used by HEVC SEI and x265
	chromaDivisor = 0.00002
	// luminance unit of 0.0001 cd/m2
	lumaDivisor = 0.0001
)

// Point is a CIE 1931 chromaticity coordinate.
type Point struct {
	X float64
	Y float64
}

// DisplayPrimaries holds the mastering display primaries. A nil field has
// not been set.
type DisplayPrimaries struct {
	R          *Point
	G          *Point
	B          *Point
	WhitePoint *Point
}

// LuminanceRange holds the mastering display luminance in cd/m2.
type LuminanceRange struct {
	Min float64
	Max float64
}

// NewLuminanceRange returns a range with both bounds unset.
func NewLuminanceRange() LuminanceRange {
	return LuminanceRange{Min: UnsetLuminance, Max: UnsetLuminance}
}

type QuantizedPoint struct {
	X uint16
	Y uint16
}

// QuantizedDisplay is the x265 representation of the mastering display:
// chromaticities in units of 0.00002 and luminance in units of 0.0001 cd/m2.
type QuantizedDisplay struct {
	R            QuantizedPoint
	G            QuantizedPoint
	B            QuantizedPoint
	WhitePoint   QuantizedPoint
	MinLuminance uint32
	MaxLuminance uint32
}
