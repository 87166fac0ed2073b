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
	"regexp"
	"strconv"

	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
	"github.com/pkg/errors"
)

var (
	// groupRegex matches a single G(), B(), R(), WP() or L() group.
	groupRegex = regexp.MustCompile(`(G|B|R|WP|L)\((\d+),(\d+)\)`)
	// fullRegex matches a master display string made only of groups.
	fullRegex = regexp.MustCompile(`^(?:(?:G|B|R|WP|L)\(\d+,\d+\)){5}$`)
)

// ParseMasterDisplay decodes an x265 --master-display value. Groups may
// appear in any order but each exactly once.
func ParseMasterDisplay(encoded string) (QuantizedDisplay, error) {
	if !fullRegex.MatchString(encoded) {
		return QuantizedDisplay{}, mderr.New(mderr.Parse, "invalid master display format: %q", encoded)
	}

	var q QuantizedDisplay
	seen := map[string]bool{}
	for _, m := range groupRegex.FindAllStringSubmatch(encoded, -1) {
		group := m[1]
		if seen[group] {
			return QuantizedDisplay{}, mderr.New(mderr.Parse, "invalid master display format: %q: duplicate group %s", encoded, group)
		}
		seen[group] = true

		bits := 16
		if group == "L" {
			bits = 32
		}
		x, err := strconv.ParseUint(m[2], 10, bits)
		if err != nil {
			return QuantizedDisplay{}, mderr.Wrap(mderr.Parse, errors.Wrapf(err, "unable to parse %s first value", group), "invalid master display format: "+strconv.Quote(encoded))
		}
		y, err := strconv.ParseUint(m[3], 10, bits)
		if err != nil {
			return QuantizedDisplay{}, mderr.Wrap(mderr.Parse, errors.Wrapf(err, "unable to parse %s second value", group), "invalid master display format: "+strconv.Quote(encoded))
		}

		switch group {
		case "G":
			q.G = QuantizedPoint{X: uint16(x), Y: uint16(y)}
		case "B":
			q.B = QuantizedPoint{X: uint16(x), Y: uint16(y)}
		case "R":
			q.R = QuantizedPoint{X: uint16(x), Y: uint16(y)}
		case "WP":
			q.WhitePoint = QuantizedPoint{X: uint16(x), Y: uint16(y)}
		case "L":
			q.MaxLuminance = uint32(x)
			q.MinLuminance = uint32(y)
		}
	}
	return q, nil
}
