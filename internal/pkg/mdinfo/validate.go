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

import "github.com/gitgerby/convertmdinfo/internal/pkg/mderr"

// Validate checks that primaries and luminance are complete and that the
// luminance range is ordered. Checks run red, green, blue, white point,
// minimum, maximum, ordering; the first failure is returned.
func Validate(p DisplayPrimaries, l LuminanceRange) error {
	switch {
	case p.R == nil:
		return mderr.New(mderr.IncompleteInput, "Red channel not set for master display")
	case p.G == nil:
		return mderr.New(mderr.IncompleteInput, "Green channel not set for master display")
	case p.B == nil:
		return mderr.New(mderr.IncompleteInput, "Blue channel not set for master display")
	case p.WhitePoint == nil:
		return mderr.New(mderr.IncompleteInput, "White point not set for master display")
	}
	switch {
	case l.Min < 0:
		return mderr.New(mderr.IncompleteInput, "Minimum luminance value not set for master display")
	case l.Max < 0:
		return mderr.New(mderr.IncompleteInput, "Maximum luminance value not set for master display")
	case l.Max < l.Min:
		return mderr.New(mderr.Range, "Minimum luminance cannot be greater than maximum luminance")
	}
	return nil
}
