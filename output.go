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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
	"github.com/google/logger"
)

// writeResult prints line to stdout, or to path when one was given. It
// runs only after the metadata was computed, so a failed run leaves path
// alone. The file is opened in place, so a symlink or device at path is
// written through and an existing file keeps its mode.
func writeResult(path, line string, stdout io.Writer) error {
	if path == "" {
		if _, err := fmt.Fprintln(stdout, line); err != nil {
			return mderr.Wrap(mderr.Output, err, fmt.Sprintf("failed to write output: %v", err))
		}
		return nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return mderr.Wrap(mderr.Output, err, fmt.Sprintf("Failed to open output file %s: %v", path, err))
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		f.Close()
		return mderr.Wrap(mderr.Output, err, fmt.Sprintf("Failed to write output file %s: %v", path, err))
	}
	if err := f.Close(); err != nil {
		return mderr.Wrap(mderr.Output, err, fmt.Sprintf("Failed to write output file %s: %v", path, err))
	}
	logger.Infof("wrote mastering display metadata to %s", path)
	return nil
}
