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

// Package cmdline splits an argument vector into named switches, each
// followed by zero or more positional arguments.
package cmdline

import (
	"strings"

	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
)

const switchPrefix = "-"

// Switch is one command line switch together with its arguments.
type Switch struct {
	// Name is the switch token as written, prefix included ("-r").
	Name string
	Args []string
	// Position is the argv index of the switch token, the program name
	// being position 0.
	Position int
}

func isSwitch(token string) bool {
	return strings.HasPrefix(token, switchPrefix)
}

// Parse turns args (argv without the program name) into switches in the
// order they appear. Any token starting with "-" starts a new switch, so a
// negative number cannot be passed as an argument.
//
// An empty args yields no switches and no error.
func Parse(args []string) ([]Switch, error) {
	var switches []Switch
	seen := make(map[string]struct{}, len(args))

	for i := 0; i < len(args); {
		pos := i + 1
		if !isSwitch(args[i]) {
			return nil, mderr.New(mderr.Parse, "Command line parser: Expected switch at token %d", pos)
		}
		name := args[i]
		if _, dup := seen[name]; dup {
			return nil, mderr.New(mderr.Parse, "Command line parser: Duplicate command line switch %q", name)
		}
		seen[name] = struct{}{}

		end := i + 1
		for end < len(args) && !isSwitch(args[end]) {
			end++
		}
		sw := Switch{Name: name, Position: pos}
		if end > i+1 {
			sw.Args = append([]string(nil), args[i+1:end]...)
		}
		switches = append(switches, sw)
		i = end
	}
	return switches, nil
}
