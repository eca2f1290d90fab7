/*
Copyright © 2019 the PFR authors.
This file is part of PFR.

PFR is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PFR is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PFR.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command pfr is a command-line interface for the PFR plug-flow reactor model.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spatialmodel/pfr/pfrutil"
)

func main() {
	if countCommands(os.Args) == 1 { // If only one command was supplied, start the GUI server.
		pfrutil.StartWebServer()
	}

	// If more than one command was supplied, run in CLI mode.
	if err := pfrutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(pfrutil.ExitCode(err))
	}
}

// countCommands returns the number of arguments that are not flags.
func countCommands(args []string) int {
	var n int
	for _, arg := range args {
		if arg != "" && !strings.HasPrefix(arg, "-") {
			n++
		}
	}
	return n
}
