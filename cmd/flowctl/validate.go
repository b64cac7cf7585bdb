// Copyright 2026 The Flowstone Authors
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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowstone/engine/config"
	"github.com/flowstone/engine/petri"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Compile every workflow in a definition file",
		Long: `Parses a definition file and compiles each workflow it declares,
reporting every problem found.

Examples:
  flowctl validate workflows.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validate(cmd, args[0])
		},
	}
}

func (a *app) validate(cmd *cobra.Command, path string) error {
	f, err := config.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, w := range f.Workflows {
		def, err := w.Compile()
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s (line %d)\n", w.Key, w.Line)
			var defErr *petri.DefinitionError
			if errors.As(err, &defErr) {
				for _, p := range defErr.Problems {
					fmt.Fprintf(out, "  - %s\n", p)
				}
			} else {
				fmt.Fprintf(out, "  - %v\n", err)
			}
			continue
		}
		fmt.Fprintf(out, "ok   %s (%s, %d places, %d transitions)\n",
			def.Name(), def.Kind(), len(def.Places()), len(def.Transitions()))
	}

	a.logger.Info("validated definition file", map[string]interface{}{
		"file":      path,
		"workflows": len(f.Workflows),
		"failed":    failed,
	})
	if failed > 0 {
		return fmt.Errorf("%d of %d workflows are invalid", failed, len(f.Workflows))
	}
	return nil
}
