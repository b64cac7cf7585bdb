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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowstone/engine/verification"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		maxStates int
		format    string
	)
	cmd := &cobra.Command{
		Use:   "analyze FILE WORKFLOW",
		Short: "Explore a workflow's reachable markings and report structural problems",
		Long: `Explores every marking reachable from the initial marking, ignoring
guards and roles, and reports unreachable places, transitions that can never
fire, deadlocks and unbounded token growth. Exits non-zero when a problem is
found.

Examples:
  flowctl analyze workflows.yaml legal_review
  flowctl analyze workflows.yaml legal_review --max-states 500 --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.compile(args[0], args[1])
			if err != nil {
				return err
			}
			report, err := verification.Analyze(def, maxStates)
			if err != nil {
				return err
			}
			a.logger.Debug("workflow analyzed", map[string]interface{}{
				"workflow": report.Workflow,
				"states":   report.States,
				"bounded":  report.Bounded,
			})
			if err := printReport(cmd, report, format); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%s: %d problems found", report.Workflow, len(report.Problems()))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxStates, "max-states", verification.DefaultMaxStates, "Maximum number of markings to explore")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func printReport(cmd *cobra.Command, r *verification.Report, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "text":
		fmt.Fprintf(out, "workflow:    %s (%s)\n", r.Workflow, r.Kind)
		fmt.Fprintf(out, "states:      %d (%d edges)\n", r.States, r.Edges)
		fmt.Fprintf(out, "bounded:     %t (max %d tokens per place)\n", r.Bounded, r.MaxTokens)
		fmt.Fprintf(out, "reachable:   %s\n", strings.Join(r.ReachablePlaces, ", "))
		problems := r.Problems()
		if len(problems) == 0 {
			fmt.Fprintln(out, "no problems found")
			return nil
		}
		fmt.Fprintln(out, "problems:")
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}
