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

	"github.com/spf13/cobra"

	"github.com/flowstone/engine/petri"
)

func newGraphCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "graph FILE WORKFLOW",
		Short: "Render a workflow as DOT, Mermaid or JSON",
		Long: `Renders one workflow of a definition file. The initial marking is
highlighted.

Examples:
  flowctl graph workflows.yaml article_publishing | dot -Tsvg > publishing.svg
  flowctl graph workflows.yaml legal_review --format mermaid`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.compile(args[0], args[1])
			if err != nil {
				return err
			}
			return renderGraph(cmd, petri.ExportGraph(def, initialCounts(def)), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "Output format: dot, mermaid, json")
	return cmd
}

func initialCounts(def *petri.Definition) map[string]int {
	counts := make(map[string]int)
	for _, p := range def.InitialMarking() {
		counts[p]++
	}
	return counts
}

func renderGraph(cmd *cobra.Command, g *petri.Graph, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "dot":
		fmt.Fprint(out, g.DOT())
	case "mermaid":
		fmt.Fprint(out, g.Mermaid())
	case "json":
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return fmt.Errorf("encode graph: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}
