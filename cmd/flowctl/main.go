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

// Command flowctl checks and renders workflow definition files.
//
//	flowctl validate workflows.yaml
//	flowctl graph workflows.yaml article_publishing --format mermaid
//	flowctl analyze workflows.yaml legal_review --max-states 5000
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowstone/engine/config"
	execctx "github.com/flowstone/engine/context"
	"github.com/flowstone/engine/observability"
	"github.com/flowstone/engine/petri"
)

// app carries what subcommands share.
type app struct {
	logLevel string
	logger   execctx.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: &execctx.NoOpLogger{}}

	root := &cobra.Command{
		Use:           "flowctl",
		Short:         "Validate, render and analyze workflow definitions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := observability.LevelFromEnv()
			if cmd.Flags().Changed("log-level") {
				level = observability.ParseLevel(a.logLevel)
			}
			a.logger = observability.NewSlogLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newValidateCmd(a),
		newGraphCmd(a),
		newAnalyzeCmd(a),
	)
	return root
}

// compile loads path and compiles the workflow declared under key.
func (a *app) compile(path, key string) (*petri.Definition, error) {
	f, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	w, ok := f.Workflow(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not declared in %s", config.ErrNoWorkflow, key, path)
	}
	def, err := w.Compile()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("workflow compiled", map[string]interface{}{
		"workflow":    def.Name(),
		"type":        def.Kind().String(),
		"places":      len(def.Places()),
		"transitions": len(def.Transitions()),
	})
	return def, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
