// Copyright 2025 Nhat-Nguyen Nguyen
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
// Package cli holds the foundermatch commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"foundermatch/modules/appconfig"

	"github.com/spf13/cobra"
)

type configKey struct{}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "foundermatch",
		Short:         "Co-founder matching backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(cfg.Log.Logger())
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	rootCmd.AddCommand(newServeCmd(), newMigrateCmd())
	return rootCmd
}

func configFrom(cmd *cobra.Command) *appconfig.Config {
	cfg, _ := cmd.Context().Value(configKey{}).(*appconfig.Config)
	return cfg
}
