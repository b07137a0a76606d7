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
package cli

import (
	"fmt"
	"log/slog"

	"foundermatch/modules/db/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Create the database if needed and apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return migrator(cmd).Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return migrator(cmd).Down()
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				pending, err := migrator(cmd).Pending()
				if err != nil {
					return err
				}
				slog.InfoContext(cmd.Context(), "migration status", slog.Int("pending", pending))
				if pending > 0 {
					return fmt.Errorf("%d pending migration(s)", pending)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "new NAME",
			Short: "Write an empty migration file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrator(cmd).New(args[0])
			},
		},
	)
	return cmd
}

func migrator(cmd *cobra.Command) *postgres.Migrator {
	cfg := configFrom(cmd)
	return postgres.NewMigrator(&cfg.Postgres.WriteConfig, cfg.Postgres.MigrationsDir)
}
