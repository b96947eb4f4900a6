package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/goalmate-engine/migrations"
)

func newMigrateCmd(env cliEnv, root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL schema",
		Long:  "Create the users and tasks tables and their indexes. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			b, err := env.connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			if b.db == nil {
				return errors.New("migrate needs a database connection")
			}

			if err := migrations.Apply(cmd.Context(), b.db); err != nil {
				return err
			}

			names, _ := migrations.Files()
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration file(s)\n", len(names))
			return nil
		},
	}
}
