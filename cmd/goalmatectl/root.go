package main

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/goalmate-engine/internal/config"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

// backend is what the commands need from storage.
type backend struct {
	db    *sqlx.DB
	users domain.UserRepository
	tasks domain.TaskRepository
}

func (b *backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

type cliEnv struct {
	connect func(ctx context.Context, cfg *config.Config) (*backend, error)
}

func defaultEnv() cliEnv {
	return cliEnv{connect: connectPostgres}
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*backend, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &backend{
		db:    db,
		users: repository.NewPostgresUserRepository(db),
		tasks: repository.NewPostgresTaskRepository(db),
	}, nil
}

type rootOptions struct {
	configFile string
	noColor    bool
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newRootCmd(env cliEnv) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "goalmatectl",
		Short: "Operate a GoalMate deployment",
		Long: `goalmatectl talks to the GoalMate database directly. It can print a
user's activity report (streaks and the 365-day heatmap) and apply the SQL
schema.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file path (default: ./config.yaml or $GOALMATE_CONFIG)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newActivityCmd(env, opts))
	root.AddCommand(newMigrateCmd(env, opts))

	return root
}
