package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/goalmate-engine/internal/adapters/cli"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/analytics"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/services"
)

var errNoUser = errors.New("one of --user or --username is required")

type activityOptions struct {
	userID   string
	username string
	now      string
	json     bool
}

func newActivityCmd(env cliEnv, root *rootOptions) *cobra.Command {
	opts := &activityOptions{}

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Print a user's streaks and activity heatmap",
		Long: `Compute the activity report of one user: current and longest streak,
completions in the last 365 days and a heatmap with one cell per day.

--now pins the reference instant (RFC 3339) to reproduce a past report.`,
		Example: `  goalmatectl activity --username mario
  goalmatectl activity --user 6f1c... --now 2024-06-15T12:00:00Z --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivity(cmd, env, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user", "", "User ID")
	cmd.Flags().StringVar(&opts.username, "username", "", "Username (alternative to --user)")
	cmd.Flags().StringVar(&opts.now, "now", "", "Reference time in RFC 3339 (default: current time)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("user", "username")

	return cmd
}

func runActivity(cmd *cobra.Command, env cliEnv, root *rootOptions, opts *activityOptions) error {
	if opts.userID == "" && opts.username == "" {
		return errNoUser
	}

	cfg, err := root.load()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	now := time.Now()
	if opts.now != "" {
		if now, err = time.Parse(time.RFC3339, opts.now); err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	ctx := cmd.Context()
	b, err := env.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	userID, label := opts.userID, opts.userID
	if opts.username != "" {
		user, err := b.users.GetByUsername(ctx, opts.username)
		if err != nil {
			return fmt.Errorf("looking up %q: %w", opts.username, err)
		}
		userID, label = user.ID, user.Username
	}

	svc := services.NewAnalyticsService(b.tasks, b.users, loc, cfg.Analytics.DailyGoal)
	report, err := svc.ActivityAt(ctx, userID, now)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	title := fmt.Sprintf("Activity for %s (as of %s)", label, analytics.DayOf(now, loc))
	return cli.NewRenderer(cmd.OutOrStdout(), root.noColor).Report(title, *report)
}
