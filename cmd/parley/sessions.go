package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/parley/pkg/cli"
	"mercator-hq/parley/pkg/config"
	"mercator-hq/parley/pkg/session"
)

var sessionsFlags struct {
	format  string
	idleTTL time.Duration
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored sessions",
	Long: `Inspect and maintain the configured session store.

These commands are useful with the sqlite backend; the memory backend is
empty in a fresh process.

Examples:
  # List sessions as CSV
  parley sessions list --format csv

  # Remove sessions idle for more than a day
  parley sessions prune --idle-ttl 24h

  # Delete one session
  parley sessions delete alice`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE:  listSessions,
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete idle sessions",
	Args:  cobra.NoArgs,
	RunE:  pruneSessions,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete sessions by id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  deleteSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsPruneCmd, sessionsDeleteCmd)

	sessionsListCmd.Flags().StringVar(&sessionsFlags.format, "format", "text", "output format: text, json, csv")
	sessionsPruneCmd.Flags().DurationVar(&sessionsFlags.idleTTL, "idle-ttl", 0, "override session.idle_ttl")
}

// sessionTable renders session summaries as rows.
type sessionTable []session.Info

func (t sessionTable) Header() []string {
	return []string{"id", "turns", "created_at", "last_active"}
}

func (t sessionTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, info := range t {
		rows = append(rows, []string{
			info.ID,
			strconv.Itoa(info.Turns),
			info.CreatedAt.UTC().Format(time.RFC3339),
			info.LastActive.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

// openStore loads the configuration and opens its session store.
func openStore(cmd *cobra.Command) (*config.Config, session.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := session.Open(&cfg.Session)
	if err != nil {
		return nil, nil, cli.NewConfigError("session", err.Error(), err)
	}
	return cfg, store, nil
}

func listSessions(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(sessionsFlags.format))
	if err != nil {
		return err
	}

	_, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	infos, err := store.List(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("sessions list", err)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), sessionTable(infos))
}

func pruneSessions(cmd *cobra.Command, args []string) error {
	cfg, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ttl := cfg.Session.IdleTTL
	if sessionsFlags.idleTTL > 0 {
		ttl = sessionsFlags.idleTTL
	}

	n, err := pruneStore(commandContext(cmd), store, ttl)
	if err != nil {
		return cli.NewCommandError("sessions prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d session(s) idle for more than %s\n", n, ttl)
	return nil
}

func pruneStore(ctx context.Context, store session.Store, ttl time.Duration) (int64, error) {
	pruner := session.NewPruner(store, session.PrunerConfig{IdleTTL: ttl}, nil, nil)
	return pruner.Prune(ctx)
}

func deleteSessions(cmd *cobra.Command, args []string) error {
	_, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := commandContext(cmd)
	for _, id := range args {
		if err := store.Delete(ctx, id); err != nil {
			return cli.NewCommandError("sessions delete", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", id)
	}
	return nil
}
