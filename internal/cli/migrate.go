package cli

import (
	"time"

	"kitchenstock/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCommands = []string{"up", "down", "status", "redo", "version"}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status|redo|version]",
		Short: "Apply or inspect database migrations",
		Long: `Run a goose command against the embedded SQL migrations.

Without an argument, pending migrations are applied.

Example:
  kitchenstock migrate
  kitchenstock migrate status
  kitchenstock migrate down`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			return runMigrate(cmd, rootOpts, command)
		},
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, rootOpts *RootOptions, command string) error {
	cfg, logger, err := rootOpts.load()
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	ctx := cmd.Context()
	pool, err := database.NewPool(ctx, cfg.DB.URL, database.PoolOptions{MaxConns: 2, ConnectTimeout: 10 * time.Second})
	if err != nil {
		return err
	}
	defer database.ClosePool(pool)

	logger.Info().Str("command", command).Msg("running migrations")
	return database.Migrate(ctx, pool, command)
}
