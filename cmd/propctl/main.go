// Command propctl runs rolling split refreshes and prices wagers from the
// command line.
//
// Usage:
//
//	propctl splits compute --player 237 --windows 5,10
//	propctl splits all
//	propctl splits show --player 237
//	propctl ev --hit-rate 58 --odds -110 --wager 100
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/propline/stats-api/internal/app"
	"github.com/propline/stats-api/internal/config"
	"github.com/propline/stats-api/internal/logic"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "propctl",
		Short:         "Player prop analytics maintenance CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(splitsCmd())
	root.AddCommand(evCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withApp loads configuration, connects the backends and runs fn
func withApp(fn func(ctx context.Context, a *app.App, logger *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := app.NewLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a, logger)
}

func splitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "splits",
		Short: "Compute and inspect rolling split snapshots",
	}
	cmd.AddCommand(splitsComputeCmd())
	cmd.AddCommand(splitsAllCmd())
	cmd.AddCommand(splitsShowCmd())
	return cmd
}

func splitsComputeCmd() *cobra.Command {
	var (
		playerID int64
		windows  []int
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Recompute rolling splits for one player",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App, logger *zap.Logger) error {
				if err := a.Analytics.ComputeRollingSplits(ctx, playerID, windows); err != nil {
					return err
				}
				logger.Sugar().Infow("Rolling splits computed", "player", playerID, "windows", windows)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&playerID, "player", 0, "player ID")
	cmd.Flags().IntSliceVar(&windows, "windows", nil, "window sizes in games (default 5,10,15,20,30)")
	cobra.CheckErr(cmd.MarkFlagRequired("player"))
	return cmd
}

func splitsAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Recompute rolling splits for every recently active player",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App, logger *zap.Logger) error {
				result := a.Analytics.ProcessAllPlayers(ctx)
				if err := printJSON(result); err != nil {
					return err
				}
				if result.Errors > 0 {
					return fmt.Errorf("%d of %d players failed", result.Errors, result.Total)
				}
				return nil
			})
		},
	}
}

func splitsShowCmd() *cobra.Command {
	var playerID int64
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print stored rolling splits for a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App, logger *zap.Logger) error {
				splits, err := a.Splits.ListSplits(ctx, playerID)
				if err != nil {
					return err
				}
				return printJSON(splits)
			})
		},
	}
	cmd.Flags().Int64Var(&playerID, "player", 0, "player ID")
	cobra.CheckErr(cmd.MarkFlagRequired("player"))
	return cmd
}

func evCmd() *cobra.Command {
	var hitRate, odds, wager float64
	cmd := &cobra.Command{
		Use:   "ev",
		Short: "Price a wager from a hit rate and American odds",
		RunE: func(cmd *cobra.Command, args []string) error {
			// no backends needed to price a wager
			a := logic.NewAnalytics(logic.AnalyticsConfig{Logger: zap.NewNop()})
			ev, err := a.CalculateExpectedValue(hitRate, odds, wager)
			if err != nil {
				return err
			}
			return printJSON(ev)
		},
	}
	cmd.Flags().Float64Var(&hitRate, "hit-rate", 0, "historical hit rate, 0-100")
	cmd.Flags().Float64Var(&odds, "odds", 0, "American odds, e.g. -110 or +150")
	cmd.Flags().Float64Var(&wager, "wager", 100, "stake")
	cobra.CheckErr(cmd.MarkFlagRequired("hit-rate"))
	cobra.CheckErr(cmd.MarkFlagRequired("odds"))
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
