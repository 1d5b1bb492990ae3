// Command consignctl runs hold maintenance for operators and external schedulers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/consignd/internal/app"
	"github.com/MrJamesThe3rd/consignd/internal/config"
)

var Version = "dev"

// actorCLI attributes manual operator actions.
const actorCLI = "admin:cli"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "loading .env:", err)
	}

	rootCmd := &cobra.Command{
		Use:           "consignctl",
		Short:         "Operate consignd listing holds",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(releaseCmd())
	rootCmd.AddCommand(markSoldCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(migrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	app.SetupLogging(cfg.App.Env)

	return cfg, nil
}

// withApp runs fn against a freshly assembled app and closes it afterwards.
func withApp(ctx context.Context, opts app.Options, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
