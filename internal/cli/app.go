package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"financas/internal/config"
	"financas/internal/log"

	"github.com/spf13/cobra"
)

// App is the financasctl command tree.
type App struct {
	rootCmd *cobra.Command
	cfg     *config.Config
	logger  *log.Logger
	out     io.Writer
}

// NewApp builds the command tree. Configuration is loaded once, before the
// first subcommand runs.
func NewApp(version string) *App {
	app := &App{out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:           "financasctl",
		Short:         "Administrative tooling for the financas API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadConfig()
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "financasctl version: %s\n" .Version}}`)

	rootCmd.AddCommand(
		app.migrateCommand(),
		app.seedCommand(),
		app.reportCommand(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the command line under ctx.
func (app *App) Execute(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetOutput redirects command output, used by tests.
func (app *App) SetOutput(w io.Writer) {
	app.out = w
	app.rootCmd.SetOut(w)
}

// SetArgs overrides os.Args[1:].
func (app *App) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

func (app *App) loadConfig() error {
	LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	app.cfg = cfg
	app.logger = SetupLogger(cfg).WithComponent(log.ComponentCLI)
	return nil
}

// services opens the store and builds the account, ledger and report
// services on top of it. The CLI writes straight to the store, so no view
// cache or event publisher is attached.
func (app *App) services(ctx context.Context) (*stack, func(), error) {
	store, closeStore, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	issuer, err := NewIssuer(app.cfg)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return newStack(store, issuer, NewEngine(app.cfg)), closeStore, nil
}
