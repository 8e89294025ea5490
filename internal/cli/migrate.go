package cli

import (
	"fmt"

	"financas/internal/backend"
	"financas/internal/log"
	"financas/internal/storage"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func (app *App) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			bcfg, err := backend.FromAppConfig(app.cfg)
			if err != nil {
				return err
			}
			dialect, dsn, ok := bcfg.Migration()
			if !ok {
				pterm.Info.Printfln("Backend %q keeps no schema, nothing to migrate", app.cfg.DataBackend)
				return nil
			}

			app.logger.Info("Running migrations", log.NewFields().WithOperation(log.OpMigrate).ToSlice()...)
			if err := storage.RunMigrations(dialect, dsn); err != nil {
				return fmt.Errorf("migrate %s: %w", dialect, err)
			}
			pterm.Success.Printfln("Migrations applied (%s)", dialect)
			return nil
		},
	}
}
