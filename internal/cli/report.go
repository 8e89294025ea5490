package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"financas/internal/analytics"
	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/storage"

	"github.com/spf13/cobra"
)

// sessionFor impersonates the user registered under email.
func sessionFor(ctx context.Context, users storage.UserStore, email string) (auth.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return auth.Session{}, errors.New("--email is required")
	}
	u, err := users.UserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return auth.Session{}, fmt.Errorf("no user registered as %s", email)
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("look up user: %w", err)
	}
	return auth.Session{UserID: u.ID, Email: u.Email}, nil
}

// reportFunc computes one report for the session.
type reportFunc func(ctx context.Context, st *stack, sess auth.Session) (any, error)

func (app *App) reportCommand() *cobra.Command {
	var email, output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a report for one user",
	}
	cmd.PersistentFlags().StringVar(&email, "email", "", "Email of the user to report on")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", OutputTable, "Output format: table, json or yaml")

	run := func(fn reportFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeStore, err := app.services(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			sess, err := sessionFor(ctx, st.store, email)
			if err != nil {
				return err
			}
			report, err := fn(ctx, st, sess)
			if err != nil {
				return err
			}
			return Render(app.out, output, report)
		}
	}

	var periodo, inicio, fim string
	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Totals, monthly evolution and expense distribution",
		RunE: run(func(ctx context.Context, st *stack, sess auth.Session) (any, error) {
			p, err := analytics.ParsePeriod(periodo, inicio, fim)
			if err != nil {
				return nil, err
			}
			return st.reports.Dashboard(ctx, sess, p)
		}),
	}
	dashboard.Flags().StringVar(&periodo, "periodo", string(analytics.PeriodTotal),
		"total, ultimo_mes, ultimos_6_meses or customizado")
	dashboard.Flags().StringVar(&inicio, "inicio", "", "Start date (YYYY-MM-DD) for customizado")
	dashboard.Flags().StringVar(&fim, "fim", "", "End date (YYYY-MM-DD) for customizado")

	cmd.AddCommand(
		dashboard,
		&cobra.Command{
			Use:   "resumo",
			Short: "Per-month totals and aggregate statistics",
			RunE: run(func(ctx context.Context, st *stack, sess auth.Session) (any, error) {
				return st.reports.Monthly(ctx, sess)
			}),
		},
		&cobra.Command{
			Use:   "recorrentes",
			Short: "Frequent categories and recurring expense descriptions",
			RunE: run(func(ctx context.Context, st *stack, sess auth.Session) (any, error) {
				return st.reports.Recurring(ctx, sess)
			}),
		},
		&cobra.Command{
			Use:   "projecoes",
			Short: "Six-month balance projection",
			RunE: run(func(ctx context.Context, st *stack, sess auth.Session) (any, error) {
				return st.reports.Projection(ctx, sess)
			}),
		},
	)
	return cmd
}
