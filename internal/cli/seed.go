package cli

import (
	"context"
	"fmt"
	"time"

	"financas/internal/analytics"
	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/services"
	"financas/internal/storage"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// stack groups the services the CLI drives.
type stack struct {
	store    storage.Store
	accounts *services.AccountService
	ledger   *services.LedgerService
	reports  *services.ReportService
}

func newStack(store storage.Store, issuer *auth.Issuer, engine *analytics.Engine) *stack {
	return &stack{
		store:    store,
		accounts: services.NewAccountService(store, issuer),
		ledger:   services.NewLedgerService(store, nil, nil),
		reports:  services.NewReportService(store, engine, nil),
	}
}

// demoEntry is one transaction repeated every month, optionally only on
// every nth month.
type demoEntry struct {
	kind        core.Kind
	day         int
	description string
	category    string
	amount      string
	method      string
	every       int
}

var demoEntries = []demoEntry{
	{core.Income, 5, "Salário mensal", "Salário", "5000.00", "Salário", 1},
	{core.Income, 15, "Projeto freelance", "Freelance", "1200.00", "PIX", 2},
	{core.Expense, 10, "Aluguel", "Moradia", "1500.00", "Boleto", 1},
	{core.Expense, 12, "Supermercado", "Alimentação", "", "Cartão de Débito", 1},
	{core.Expense, 18, "Combustível", "Transporte", "220.00", "Cartão de Crédito", 1},
	{core.Expense, 22, "Cinema", "Lazer", "180.00", "PIX", 2},
}

// SeedDemo registers a demo account and fills it with months of sample
// receitas and despesas ending at the month of now. It returns the number
// of transactions created.
func SeedDemo(ctx context.Context, st *stack, name, email, password string, months int, now time.Time) (int, error) {
	if months < 1 {
		return 0, fmt.Errorf("%w: meses must be at least 1", services.ErrInvalidInput)
	}
	res, err := st.accounts.Register(ctx, name, email, password)
	if err != nil {
		return 0, err
	}
	sess := auth.Session{UserID: res.User.ID, Email: res.User.Email}

	created := 0
	current := analytics.MonthOf(now)
	for offset := months - 1; offset >= 0; offset-- {
		m := current.Add(-offset)
		for _, e := range demoEntries {
			if offset%e.every != 0 {
				continue
			}
			amount := e.amount
			if amount == "" {
				// Groceries vary from month to month.
				amount = fmt.Sprintf("%d.50", 600+(offset%3)*75)
			}
			in := services.TransactionInput{
				Date:        core.NewDate(m.Year, int(m.Month), e.day).String(),
				Description: e.description,
				Category:    e.category,
				Amount:      amount,
				Method:      e.method,
			}
			if _, err := st.ledger.CreateTransaction(ctx, sess, e.kind, in); err != nil {
				return created, fmt.Errorf("seed %s %s: %w", e.description, in.Date, err)
			}
			created++
		}
	}
	return created, nil
}

func (app *App) seedCommand() *cobra.Command {
	var (
		name, email, password string
		months                int
	)
	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Create a demo user with sample receitas and despesas",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeStore, err := app.services(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			spinner, _ := pterm.DefaultSpinner.Start("Seeding demo ledger...")
			n, err := SeedDemo(ctx, st, name, email, password, months, time.Now())
			if err != nil {
				if spinner != nil {
					spinner.Fail(err.Error())
				}
				return err
			}
			if spinner != nil {
				spinner.Success(fmt.Sprintf("Created %s with %d transactions over %d months", email, n, months))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "demo@financas.local", "Email of the demo user")
	cmd.Flags().StringVar(&name, "nome", "Usuário Demo", "Name of the demo user")
	cmd.Flags().StringVar(&password, "senha", "Demo@2024!", "Password of the demo user")
	cmd.Flags().IntVar(&months, "meses", 6, "Number of months of sample data")
	return cmd
}
