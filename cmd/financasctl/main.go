package main

import (
	"fmt"
	"os"

	"financas/internal/cli"

	"github.com/shopspring/decimal"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := cli.NewApp(version).Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
