// pricectl manages the export pricing reference data and runs quotes from the shell.
//
// Usage:
//
//	pricectl migrate
//	pricectl import --file catalog.json [--redis-addr localhost:6379]
//	pricectl incoterms
//	pricectl quote --incoterm FOB --product prod-wine:100 --expense exp-port
//	pricectl budget --file budget.json
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

//nolint:gochecknoglobals // Set by -ldflags at build time
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pricectl",
		Usage:   "Export pricing engine command line",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Value:   "./exportquote.db",
				Usage:   "Path to the SQLite reference database",
				EnvVars: []string{"DB_PATH"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log engine activity to stderr",
			},
		},

		Before: setupLogger,

		Commands: []*cli.Command{
			migrateCommand(),
			importCommand(),
			incotermsCommand(),
			quoteCommand(),
			budgetCommand(),
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply database migrations",
		Action: runMigrate,
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load products, expenses and tenant pricing configs from a JSON catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the catalog JSON",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis cache to clear for every imported tenant config",
				EnvVars: []string{"REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				EnvVars: []string{"REDIS_PASSWORD"},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				EnvVars: []string{"REDIS_DB"},
			},
		},
		Action: runImport,
	}
}

func incotermsCommand() *cli.Command {
	return &cli.Command{
		Name:   "incoterms",
		Usage:  "Print the Incoterm hierarchy in rank order",
		Action: runIncoterms,
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price products under an Incoterm",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "incoterm",
				Aliases:  []string{"i"},
				Usage:    "Selected Incoterm code",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "product",
				Aliases:  []string{"p"},
				Usage:    "Product as id:quantity[:basePrice], repeatable",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "expense",
				Aliases: []string{"e"},
				Usage:   "Expense id, repeatable",
			},
			&cli.StringFlag{
				Name:    "tenant",
				Value:   "default",
				Usage:   "Tenant whose pricing config applies",
				EnvVars: []string{"PRICING_DEFAULT_TENANT"},
			},
			&cli.StringFlag{
				Name:  "strategy",
				Value: "quote",
				Usage: "Allocation strategy (quote, budget)",
			},
			&cli.StringFlag{
				Name:  "duty-rate",
				Value: "0",
				Usage: "Flat duty percentage for the budget strategy",
			},
			&cli.StringFlag{
				Name:  "currency",
				Usage: "Currency label echoed in the response",
			},
		},
		Action: runQuote,
	}
}

func budgetCommand() *cli.Command {
	return &cli.Command{
		Name:  "budget",
		Usage: "Run the budget calculation on a JSON request",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the budget request JSON ({items, costs, incoterm, dutyRate})",
				Required: true,
			},
		},
		Action: runBudget,
	}
}
