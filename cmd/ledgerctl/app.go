package main

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/google/subcommands"
	"github.com/username/painelfinanceiro/backend/src/config"
	"github.com/username/painelfinanceiro/backend/src/database"
	"github.com/username/painelfinanceiro/backend/src/processors"
	"github.com/username/painelfinanceiro/backend/src/services"
)

// app holds what every subcommand needs to reach the store.
type app struct {
	out    io.Writer
	dbPath func() string
}

func (a *app) commands() []subcommands.Command {
	return []subcommands.Command{
		&importCmd{app: a},
		&historyCmd{app: a},
		&removeCmd{app: a},
		&clearCmd{app: a},
		&summaryCmd{app: a},
	}
}

type backend struct {
	db      *sql.DB
	ledger  services.LedgerService
	imports services.ImportService
}

func (b *backend) Close() error {
	return b.db.Close()
}

// open connects to the database, applies migrations and builds the services.
func (a *app) open() (*backend, error) {
	db, err := database.Open(a.dbPath())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	rulesPath := ""
	if config.Cfg != nil {
		rulesPath = config.Cfg.ClassificationRulesPath
	}
	rules, err := processors.LoadClassificationRules(rulesPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("loading classification rules: %w", err)
	}

	ledger := services.NewLedgerService(db, nil)
	return &backend{
		db:     db,
		ledger: ledger,
		imports: services.NewImportService(
			ledger,
			processors.NewClassifier(rules),
			processors.NewHierarchyProcessor(),
			processors.NewAggregationProcessor(),
		),
	}, nil
}
