// Command ledgerctl imports ledger exports and queries the stored snapshot from the command line.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/username/painelfinanceiro/backend/src/config"
	"github.com/username/painelfinanceiro/backend/src/logger"
)

var dbPath = flag.String("db", "", "path to the SQLite database (defaults to DATABASE_PATH)")

func main() {
	config.LoadConfig()
	logger.InitLoggerWithWriter(os.Stderr, config.Cfg.LogLevel)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	register(commander, os.Stdout)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func register(c *subcommands.Commander, out io.Writer) {
	a := &app{out: out, dbPath: func() string {
		if *dbPath != "" {
			return *dbPath
		}
		return config.Cfg.DatabasePath
	}}
	for _, cmd := range a.commands() {
		c.Register(cmd, "ledger")
	}
}
