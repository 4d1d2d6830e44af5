package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/username/painelfinanceiro/backend/src/models"
	"github.com/username/painelfinanceiro/backend/src/security/validation"
	"github.com/username/painelfinanceiro/backend/src/services"
)

type importCmd struct {
	*app
	yes   bool
	input io.Reader
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a ledger export (csv, txt, xlsx, xls)" }
func (*importCmd) Usage() string {
	return `import [-yes] <file>

  Imports a ledger export. The current data and the import history are
  replaced. When duplicate ids are found the import waits for confirmation
  unless -yes is given.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "commit without asking when duplicates are found")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one file must be provided")
		return subcommands.ExitUsageError
	}
	fileName := f.Arg(0)

	file, err := os.Open(fileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", fileName, err)
		return subcommands.ExitFailure
	}
	defer file.Close()
	if _, err := validation.ValidateFileContentByMagicBytes(file, fileName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	b, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	outcome, err := b.imports.ProcessImport(ctx, services.ImportSource{
		FileName: filepath.Base(fileName),
		Reader:   file,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, w := range outcome.Warnings {
		fmt.Fprintf(c.out, "warning: %s\n", w)
	}

	if outcome.State == services.StateReview {
		fmt.Fprintf(c.out, "%d duplicate records found.\n", outcome.DuplicatesFound)
		if !c.yes && !c.confirm() {
			b.imports.Reset()
			fmt.Fprintln(c.out, "Import discarded.")
			return subcommands.ExitSuccess
		}
		if outcome, err = b.imports.ConfirmPendingImport(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Confirm failed: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	r := outcome.Record
	fmt.Fprintf(c.out, "Imported %s as %s: %d rows, %d categories, %d subcategories, %d duplicates, %d orphans\n",
		r.FileName, r.ID, r.RowCount, r.CategoryCount, r.SubcategoryCount, r.DuplicateCount, r.OrphanCount)
	return subcommands.ExitSuccess
}

func (c *importCmd) confirm() bool {
	in := c.input
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(c.out, "Commit anyway? [y/N] ")
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes" || answer == "s" || answer == "sim"
}

type historyCmd struct{ *app }

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list past imports" }
func (*historyCmd) Usage() string {
	return `history

  Lists the recorded imports, oldest first.
`
}
func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (c *historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	history, err := b.ledger.ListHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(history) == 0 {
		fmt.Fprintln(c.out, "No imports recorded.")
		return subcommands.ExitSuccess
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tDATE\tROWS\tCATEGORIES\tSUBCATEGORIES")
	for _, r := range history {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", r.ID, r.FileName, r.DateImported.Local().Format(time.DateTime), r.RowCount, r.CategoryCount, r.SubcategoryCount)
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

type removeCmd struct{ *app }

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove an import from the history" }
func (*removeCmd) Usage() string {
	return `remove <id>

  Removes one import from the history. The current data is removed too
  when it was produced by that import.
`
}
func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one import id must be provided")
		return subcommands.ExitUsageError
	}
	b, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	if !b.ledger.RemoveImport(f.Arg(0)) {
		fmt.Fprintf(os.Stderr, "import %s not found\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.out, "Removed %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

type clearCmd struct{ *app }

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "delete all imported data and history" }
func (*clearCmd) Usage() string {
	return `clear

  Deletes the current data and the whole import history.
`
}
func (*clearCmd) SetFlags(*flag.FlagSet) {}

func (c *clearCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	if !b.ledger.ClearAllImportedData() {
		fmt.Fprintln(os.Stderr, "failed to clear imported data")
		return subcommands.ExitFailure
	}
	fmt.Fprintln(c.out, "All imported data cleared.")
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	*app
	month string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show totals for a month" }
func (*summaryCmd) Usage() string {
	return `summary [-m <month>]

  Shows income, expenses, result and the largest expenses for a month
  such as jan/25. The latest month is used when -m is omitted.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "month label, e.g. jan/25")
}

func (c *summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.month != "" {
		if err := validation.ValidateMonthLabel(c.month); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}
	b, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	summary, err := b.ledger.GetMonthSummary(c.month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading summary: %v\n", err)
		return subcommands.ExitFailure
	}
	if summary == nil {
		fmt.Fprintln(c.out, "No data for this month.")
		return subcommands.ExitSuccess
	}
	top, err := b.ledger.GetTopExpenses(summary.Month, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading top expenses: %v\n", err)
		return subcommands.ExitFailure
	}
	writeSummary(c.out, summary, top)
	return subcommands.ExitSuccess
}

func writeSummary(w io.Writer, s *models.MonthSummary, top []models.TopExpense) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Month\t%s\n", s.Month)
	fmt.Fprintf(tw, "Income\t%.2f%s\n", s.TotalIncome, change(s.IncomeChange))
	fmt.Fprintf(tw, "Expenses\t%.2f%s\n", s.TotalExpenses, change(s.ExpensesChange))
	fmt.Fprintf(tw, "Result\t%.2f%s\n", s.Result, change(s.ResultChange))
	if len(top) > 0 {
		fmt.Fprintln(tw, "\nTop expenses\t")
		for _, e := range top {
			fmt.Fprintf(tw, "%s %s\t%.2f\n", e.ID, e.Name, e.Value)
		}
	}
	tw.Flush()
}

func change(pct *float64) string {
	if pct == nil {
		return ""
	}
	return fmt.Sprintf("\t(%+.2f%%)", *pct)
}

