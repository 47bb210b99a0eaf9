// cmd/commands.go

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fapiao/pkg/extract"
	"fapiao/pkg/utils"

	"github.com/spf13/cobra"
)

// options are the flags shared by every command
type options struct {
	configPath string
	asJSON     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "fapiao",
		Short: "Extract fields from Chinese tax invoice PDFs",
		Long: `Read the text layer of every invoice PDF in a folder and extract the
invoice number, issue date, purchaser, seller and total amount.

Results are cached per file and reused until the file changes.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: search config/config.yml)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(
		newScanCmd(opts),
		newProcessCmd(opts),
		newInspectCmd(opts),
		newQuarterCmd(),
		newWatchCmd(opts),
		newErrorsCmd(opts),
	)
	return root
}

// withApp runs fn with a set-up app and tears it down afterwards
func withApp(opts *options, fn func(a *app) error) error {
	a, err := newApp(opts.configPath)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

// inputDir is the directory argument, or the configured one
func inputDir(a *app, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.config.Input.Dir
}

func newScanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [dir]",
		Short: "Extract one record per PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				records, err := a.scanner().ScanDirectory(cmd.Context(), inputDir(a, args))
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), records)
				}
				printRecords(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}
}

func newProcessCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "process [dir]",
		Short: "Extract, merge duplicate invoice numbers and bucket by quarter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				rows, err := a.scanner().ProcessInvoices(cmd.Context(), inputDir(a, args))
				if err != nil {
					return err
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				printRows(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
}

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Show the text layer of a PDF and how each field was found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				doc, out, err := a.extractor().Inspect(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("error reading %s: %w", filepath.Base(args[0]), err)
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), out)
				}
				printInspection(cmd.OutOrStdout(), doc.Text, extract.NewInput(doc.Text, doc).Flat, out)
				return nil
			})
		},
	}
}

func newQuarterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quarter <date>",
		Short: "Print the YYYY-Qn bucket of a date",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), utils.GetQuarter(args[0]))
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-process the folder on an interval until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return watch(ctx, a, inputDir(a, args))
			})
		},
	}
}

// watch runs process immediately and then every poll interval
func watch(ctx context.Context, a *app, dir string) error {
	interval := time.Duration(a.config.Processing.PollIntervalSeconds) * time.Second
	scanner := a.scanner()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info().Str("dir", dir).Dur("interval", interval).Msg("Watching for invoices")
	for {
		rows, err := scanner.ProcessInvoices(ctx, dir)
		switch {
		case errors.Is(err, context.Canceled):
		case err != nil:
			a.logger.Error().Err(err).Msg("Pipeline error")
		default:
			a.logger.Info().
				Int("invoices", len(rows)).
				Str("total", totalAmount(rows)).
				Msg("Processed folder")
		}

		select {
		case <-ctx.Done():
			a.logger.Info().Msg("Shutdown completed")
			return nil
		case <-ticker.C:
		}
	}
}

func newErrorsCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "List recent processing errors from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if a.db == nil {
					return errors.New("no database configured; set database.path to keep an error journal")
				}
				rows, err := a.db.RecentErrors(limit)
				if err != nil {
					return fmt.Errorf("error reading journal: %w", err)
				}
				if opts.asJSON {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				printErrors(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "number of rows to show")
	return cmd
}
