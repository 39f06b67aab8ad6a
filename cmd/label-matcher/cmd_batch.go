package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/label-matcher/internal/export"
	"github.com/joseph-ayodele/label-matcher/internal/services/batch"
)

func newBatchCmd(c *cli) *cobra.Command {
	var (
		out        string
		workers    int
		skipHidden bool
		exts       []string
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Resolve every OCR dump under a directory and write an XLSX report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = c.cfg.Match.BatchWorkers
			}
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()
			if _, err := a.store.Reload(cmd.Context()); err != nil {
				return err
			}

			svc := batch.NewService(a.match, batch.Config{Workers: workers, Extensions: exts, SkipHidden: skipHidden}, c.logger)
			results, stats, err := svc.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			if err := export.NewService(c.logger).WriteResultsXLSX(f, args[0], results, stats); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close report: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "files=%d detected=%d failed=%d report=%s\n", stats.Matched, stats.Detected, stats.Failed, out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "output", "o", "resultados.xlsx", "XLSX report path")
	f.IntVar(&workers, "workers", 4, "concurrent resolutions (overrides BATCH_WORKERS)")
	f.BoolVar(&skipHidden, "skip-hidden", true, "skip dot files and directories")
	f.StringSliceVar(&exts, "ext", nil, "file extensions to include (default txt,ocr)")
	return cmd
}
