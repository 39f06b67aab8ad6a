package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/label-matcher/internal/services/match"
)

func newResolveCmd(c *cli) *cobra.Command {
	var normalized string
	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Resolve OCR text from a file (or stdin) and print the result as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if len(args) == 1 && args[0] != "-" {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read ocr text: %w", err)
			}

			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()
			if _, err := a.store.Reload(cmd.Context()); err != nil {
				return err
			}

			res, err := a.match.Resolve(cmd.Context(), match.Request{Text: string(raw), Normalized: normalized})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&normalized, "normalized", "", "client-side normalized text, used instead of normalizing the input")
	return cmd
}
