package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

func newCatalogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the variety catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load the catalog once and print its status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.close()

			_, loadErr := a.store.Reload(cmd.Context())
			st := a.store.Status()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(st); err != nil {
				return err
			}
			if loadErr != nil {
				return loadErr
			}
			if st.Entries == 0 {
				return errors.New("catalog has no usable entries")
			}
			return nil
		},
	})
	return cmd
}
