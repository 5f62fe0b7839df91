package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanineapp/kanine-server/internal/service"
)

func newSearchCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Maintain the note search index",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			st, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()

			index, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer index.Close()

			count, err := service.NewSearchService(index, st, log).Reindex(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d notes\n", count)
			return nil
		},
	})

	return cmd
}
