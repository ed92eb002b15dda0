package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookblog/bookblog-server/internal/service"
)

func (c *cli) pruneCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-comments",
		Short: "Remove comments whose book no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(func(i do.Injector) error {
				catalog, err := do.Invoke[*service.CatalogService](i)
				if err != nil {
					return err
				}
				n, err := catalog.PruneOrphanComments(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphan comments\n", n)
				return nil
			})
		},
	}
}
