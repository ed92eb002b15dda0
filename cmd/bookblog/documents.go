package main

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookblog/bookblog-server/internal/backup"
)

func (c *cli) exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "export <books|comments>",
		Short:     "Write one collection document to a file or stdout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(backup.CollectionBooks), string(backup.CollectionComments)},
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := backup.ParseCollection(args[0])
			if err != nil {
				return err
			}
			return c.run(func(i do.Injector) error {
				archiver, err := do.Invoke[*backup.Archiver](i)
				if err != nil {
					return err
				}
				data, err := archiver.ExportDocument(cmd.Context(), collection)
				if err != nil {
					return err
				}
				if out == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %s to %s\n", collection, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "import <books|comments> <file>",
		Short: "Load a collection document, merging by ID or replacing outright",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := backup.ParseCollection(args[0])
			if err != nil {
				return err
			}
			m, err := backup.ParseMode(mode)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			return c.run(func(i do.Injector) error {
				archiver, err := do.Invoke[*backup.Archiver](i)
				if err != nil {
					return err
				}
				result, err := archiver.ImportDocument(cmd.Context(), collection, data, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d imported (%d replaced, %d added), %d total, mode %s\n",
					result.Collection, result.Imported, result.Replaced, result.Added, result.Total, result.Mode)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(backup.ModeMerge), "Import mode: merge or replace")
	return cmd
}
