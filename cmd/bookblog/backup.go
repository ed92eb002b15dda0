package main

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookblog/bookblog-server/internal/backup"
	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/store"
)

func (c *cli) backupCmd() *cobra.Command {
	var (
		out    string
		notes  string
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup archive of books, comments and covers",
		Long: `Without --out the archive is stored in the managed backups directory
and may be shipped to the remote bucket with --upload. With --out the
archive is written to that path only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out != "" && upload {
				return fmt.Errorf("--upload applies to managed backups only, drop --out")
			}
			return c.run(func(i do.Injector) error {
				cfg, err := do.Invoke[*config.Config](i)
				if err != nil {
					return err
				}
				if notes == "" {
					notes = cfg.Backup.Notes
				}

				if out != "" {
					return writeBackupFile(cmd, i, out, notes)
				}

				backups, err := do.Invoke[*backup.BackupService](i)
				if err != nil {
					return err
				}
				result, err := backups.Create(cmd.Context(), backup.BackupOptions{Notes: notes, Upload: upload})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "backup %s: %d books, %d comments, %d covers, %d bytes\n",
					result.ID, result.Counts.Books, result.Counts.Comments, result.Counts.Covers, result.Size)
				fmt.Fprintf(cmd.OutOrStdout(), "path: %s\nsha256: %s\n", result.Path, result.Checksum)
				if result.Remote != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "uploaded: %s\n", result.Remote)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the archive to this path instead of the backups directory")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes recorded in the manifest")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the archive to the remote bucket")
	return cmd
}

func writeBackupFile(cmd *cobra.Command, i do.Injector, path, notes string) error {
	archiver, err := do.Invoke[*backup.Archiver](i)
	if err != nil {
		return err
	}

	var counts backup.EntityCounts
	err = store.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, counts, err = archiver.WriteBackup(cmd.Context(), w, notes)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d books, %d comments, %d covers\n",
		path, counts.Books, counts.Comments, counts.Covers)
	return nil
}

func (c *cli) restoreCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore books, comments and covers from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := backup.ParseMode(mode)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			return c.run(func(i do.Injector) error {
				archiver, err := do.Invoke[*backup.Archiver](i)
				if err != nil {
					return err
				}
				result, err := archiver.RestoreBackup(cmd.Context(), data, m)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "restored (%s) in %s\n", result.Mode, result.Duration)
				if result.Books != nil {
					fmt.Fprintf(w, "books: %d imported, %d total\n", result.Books.Imported, result.Books.Total)
				}
				if result.Comments != nil {
					fmt.Fprintf(w, "comments: %d imported, %d total\n", result.Comments.Imported, result.Comments.Total)
				}
				fmt.Fprintf(w, "covers: %d written, %d paths repaired\n", result.Covers, result.CoverPathsRepaired)
				for _, name := range result.Skipped {
					fmt.Fprintf(w, "skipped: %s\n", name)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(backup.ModeMerge), "Restore mode: merge or replace")
	return cmd
}
